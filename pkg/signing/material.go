/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signing

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/trustbloc/edge-core/pkg/log"
	"software.sslmate.com/src/go-pkcs12"
)

var logger = log.New("pass-adapter/signing")

// Raw is the signing material as supplied by the caller. Each blob may be PEM or DER.
type Raw struct {
	Certificate []byte
	PrivateKey  []byte
	Passphrase  string
	Authority   []byte
}

// Material is validated signing material. Treat it as immutable once loaded.
type Material struct {
	Certificate *x509.Certificate
	PrivateKey  crypto.Signer
	// Authority holds the intermediate (WWDR) and any further chain certificates.
	Authority []*x509.Certificate
}

// Load parses and cross-checks the raw material.
func Load(raw *Raw) (*Material, error) {
	certs, err := parseCertificates(raw.Certificate)
	if err != nil {
		return nil, certErr(PartCertificate, err)
	}

	key, err := parsePrivateKey(raw.PrivateKey, raw.Passphrase)
	if err != nil {
		return nil, certErr(PartPrivateKey, err)
	}

	authority, err := parseCertificates(raw.Authority)
	if err != nil {
		return nil, certErr(PartAuthority, err)
	}

	return newMaterial(certs[0], key, append(certs[1:], authority...))
}

// LoadPKCS12 loads the signer certificate and key from a PKCS#12 bundle as
// exported from a keychain. The authority certificate is supplied separately.
func LoadPKCS12(bundle []byte, passphrase string, authority []byte) (*Material, error) {
	if len(bundle) == 0 {
		return nil, certErr(PartBundle, errEmpty)
	}

	privateKey, cert, caCerts, err := pkcs12.DecodeChain(bundle, passphrase)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, certErr(PartBundle, ErrIncorrectPassphrase)
		}

		return nil, certErr(PartBundle, errors.Wrap(err, "decode pkcs12"))
	}

	key, err := asSigner(privateKey)
	if err != nil {
		return nil, certErr(PartBundle, err)
	}

	chain, err := parseCertificates(authority)
	if err != nil {
		return nil, certErr(PartAuthority, err)
	}

	return newMaterial(cert, key, append(caCerts, chain...))
}

func newMaterial(cert *x509.Certificate, key crypto.Signer, authority []*x509.Certificate) (*Material, error) {
	if !keyMatchesCert(key, cert) {
		return nil, certErr(PartPrivateKey, ErrKeyMismatch)
	}

	m := &Material{
		Certificate: cert,
		PrivateKey:  key,
		Authority:   dedupe(cert, authority),
	}

	if now := time.Now(); now.After(cert.NotAfter) || now.Before(cert.NotBefore) {
		logger.Warnf("signer certificate %s is outside its validity period (%s - %s)",
			m, cert.NotBefore.Format(time.RFC3339), cert.NotAfter.Format(time.RFC3339))
	}

	return m, nil
}

// String identifies the signer certificate without exposing key material.
func (m *Material) String() string {
	return fmt.Sprintf("CN=%s serial=%s", m.Certificate.Subject.CommonName, m.Certificate.SerialNumber)
}

// Check re-validates the material before it is used to sign.
func (m *Material) Check() error {
	switch {
	case m == nil:
		return errors.New("no signing material")
	case m.Certificate == nil:
		return errors.New("no signer certificate")
	case m.PrivateKey == nil:
		return errors.New("no signer private key")
	case !keyMatchesCert(m.PrivateKey, m.Certificate):
		return ErrKeyMismatch
	}

	return nil
}

func dedupe(signer *x509.Certificate, certs []*x509.Certificate) []*x509.Certificate {
	out := make([]*x509.Certificate, 0, len(certs))

	for _, c := range certs {
		if c.Equal(signer) {
			continue
		}

		duplicate := false

		for _, o := range out {
			if o.Equal(c) {
				duplicate = true

				break
			}
		}

		if !duplicate {
			out = append(out, c)
		}
	}

	return out
}
