/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signing

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"

	"github.com/pkg/errors"
	"github.com/youmark/pkcs8"
)

const (
	pemCertificate         = "CERTIFICATE"
	pemRSAPrivateKey       = "RSA PRIVATE KEY"
	pemECPrivateKey        = "EC PRIVATE KEY"
	pemPrivateKey          = "PRIVATE KEY"
	pemEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
)

// nolint: gochecknoglobals
var pemHeader = []byte("-----BEGIN")

// encoding is the result of probing a blob.
type encoding int

const (
	encodingDER encoding = iota
	encodingPEM
)

func probe(data []byte) encoding {
	if bytes.HasPrefix(bytes.TrimSpace(data), pemHeader) {
		return encodingPEM
	}

	return encodingDER
}

// parseCertificates decodes one or more certificates, PEM first and DER as the fallback.
func parseCertificates(data []byte) ([]*x509.Certificate, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmpty
	}

	if probe(data) == encodingPEM {
		certs, err := parsePEMCertificates(data)
		if err == nil {
			return certs, nil
		}
	}

	certs, err := x509.ParseCertificates(data)
	if err != nil || len(certs) == 0 {
		return nil, errNotPEMOrDER
	}

	return certs, nil
}

func parsePEMCertificates(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	rest := bytes.TrimSpace(data)

	for len(rest) > 0 {
		var block *pem.Block

		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, errors.New("malformed PEM block")
		}

		if block.Type != pemCertificate {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "parse PEM certificate")
		}

		certs = append(certs, cert)
		rest = bytes.TrimSpace(rest)
	}

	if len(certs) == 0 {
		return nil, errors.New("no CERTIFICATE block found")
	}

	return certs, nil
}

// parsePrivateKey decodes an RSA or ECDSA key in PKCS#1, SEC 1 or PKCS#8 form,
// encrypted or not, PEM first and DER as the fallback.
func parsePrivateKey(data []byte, passphrase string) (crypto.Signer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmpty
	}

	var (
		key interface{}
		err error
	)

	if probe(data) == encodingPEM {
		key, err = parsePEMKey(data, passphrase)
	} else {
		key, err = parseDERKey(data, passphrase)
	}

	if err != nil {
		return nil, err
	}

	return asSigner(key)
}

func parsePEMKey(data []byte, passphrase string) (interface{}, error) {
	block, _ := pem.Decode(bytes.TrimSpace(data))
	if block == nil {
		return nil, errNotPEMOrDER
	}

	der := block.Bytes

	// legacy OpenSSL "Proc-Type: 4,ENCRYPTED" headers
	if x509.IsEncryptedPEMBlock(block) { // nolint: staticcheck
		if passphrase == "" {
			return nil, ErrPassphraseRequired
		}

		decrypted, err := x509.DecryptPEMBlock(block, []byte(passphrase)) // nolint: staticcheck
		if err != nil {
			return nil, ErrIncorrectPassphrase
		}

		der = decrypted
	}

	switch block.Type {
	case pemRSAPrivateKey:
		return wrapKeyErr(x509.ParsePKCS1PrivateKey(der))
	case pemECPrivateKey:
		return wrapKeyErr(x509.ParseECPrivateKey(der))
	case pemPrivateKey:
		return wrapKeyErr(x509.ParsePKCS8PrivateKey(der))
	case pemEncryptedPrivateKey:
		return parseEncryptedPKCS8(der, passphrase)
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}
}

func parseDERKey(der []byte, passphrase string) (interface{}, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return key, nil
	}

	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}

	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}

	if !isEncryptedPKCS8(der) {
		return nil, errNotPEMOrDER
	}

	return parseEncryptedPKCS8(der, passphrase)
}

// encryptedPrivateKeyInfo is the RFC 5208 wrapper around an encrypted PKCS#8 key.
type encryptedPrivateKeyInfo struct {
	Algorithm     pkix.AlgorithmIdentifier
	EncryptedData []byte
}

// nolint: gochecknoglobals
var oidPBES2 = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 13}

func isEncryptedPKCS8(der []byte) bool {
	var info encryptedPrivateKeyInfo

	rest, err := asn1.Unmarshal(der, &info)

	return err == nil && len(rest) == 0 && info.Algorithm.Algorithm.Equal(oidPBES2)
}

func parseEncryptedPKCS8(der []byte, passphrase string) (interface{}, error) {
	if !isEncryptedPKCS8(der) {
		return nil, errors.New("not an encrypted PKCS#8 structure")
	}

	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	key, err := pkcs8.ParsePKCS8PrivateKey(der, []byte(passphrase))
	if err != nil {
		return nil, ErrIncorrectPassphrase
	}

	return key, nil
}

func wrapKeyErr(key interface{}, err error) (interface{}, error) {
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}

	return key, nil
}

func asSigner(key interface{}) (crypto.Signer, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	default:
		return nil, ErrUnsupportedKey
	}
}

type publicKeyEqualer interface {
	Equal(x crypto.PublicKey) bool
}

func keyMatchesCert(key crypto.Signer, cert *x509.Certificate) bool {
	pub, ok := key.Public().(publicKeyEqualer)

	return ok && pub.Equal(cert.PublicKey)
}
