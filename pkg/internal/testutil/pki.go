/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const rsaBits = 2048

// PKI is a throwaway authority plus a pass signing certificate issued by it.
type PKI struct {
	CA      *x509.Certificate
	CAKey   crypto.Signer
	Cert    *x509.Certificate
	Key     crypto.Signer
	CADER   []byte
	CertDER []byte
}

// NewPKI creates an RSA authority and an RSA signer.
func NewPKI(t *testing.T) *PKI {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, rsaBits)
	require.NoError(t, err)

	return NewPKIWithKey(t, key)
}

// NewECPKI creates an RSA authority and a P-256 signer.
func NewECPKI(t *testing.T) *PKI {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return NewPKIWithKey(t, key)
}

// NewPKIWithKey issues a signer certificate for key.
func NewPKIWithKey(t *testing.T, key crypto.Signer) *PKI {
	t.Helper()

	caKey, err := rsa.GenerateKey(rand.Reader, rsaBits)
	require.NoError(t, err)

	now := time.Now()

	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test Worldwide Developer Relations", Organization: []string{"Test"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, caKey.Public(), caKey)
	require.NoError(t, err)

	ca, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject: pkix.Name{
			CommonName:         "Pass Type ID: pass.com.example.coupon",
			OrganizationalUnit: []string{"ABCDE12345"},
		},
		NotBefore:   now.Add(-time.Hour),
		NotAfter:    now.Add(24 * time.Hour),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, ca, key.Public(), caKey)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(certDER)
	require.NoError(t, err)

	return &PKI{
		CA:      ca,
		CAKey:   caKey,
		Cert:    cert,
		Key:     key,
		CADER:   caDER,
		CertDER: certDER,
	}
}

// CAPEM returns the authority certificate as PEM.
func (p *PKI) CAPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: p.CADER})
}

// CertPEM returns the signer certificate as PEM.
func (p *PKI) CertPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: p.CertDER})
}

// KeyPKCS8DER returns the signer key as unencrypted PKCS#8 DER.
func (p *PKI) KeyPKCS8DER(t *testing.T) []byte {
	t.Helper()

	der, err := x509.MarshalPKCS8PrivateKey(p.Key)
	require.NoError(t, err)

	return der
}

// KeyPKCS8PEM returns the signer key as an unencrypted "PRIVATE KEY" PEM block.
func (p *PKI) KeyPKCS8PEM(t *testing.T) []byte {
	t.Helper()

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: p.KeyPKCS8DER(t)})
}
