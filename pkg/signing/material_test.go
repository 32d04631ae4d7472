/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signing

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/youmark/pkcs8"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/trustbloc/pass-adapter/pkg/internal/testutil"
)

const passphrase = "correct horse"

func requireCertificateError(t *testing.T, err error, part string) *CertificateError {
	t.Helper()

	var certErr *CertificateError

	require.Error(t, err)
	require.True(t, errors.As(err, &certErr), err.Error())
	require.Equal(t, part, certErr.Part)

	return certErr
}

func TestLoad(t *testing.T) {
	t.Parallel()

	pki := testutil.NewPKI(t)

	t.Run("test load - PEM material", func(t *testing.T) {
		t.Parallel()

		m, err := Load(&Raw{
			Certificate: pki.CertPEM(),
			PrivateKey:  pki.KeyPKCS8PEM(t),
			Authority:   pki.CAPEM(),
		})
		require.NoError(t, err)
		require.True(t, m.Certificate.Equal(pki.Cert))
		require.Len(t, m.Authority, 1)
		require.True(t, m.Authority[0].Equal(pki.CA))
		require.NoError(t, m.Check())
		require.Contains(t, m.String(), "Pass Type ID: pass.com.example.coupon")
	})

	t.Run("test load - DER material", func(t *testing.T) {
		t.Parallel()

		m, err := Load(&Raw{
			Certificate: pki.CertDER,
			PrivateKey:  pki.KeyPKCS8DER(t),
			Authority:   pki.CADER,
		})
		require.NoError(t, err)
		require.True(t, m.Certificate.Equal(pki.Cert))
	})

	t.Run("test load - PKCS#1 key in PEM and DER", func(t *testing.T) {
		t.Parallel()

		der := x509.MarshalPKCS1PrivateKey(pki.Key.(*rsa.PrivateKey))

		_, err := Load(&Raw{
			Certificate: pki.CertPEM(),
			PrivateKey:  pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}),
			Authority:   pki.CAPEM(),
		})
		require.NoError(t, err)

		_, err = Load(&Raw{Certificate: pki.CertDER, PrivateKey: der, Authority: pki.CADER})
		require.NoError(t, err)
	})

	t.Run("test load - EC key", func(t *testing.T) {
		t.Parallel()

		ec := testutil.NewECPKI(t)

		der, err := x509.MarshalECPrivateKey(ec.Key.(*ecdsa.PrivateKey))
		require.NoError(t, err)

		m, err := Load(&Raw{
			Certificate: ec.CertPEM(),
			PrivateKey:  pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}),
			Authority:   ec.CAPEM(),
		})
		require.NoError(t, err)
		require.IsType(t, &ecdsa.PrivateKey{}, m.PrivateKey)

		_, err = Load(&Raw{Certificate: ec.CertDER, PrivateKey: der, Authority: ec.CADER})
		require.NoError(t, err)
	})

	t.Run("test load - encrypted PKCS#8 key", func(t *testing.T) {
		t.Parallel()

		der, err := pkcs8.MarshalPrivateKey(pki.Key, []byte(passphrase), nil)
		require.NoError(t, err)

		encrypted := pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: der})

		_, err = Load(&Raw{
			Certificate: pki.CertPEM(), PrivateKey: encrypted, Passphrase: passphrase, Authority: pki.CAPEM(),
		})
		require.NoError(t, err)

		_, err = Load(&Raw{Certificate: pki.CertDER, PrivateKey: der, Passphrase: passphrase, Authority: pki.CADER})
		require.NoError(t, err)

		_, err = Load(&Raw{Certificate: pki.CertPEM(), PrivateKey: encrypted, Authority: pki.CAPEM()})
		certErr := requireCertificateError(t, err, PartPrivateKey)
		require.True(t, errors.Is(certErr, ErrPassphraseRequired))

		_, err = Load(&Raw{Certificate: pki.CertDER, PrivateKey: der, Authority: pki.CADER})
		require.True(t, errors.Is(err, ErrPassphraseRequired))

		_, err = Load(&Raw{
			Certificate: pki.CertPEM(), PrivateKey: encrypted, Passphrase: "wrong", Authority: pki.CAPEM(),
		})
		require.True(t, errors.Is(err, ErrIncorrectPassphrase))
	})

	t.Run("test load - legacy encrypted PEM key", func(t *testing.T) {
		t.Parallel()

		block, err := x509.EncryptPEMBlock(rand.Reader, "RSA PRIVATE KEY", // nolint: staticcheck
			x509.MarshalPKCS1PrivateKey(pki.Key.(*rsa.PrivateKey)), []byte(passphrase), x509.PEMCipherAES256)
		require.NoError(t, err)

		encrypted := pem.EncodeToMemory(block)

		_, err = Load(&Raw{
			Certificate: pki.CertPEM(), PrivateKey: encrypted, Passphrase: passphrase, Authority: pki.CAPEM(),
		})
		require.NoError(t, err)

		_, err = Load(&Raw{Certificate: pki.CertPEM(), PrivateKey: encrypted, Authority: pki.CAPEM()})
		require.True(t, errors.Is(err, ErrPassphraseRequired))
	})

	t.Run("test load - certificate chain in one PEM", func(t *testing.T) {
		t.Parallel()

		chain := append(pki.CertPEM(), pki.CAPEM()...)

		m, err := Load(&Raw{Certificate: chain, PrivateKey: pki.KeyPKCS8PEM(t), Authority: pki.CAPEM()})
		require.NoError(t, err)
		require.Len(t, m.Authority, 1)
	})

	t.Run("test load - truncated PEM certificate", func(t *testing.T) {
		t.Parallel()

		certPEM := pki.CertPEM()

		_, err := Load(&Raw{
			Certificate: certPEM[:len(certPEM)/2],
			PrivateKey:  pki.KeyPKCS8PEM(t),
			Authority:   pki.CAPEM(),
		})
		certErr := requireCertificateError(t, err, PartCertificate)
		require.Equal(t, "signer certificate: not a PEM or DER encoded value", certErr.Error())
	})

	t.Run("test load - garbage certificate and empty values", func(t *testing.T) {
		t.Parallel()

		_, err := Load(&Raw{Certificate: []byte("garbage"), PrivateKey: pki.KeyPKCS8PEM(t), Authority: pki.CAPEM()})
		requireCertificateError(t, err, PartCertificate)

		_, err = Load(&Raw{Certificate: pki.CertPEM(), PrivateKey: nil, Authority: pki.CAPEM()})
		requireCertificateError(t, err, PartPrivateKey)

		_, err = Load(&Raw{Certificate: pki.CertPEM(), PrivateKey: pki.KeyPKCS8PEM(t)})
		requireCertificateError(t, err, PartAuthority)

		_, err = Load(&Raw{Certificate: pki.CertPEM(), PrivateKey: []byte{0x30, 0x01}, Authority: pki.CAPEM()})
		requireCertificateError(t, err, PartPrivateKey)
	})

	t.Run("test load - unsupported PEM type", func(t *testing.T) {
		t.Parallel()

		_, err := Load(&Raw{
			Certificate: pki.CertPEM(),
			PrivateKey:  pem.EncodeToMemory(&pem.Block{Type: "OPENSSH PRIVATE KEY", Bytes: []byte{1}}),
			Authority:   pki.CAPEM(),
		})
		certErr := requireCertificateError(t, err, PartPrivateKey)
		require.Contains(t, certErr.Error(), "OPENSSH PRIVATE KEY")
	})

	t.Run("test load - key does not match certificate", func(t *testing.T) {
		t.Parallel()

		other := testutil.NewPKI(t)

		_, err := Load(&Raw{Certificate: pki.CertPEM(), PrivateKey: other.KeyPKCS8PEM(t), Authority: pki.CAPEM()})
		certErr := requireCertificateError(t, err, PartPrivateKey)
		require.True(t, errors.Is(certErr, ErrKeyMismatch))
	})

	t.Run("test load - error never contains key material", func(t *testing.T) {
		t.Parallel()

		keyPEM := pki.KeyPKCS8PEM(t)

		_, err := Load(&Raw{Certificate: keyPEM, PrivateKey: keyPEM, Authority: pki.CAPEM()})
		require.Error(t, err)
		require.NotContains(t, err.Error(), "BEGIN")
		require.NotContains(t, err.Error(), string(keyPEM[30:60]))
	})
}

func TestLoadPKCS12(t *testing.T) {
	t.Parallel()

	pki := testutil.NewPKI(t)

	bundle, err := pkcs12.Encode(rand.Reader, pki.Key, pki.Cert, []*x509.Certificate{pki.CA}, passphrase)
	require.NoError(t, err)

	t.Run("test load pkcs12 - success", func(t *testing.T) {
		t.Parallel()

		m, err := LoadPKCS12(bundle, passphrase, pki.CAPEM())
		require.NoError(t, err)
		require.True(t, m.Certificate.Equal(pki.Cert))
		require.Len(t, m.Authority, 1)
	})

	t.Run("test load pkcs12 - wrong passphrase", func(t *testing.T) {
		t.Parallel()

		_, err := LoadPKCS12(bundle, "wrong", pki.CAPEM())
		certErr := requireCertificateError(t, err, PartBundle)
		require.True(t, errors.Is(certErr, ErrIncorrectPassphrase))
	})

	t.Run("test load pkcs12 - malformed bundle", func(t *testing.T) {
		t.Parallel()

		_, err := LoadPKCS12([]byte("not a bundle"), passphrase, pki.CAPEM())
		requireCertificateError(t, err, PartBundle)

		_, err = LoadPKCS12(nil, passphrase, pki.CAPEM())
		requireCertificateError(t, err, PartBundle)
	})

	t.Run("test load pkcs12 - missing authority", func(t *testing.T) {
		t.Parallel()

		_, err := LoadPKCS12(bundle, passphrase, nil)
		requireCertificateError(t, err, PartAuthority)
	})
}

func TestMaterial_Check(t *testing.T) {
	t.Parallel()

	pki := testutil.NewPKI(t)
	other := testutil.NewPKI(t)

	var nilMaterial *Material

	require.Error(t, nilMaterial.Check())
	require.Error(t, (&Material{PrivateKey: pki.Key}).Check())
	require.Error(t, (&Material{Certificate: pki.Cert}).Check())
	require.ErrorIs(t, (&Material{Certificate: pki.Cert, PrivateKey: other.Key}).Check(), ErrKeyMismatch)
	require.NoError(t, (&Material{Certificate: pki.Cert, PrivateKey: pki.Key}).Check())
}
