/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pkpass

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mozilla.org/pkcs7"

	"github.com/trustbloc/pass-adapter/pkg/internal/testutil"
	"github.com/trustbloc/pass-adapter/pkg/signing"
)

const testDocument = `{"formatVersion":1,"serialNumber":"abc-123"}`

func testAssets() map[string][]byte {
	return map[string][]byte{
		"icon.png":    []byte("icon"),
		"icon@2x.png": []byte("icon-2x"),
		"logo.png":    []byte("logo"),
	}
}

func newMaterial(t *testing.T, pki *testutil.PKI) *signing.Material {
	t.Helper()

	m, err := signing.Load(&signing.Raw{
		Certificate: pki.CertPEM(),
		PrivateKey:  pki.KeyPKCS8PEM(t),
		Authority:   pki.CAPEM(),
	})
	require.NoError(t, err)

	return m
}

func readZip(t *testing.T, archive []byte) map[string][]byte {
	t.Helper()

	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)

	files := map[string][]byte{}

	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)

		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		files[f.Name] = b
	}

	return files
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	pki := testutil.NewPKI(t)
	material := newMaterial(t, pki)

	t.Run("test assemble - success", func(t *testing.T) {
		t.Parallel()

		archive, err := Assemble([]byte(testDocument), testAssets(), material)
		require.NoError(t, err)
		require.NotEmpty(t, archive)

		files := readZip(t, archive)
		require.Len(t, files, 6)
		require.Equal(t, testDocument, string(files[PassFile]))

		for name, data := range testAssets() {
			require.Equal(t, data, files[name])
		}

		manifest, err := ParseManifest(files[ManifestFile])
		require.NoError(t, err)
		require.Len(t, manifest, 4)

		for name, digest := range manifest {
			require.Equal(t, Digest(files[name]), digest, name)
		}

		require.NoError(t, VerifySignature(files[ManifestFile], files[SignatureFile]))

		p7, err := pkcs7.Parse(files[SignatureFile])
		require.NoError(t, err)
		require.Empty(t, p7.Content)
		require.Len(t, p7.Certificates, 2)
		require.True(t, p7.GetOnlySigner().Equal(pki.Cert))
	})

	t.Run("test assemble - mutated manifest fails verification", func(t *testing.T) {
		t.Parallel()

		archive, err := Assemble([]byte(testDocument), testAssets(), material)
		require.NoError(t, err)

		files := readZip(t, archive)
		manifest := append([]byte(nil), files[ManifestFile]...)

		for _, i := range []int{0, len(manifest) / 2, len(manifest) - 1} {
			mutated := append([]byte(nil), manifest...)
			mutated[i] ^= 0x01

			err = VerifySignature(mutated, files[SignatureFile])
			require.ErrorIs(t, err, ErrSignatureInvalid)
		}
	})

	t.Run("test assemble - EC signer", func(t *testing.T) {
		t.Parallel()

		ec := testutil.NewECPKI(t)

		archive, err := Assemble([]byte(testDocument), testAssets(), newMaterial(t, ec))
		require.NoError(t, err)

		a, err := Open(archive)
		require.NoError(t, err)
		require.NoError(t, a.Verify())
	})

	t.Run("test assemble - template collides with pass document", func(t *testing.T) {
		t.Parallel()

		assets := testAssets()
		assets[PassFile] = []byte("{}")

		_, err := Assemble([]byte(testDocument), assets, material)

		var pkgErr *PackagingError
		require.True(t, errors.As(err, &pkgErr))
		require.Equal(t, PassFile, pkgErr.File)
	})

	t.Run("test assemble - template uses generated name", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{ManifestFile, SignatureFile} {
			assets := testAssets()
			assets[name] = []byte("x")

			_, err := Assemble([]byte(testDocument), assets, material)

			var pkgErr *PackagingError
			require.True(t, errors.As(err, &pkgErr))
			require.Equal(t, name, pkgErr.File)
		}
	})

	t.Run("test assemble - missing or mismatched material", func(t *testing.T) {
		t.Parallel()

		_, err := Assemble([]byte(testDocument), testAssets(), nil)

		var signErr *SigningError
		require.True(t, errors.As(err, &signErr))

		other := testutil.NewPKI(t)

		_, err = Assemble([]byte(testDocument), testAssets(), &signing.Material{
			Certificate: pki.Cert,
			PrivateKey:  other.Key,
		})
		require.True(t, errors.As(err, &signErr))
		require.ErrorIs(t, err, signing.ErrKeyMismatch)
	})

	t.Run("test assemble - concurrent calls", func(t *testing.T) {
		t.Parallel()

		assets := testAssets()
		results := make(chan error, 4)

		for i := 0; i < 4; i++ {
			go func() {
				archive, err := Assemble([]byte(testDocument), assets, material)
				if err != nil {
					results <- err

					return
				}

				a, err := Open(archive)
				if err != nil {
					results <- err

					return
				}

				results <- a.Verify()
			}()
		}

		for i := 0; i < 4; i++ {
			require.NoError(t, <-results)
		}
	})
}

func TestSign(t *testing.T) {
	t.Parallel()

	pki := testutil.NewPKI(t)

	sig, err := Sign([]byte("manifest"), newMaterial(t, pki))
	require.NoError(t, err)
	require.NoError(t, VerifySignature([]byte("manifest"), sig))
	require.ErrorIs(t, VerifySignature([]byte("manifesT"), sig), ErrSignatureInvalid)
	require.ErrorIs(t, VerifySignature([]byte("manifest"), []byte("garbage")), ErrSignatureInvalid)

	_, err = Sign([]byte("manifest"), &signing.Material{})

	var signErr *SigningError
	require.True(t, errors.As(err, &signErr))
	require.Contains(t, signErr.Error(), "signing manifest failed")
}

func TestBundle(t *testing.T) {
	t.Parallel()

	b := NewBundle()
	require.NoError(t, b.Add("logo.png", []byte("l")))
	require.NoError(t, b.Add("icon.png", []byte("i")))
	require.NoError(t, b.Add(PassFile, []byte("{}")))
	require.Equal(t, []string{"icon.png", "logo.png", PassFile}, b.Names())

	data, ok := b.Get("icon.png")
	require.True(t, ok)
	require.Equal(t, []byte("i"), data)

	err := b.Add("icon.png", []byte("again"))
	require.EqualError(t, err, "packaging icon.png failed: duplicate file")

	err = b.Add(ManifestFile, []byte("{}"))
	require.EqualError(t, err, "packaging manifest.json failed: name is reserved for generated files")

	require.True(t, IsReserved(SignatureFile))
	require.False(t, IsReserved("icon.png"))
}
