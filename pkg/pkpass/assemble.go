/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pkpass

import (
	"archive/zip"
	"bytes"
	"crypto/sha1" // nolint: gosec
	"encoding/hex"
	"fmt"
	"io"

	"github.com/trustbloc/pass-adapter/pkg/signing"
)

// Assemble packages the serialized pass document with the template assets and
// signs the resulting manifest. Digests are taken from the bytes written into
// the archive. No partial archive is ever returned.
func Assemble(document []byte, assets map[string][]byte, material *signing.Material) ([]byte, error) {
	if err := material.Check(); err != nil {
		return nil, &SigningError{Err: err}
	}

	bundle := NewBundle()

	for name, data := range assets {
		if IsReserved(name) {
			return nil, &PackagingError{File: name, Err: errReservedName}
		}

		if err := bundle.Add(name, data); err != nil {
			return nil, err
		}
	}

	if err := bundle.Add(PassFile, document); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	manifest := Manifest{}

	for _, name := range bundle.Names() {
		data, _ := bundle.Get(name)

		digest, err := writeEntry(w, name, data)
		if err != nil {
			return nil, err
		}

		manifest[name] = digest
	}

	manifestBytes, err := manifest.Marshal()
	if err != nil {
		return nil, &PackagingError{File: ManifestFile, Err: err}
	}

	signature, err := Sign(manifestBytes, material)
	if err != nil {
		return nil, err
	}

	if _, err := writeEntry(w, ManifestFile, manifestBytes); err != nil {
		return nil, err
	}

	if _, err := writeEntry(w, SignatureFile, signature); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, &PackagingError{File: "archive", Err: err}
	}

	logger.Debugf("assembled archive with %d files, %d bytes", len(manifest)+2, buf.Len())

	return buf.Bytes(), nil
}

// writeEntry streams data into the archive and returns the digest of exactly what was written.
func writeEntry(w *zip.Writer, name string, data []byte) (string, error) {
	zw, err := w.Create(name)
	if err != nil {
		return "", &PackagingError{File: name, Err: err}
	}

	h := sha1.New() // nolint: gosec

	n, err := io.Copy(io.MultiWriter(h, zw), bytes.NewReader(data))
	if err != nil {
		return "", &PackagingError{File: name, Err: err}
	}

	if n != int64(len(data)) {
		return "", &PackagingError{File: name, Err: fmt.Errorf("short write %d of %d bytes", n, len(data))}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
