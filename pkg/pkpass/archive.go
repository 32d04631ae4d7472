/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pkpass

import (
	"archive/zip"
	"bytes"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.mozilla.org/pkcs7"
)

// MaxContentSize bounds the total uncompressed size read from an archive.
const MaxContentSize = 32 << 20

// Archive is an opened wallet pass archive.
type Archive struct {
	// Files holds every entry except the manifest and signature.
	Files         map[string][]byte
	ManifestBytes []byte
	Manifest      Manifest
	Signature     []byte
}

// Open reads an archive produced by Assemble or any other pass signer.
func Open(data []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedArchive, err)
	}

	a := &Archive{Files: map[string][]byte{}}

	var total int64

	seen := make(map[string]struct{}, len(r.File))

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			return nil, fmt.Errorf("%w: %s", errUnexpectedContent, f.Name)
		}

		if _, exists := seen[f.Name]; exists {
			return nil, fmt.Errorf("%w: %s", errDuplicateFile, f.Name)
		}

		seen[f.Name] = struct{}{}

		content, err := readEntry(f, MaxContentSize-total)
		if err != nil {
			return nil, err
		}

		total += int64(len(content))

		switch f.Name {
		case ManifestFile:
			a.ManifestBytes = content
		case SignatureFile:
			a.Signature = content
		default:
			a.Files[f.Name] = content
		}
	}

	if a.ManifestBytes == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, ManifestFile)
	}

	if a.Signature == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, SignatureFile)
	}

	a.Manifest, err = ParseManifest(a.ManifestBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedArchive, err)
	}

	return a, nil
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %s", ErrMalformedArchive, f.Name, err)
	}

	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			logger.Warnf("failed to close archive entry %s : %s", f.Name, closeErr)
		}
	}()

	content, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %s", ErrMalformedArchive, f.Name, err)
	}

	if int64(len(content)) > limit {
		return nil, errArchiveTooLarge
	}

	return content, nil
}

// Names returns the archive filenames covered by the manifest, sorted.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.Files))

	for name := range a.Files {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Verify recomputes every digest, checks that the manifest and the archive list
// the same files and verifies the manifest signature.
func (a *Archive) Verify() error {
	for name, digest := range a.Manifest {
		content, ok := a.Files[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingFile, name)
		}

		if !strings.EqualFold(Digest(content), digest) {
			return fmt.Errorf("%w: %s", ErrDigestMismatch, name)
		}
	}

	for name := range a.Files {
		if _, ok := a.Manifest[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnlistedFile, name)
		}
	}

	if _, ok := a.Files[PassFile]; !ok {
		return fmt.Errorf("%w: %s", ErrMissingFile, PassFile)
	}

	return VerifySignature(a.ManifestBytes, a.Signature)
}

// SerialNumber returns the serial number recorded in pass.json.
func (a *Archive) SerialNumber() (string, error) {
	doc := struct {
		SerialNumber string `json:"serialNumber"`
	}{}

	content, ok := a.Files[PassFile]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingFile, PassFile)
	}

	if err := json.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrMalformedArchive, PassFile, err)
	}

	return doc.SerialNumber, nil
}

// Signer returns the certificate that signed the manifest.
func (a *Archive) Signer() (*x509.Certificate, error) {
	p7, err := pkcs7.Parse(a.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSignatureInvalid, err)
	}

	signer := p7.GetOnlySigner()
	if signer == nil {
		return nil, fmt.Errorf("%w: expected exactly one signer", ErrSignatureInvalid)
	}

	return signer, nil
}
