/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pkpass assembles, signs and verifies wallet pass archives.
//
// An archive is a zip file holding pass.json, the template images, a
// manifest.json with the SHA-1 digest of every other file and a detached
// PKCS#7 signature of the manifest.
package pkpass

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/trustbloc/edge-core/pkg/log"
)

var logger = log.New("pass-adapter/pkpass")

// Fixed archive names and the content type archives are served with.
const (
	PassFile      = "pass.json"
	ManifestFile  = "manifest.json"
	SignatureFile = "signature"

	MIMEType  = "application/vnd.apple.pkpass"
	Extension = ".pkpass"
)

// Verification failures.
var (
	ErrMissingFile       = errors.New("file listed in manifest is missing")
	ErrUnlistedFile      = errors.New("file is not listed in manifest")
	ErrDigestMismatch    = errors.New("digest does not match manifest")
	ErrSignatureInvalid  = errors.New("manifest signature is invalid")
	ErrMalformedArchive  = errors.New("malformed archive")
	errDuplicateFile     = errors.New("duplicate file")
	errReservedName      = errors.New("name is reserved for generated files")
	errArchiveTooLarge   = errors.New("archive content exceeds size limit")
	errUnexpectedContent = errors.New("unexpected directory entry")
)

// IsReserved reports whether name is one of the fixed names written by the assembler.
func IsReserved(name string) bool {
	return name == PassFile || name == ManifestFile || name == SignatureFile
}

// SigningError reports a failure to produce the manifest signature.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing manifest failed: %s", e.Err)
}

// Unwrap returns the underlying cause.
func (e *SigningError) Unwrap() error {
	return e.Err
}

// PackagingError reports a failure to build the archive.
type PackagingError struct {
	File string
	Err  error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("packaging %s failed: %s", e.File, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PackagingError) Unwrap() error {
	return e.Err
}
