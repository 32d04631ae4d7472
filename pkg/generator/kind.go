/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	"errors"

	"github.com/trustbloc/pass-adapter/pkg/pass"
	"github.com/trustbloc/pass-adapter/pkg/pkpass"
	"github.com/trustbloc/pass-adapter/pkg/signing"
)

// Kind classifies generation failures.
type Kind string

// Failure kinds.
const (
	KindNone        Kind = "success"
	KindValidation  Kind = "validation"
	KindCertificate Kind = "certificate"
	KindSigning     Kind = "signing"
	KindPackaging   Kind = "packaging"
	KindUnknown     Kind = "unknown"
)

// KindOf returns the failure kind of err.
func KindOf(err error) Kind {
	var (
		validationErr  *pass.ValidationError
		certificateErr *signing.CertificateError
		signingErr     *pkpass.SigningError
		packagingErr   *pkpass.PackagingError
	)

	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &certificateErr):
		return KindCertificate
	case errors.As(err, &signingErr):
		return KindSigning
	case errors.As(err, &packagingErr):
		return KindPackaging
	default:
		return KindUnknown
	}
}
