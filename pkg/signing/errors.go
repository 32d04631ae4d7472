/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signing

import (
	"fmt"

	"github.com/pkg/errors"
)

// Material parts named in errors.
const (
	PartCertificate = "signer certificate"
	PartPrivateKey  = "signer private key"
	PartAuthority   = "authority certificate"
	PartBundle      = "pkcs12 bundle"
)

var (
	// ErrPassphraseRequired is returned when an encrypted key is supplied without a passphrase.
	ErrPassphraseRequired = errors.New("key is encrypted and no passphrase was supplied")

	// ErrIncorrectPassphrase is returned when the passphrase does not decrypt the key.
	ErrIncorrectPassphrase = errors.New("incorrect passphrase")

	// ErrUnsupportedKey is returned for keys other than RSA and ECDSA.
	ErrUnsupportedKey = errors.New("unsupported private key type")

	// ErrKeyMismatch is returned when the private key does not belong to the signer certificate.
	ErrKeyMismatch = errors.New("private key does not match certificate")

	errNotPEMOrDER = errors.New("not a PEM or DER encoded value")
	errEmpty       = errors.New("no data supplied")
)

// CertificateError reports unusable signing material. It never includes the raw material.
type CertificateError struct {
	Part string
	Err  error
}

func (e *CertificateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Part, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CertificateError) Unwrap() error {
	return e.Err
}

func certErr(part string, err error) error {
	return &CertificateError{Part: part, Err: err}
}
