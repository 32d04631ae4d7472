/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pkpass

import (
	"fmt"

	"go.mozilla.org/pkcs7"

	"github.com/trustbloc/pass-adapter/pkg/signing"
)

// Sign returns a detached PKCS#7 signature of manifest. The signer certificate
// and the authority chain are embedded in the signature.
func Sign(manifest []byte, material *signing.Material) ([]byte, error) {
	if err := material.Check(); err != nil {
		return nil, &SigningError{Err: err}
	}

	signedData, err := pkcs7.NewSignedData(manifest)
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("create signed data : %w", err)}
	}

	signedData.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)

	err = signedData.AddSignerChain(material.Certificate, material.PrivateKey, material.Authority,
		pkcs7.SignerInfoConfig{})
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("add signer chain : %w", err)}
	}

	signedData.Detach()

	der, err := signedData.Finish()
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("finish signed data : %w", err)}
	}

	return der, nil
}

// VerifySignature checks a detached signature of manifest against the certificates it embeds.
func VerifySignature(manifest, signature []byte) error {
	p7, err := pkcs7.Parse(signature)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSignatureInvalid, err)
	}

	p7.Content = manifest

	if err := p7.Verify(); err != nil {
		return fmt.Errorf("%w: %s", ErrSignatureInvalid, err)
	}

	return nil
}
