/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pkpass

import (
	"crypto/sha1" // nolint: gosec
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Manifest maps every archive file except the manifest and signature to its hex SHA-1 digest.
type Manifest map[string]string

// Digest returns the hex SHA-1 of data, the digest the wallet expects.
func Digest(data []byte) string {
	sum := sha1.Sum(data) // nolint: gosec

	return hex.EncodeToString(sum[:])
}

// Marshal returns the manifest.json bytes. Keys are written in sorted order.
func (m Manifest) Marshal() ([]byte, error) {
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest : %w", err)
	}

	return b, nil
}

// ParseManifest decodes manifest.json bytes.
func ParseManifest(data []byte) (Manifest, error) {
	m := Manifest{}

	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest : %w", err)
	}

	return m, nil
}
