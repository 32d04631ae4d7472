/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pkpass

import "sort"

// Bundle maps archive filenames to their content.
type Bundle struct {
	files map[string][]byte
}

// NewBundle returns an empty Bundle.
func NewBundle() *Bundle {
	return &Bundle{files: map[string][]byte{}}
}

// Add puts a file into the bundle. Names may be added once; the manifest and
// signature names are rejected since those files are generated.
func (b *Bundle) Add(name string, data []byte) error {
	if name == ManifestFile || name == SignatureFile {
		return &PackagingError{File: name, Err: errReservedName}
	}

	if _, exists := b.files[name]; exists {
		return &PackagingError{File: name, Err: errDuplicateFile}
	}

	b.files[name] = data

	return nil
}

// Names returns the filenames in sorted order.
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.files))

	for name := range b.files {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Get returns the content of name.
func (b *Bundle) Get(name string) ([]byte, bool) {
	data, ok := b.files[name]

	return data, ok
}
