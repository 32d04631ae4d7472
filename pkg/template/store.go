/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/pass-adapter/pkg/pkpass"
)

var logger = log.New("pass-adapter/template")

// RequiredAsset must be part of every template.
const RequiredAsset = "icon.png"

const defaultAssetsDir = "assets"

//go:embed assets/*.png
var defaultAssets embed.FS

// Store is a read-only set of template assets shared by every generated pass.
type Store struct {
	assets map[string][]byte
	names  []string
}

// New returns a Store holding a private copy of assets.
func New(assets map[string][]byte) (*Store, error) {
	s := &Store{assets: make(map[string][]byte, len(assets))}

	for name, data := range assets {
		if err := validateName(name); err != nil {
			return nil, err
		}

		if len(data) == 0 {
			return nil, fmt.Errorf("template asset %s is empty", name)
		}

		s.assets[name] = append([]byte(nil), data...)
		s.names = append(s.names, name)
	}

	if _, ok := s.assets[RequiredAsset]; !ok {
		return nil, fmt.Errorf("template asset %s is missing", RequiredAsset)
	}

	sort.Strings(s.names)

	return s, nil
}

// Default returns the built-in template.
func Default() (*Store, error) {
	entries, err := fs.ReadDir(defaultAssets, defaultAssetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read default template assets : %w", err)
	}

	assets := make(map[string][]byte, len(entries))

	for _, e := range entries {
		data, err := defaultAssets.ReadFile(path.Join(defaultAssetsDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read default template asset %s : %w", e.Name(), err)
		}

		assets[e.Name()] = data
	}

	return New(assets)
}

// LoadDir reads every regular, non-hidden file of dir as a template asset.
func LoadDir(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template dir %s : %w", dir, err)
	}

	assets := make(map[string][]byte, len(entries))

	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Clean(filepath.Join(dir, e.Name())))
		if err != nil {
			return nil, fmt.Errorf("failed to read template asset %s : %w", e.Name(), err)
		}

		assets[e.Name()] = data
	}

	s, err := New(assets)
	if err != nil {
		return nil, err
	}

	logger.Infof("loaded %d template assets from %s", len(s.names), dir)

	return s, nil
}

// Names returns the asset filenames in sorted order.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// Get returns the bytes of an asset. The returned slice must not be modified.
func (s *Store) Get(name string) ([]byte, bool) {
	data, ok := s.assets[name]

	return data, ok
}

// Assets returns the shared asset map. Callers must treat it as read-only.
func (s *Store) Assets() map[string][]byte {
	return s.assets
}

func validateName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid template asset name %q", name)
	}

	if pkpass.IsReserved(name) {
		return fmt.Errorf("template asset name %s is reserved", name)
	}

	return nil
}
