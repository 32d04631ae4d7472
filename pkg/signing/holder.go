/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signing

import (
	"fmt"
	"sync/atomic"
)

// Holder shares loaded material between concurrent signers and allows it to be
// replaced without readers ever seeing a partial update.
type Holder struct {
	current atomic.Pointer[Material]
}

// NewHolder returns a Holder with initial material, which may be nil.
func NewHolder(m *Material) *Holder {
	h := &Holder{}

	if m != nil {
		h.current.Store(m)
	}

	return h
}

// Current returns the material in use, or nil when none was loaded.
func (h *Holder) Current() *Material {
	return h.current.Load()
}

// Rotate loads new material and swaps it in. On failure the previous material stays in use.
func (h *Holder) Rotate(load func() (*Material, error)) (*Material, error) {
	m, err := load()
	if err != nil {
		return nil, fmt.Errorf("rotate signing material : %w", err)
	}

	if err := m.Check(); err != nil {
		return nil, fmt.Errorf("rotate signing material : %w", certErr(PartPrivateKey, err))
	}

	old := h.current.Swap(m)
	if old != nil {
		logger.Infof("signing material rotated from %s to %s", old, m)
	} else {
		logger.Infof("signing material loaded: %s", m)
	}

	return m, nil
}
