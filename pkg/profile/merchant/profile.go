/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package merchant

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/trustbloc/pass-adapter/pkg/pass"
)

const (
	keyPattern       = "%s_%s"
	profileKeyPrefix = "merchant"

	storeName = "merchant"
)

// ErrProfileExists is returned when saving a merchant id that is already registered.
var ErrProfileExists = errors.New("merchant profile already exists")

// Profile db operation.
type Profile struct {
	store storage.Store
	// serializes the existence check and write of SaveProfile and DeleteProfile.
	// Instances sharing one database are not coordinated.
	mu sync.Mutex
}

// ProfileData is a stored merchant record.
type ProfileData struct {
	pass.MerchantData
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// New returns new merchant profile instance.
func New(provider storage.Provider) (*Profile, error) {
	store, err := provider.OpenStore(storeName)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", storeName, err)
	}

	return &Profile{store: store}, nil
}

// SaveProfile saves the merchant record.
func (c *Profile) SaveProfile(data *ProfileData) error {
	if err := data.Validate(); err != nil {
		return fmt.Errorf("profile request is invalid: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	profile, err := c.GetProfile(data.ID)
	if err != nil && !errors.Is(err, storage.ErrDataNotFound) {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	if profile != nil {
		return fmt.Errorf("%w: %s", ErrProfileExists, profile.ID)
	}

	if data.CreatedAt == nil {
		now := time.Now().UTC()
		data.CreatedAt = &now
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("merchant profile save - marshalling error: %w", err)
	}

	return c.store.Put(getDBKey(data.ID), bytes) // nolint:wrapcheck // reduce cyclo
}

// GetProfile retrieves the merchant record by id.
func (c *Profile) GetProfile(id string) (*ProfileData, error) {
	bytes, err := c.store.Get(getDBKey(id))
	if err != nil {
		return nil, fmt.Errorf("get profile : %w", err)
	}

	response := &ProfileData{}

	err = json.Unmarshal(bytes, response)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile data: %w", err)
	}

	return response, nil
}

// DeleteProfile removes the merchant record.
func (c *Profile) DeleteProfile(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.GetProfile(id); err != nil {
		return err
	}

	if err := c.store.Delete(getDBKey(id)); err != nil {
		return fmt.Errorf("delete profile : %w", err)
	}

	return nil
}

func getDBKey(id string) string {
	return fmt.Sprintf(keyPattern, profileKeyPrefix, id)
}
