/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pass

import (
	"math"
	"strings"
	"time"
)

const (
	maxLatitude  = 90
	maxLongitude = 180
)

// MerchantData is the business offering the coupon.
type MerchantData struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	Address        string    `json:"address,omitempty"`
	ExpirationDate time.Time `json:"expirationDate"`
	Color          string    `json:"color,omitempty"`
	LogoText       string    `json:"logoText,omitempty"`
	RelevantText   string    `json:"relevantText,omitempty"`
}

// UserData is the coupon holder.
type UserData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Validate checks the merchant identity and coordinate pair.
func (m *MerchantData) Validate() error {
	if m == nil {
		return invalid("merchant", "data is missing")
	}

	if strings.TrimSpace(m.ID) == "" {
		return invalid("merchant.id", "value is empty")
	}

	if strings.TrimSpace(m.Name) == "" {
		return invalid("merchant.name", "value is empty")
	}

	return m.validateCoordinates()
}

// HasLocation reports whether both coordinates are present.
func (m *MerchantData) HasLocation() bool {
	return m.Latitude != nil && m.Longitude != nil
}

func (m *MerchantData) validateCoordinates() error {
	switch {
	case m.Latitude == nil && m.Longitude == nil:
		return nil
	case m.Latitude == nil:
		return invalid("merchant.latitude", "value is missing while longitude is set")
	case m.Longitude == nil:
		return invalid("merchant.longitude", "value is missing while latitude is set")
	}

	if !inRange(*m.Latitude, maxLatitude) {
		return invalid("merchant.latitude", "value must be within [-90, 90]")
	}

	if !inRange(*m.Longitude, maxLongitude) {
		return invalid("merchant.longitude", "value must be within [-180, 180]")
	}

	return nil
}

func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

// Validate checks the user identity.
func (u *UserData) Validate() error {
	if u == nil {
		return invalid("user", "data is missing")
	}

	if strings.TrimSpace(u.ID) == "" {
		return invalid("user.id", "value is empty")
	}

	return nil
}

// DisplayName returns the holder name, falling back to the claim identifier.
func (u *UserData) DisplayName() string {
	if strings.TrimSpace(u.Name) == "" {
		return u.ID
	}

	return u.Name
}
