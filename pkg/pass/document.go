/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pass

import (
	"encoding/json"
	"fmt"
)

// Barcode formats and encodings understood by the wallet.
const (
	BarcodeFormatQR      = "PKBarcodeFormatQR"
	BarcodeEncodingLatin = "iso-8859-1"

	DateStyleMedium = "PKDateStyleMedium"
)

// Document is the logical pass serialized as pass.json.
type Document struct {
	FormatVersion       int        `json:"formatVersion"`
	PassTypeIdentifier  string     `json:"passTypeIdentifier"`
	SerialNumber        string     `json:"serialNumber"`
	TeamIdentifier      string     `json:"teamIdentifier"`
	OrganizationName    string     `json:"organizationName"`
	Description         string     `json:"description"`
	LogoText            string     `json:"logoText,omitempty"`
	ForegroundColor     string     `json:"foregroundColor,omitempty"`
	BackgroundColor     string     `json:"backgroundColor,omitempty"`
	LabelColor          string     `json:"labelColor,omitempty"`
	ExpirationDate      string     `json:"expirationDate,omitempty"`
	Barcode             *Barcode   `json:"barcode,omitempty"`
	Barcodes            []Barcode  `json:"barcodes,omitempty"`
	Locations           []Location `json:"locations,omitempty"`
	MaxDistance         float64    `json:"maxDistance,omitempty"`
	WebServiceURL       string     `json:"webServiceURL,omitempty"`
	AuthenticationToken string     `json:"authenticationToken,omitempty"`
	Coupon              *Structure `json:"coupon,omitempty"`
}

// Structure groups the display fields of a pass style.
type Structure struct {
	PrimaryFields   []Field `json:"primaryFields,omitempty"`
	SecondaryFields []Field `json:"secondaryFields,omitempty"`
	AuxiliaryFields []Field `json:"auxiliaryFields,omitempty"`
	BackFields      []Field `json:"backFields,omitempty"`
}

// Field is a single key/value display entry.
type Field struct {
	Key        string `json:"key"`
	Label      string `json:"label,omitempty"`
	Value      string `json:"value"`
	DateStyle  string `json:"dateStyle,omitempty"`
	IsRelative *bool  `json:"isRelative,omitempty"`
}

// Barcode describes the scannable code shown on the pass front.
type Barcode struct {
	Format          string `json:"format"`
	Message         string `json:"message"`
	MessageEncoding string `json:"messageEncoding"`
	AltText         string `json:"altText,omitempty"`
}

// Location is a geofence that surfaces the pass on the lock screen.
type Location struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RelevantText string  `json:"relevantText,omitempty"`
}

// Marshal returns the pass.json bytes.
func (d *Document) Marshal() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pass document : %w", err)
	}

	return b, nil
}
