/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operation

import (
	"github.com/trustbloc/pass-adapter/pkg/db"
	"github.com/trustbloc/pass-adapter/pkg/pass"
)

// MerchantPassRequest generates a pass for a stored merchant.
type MerchantPassRequest struct {
	User *pass.UserData `json:"user"`
	// Notify is an optional recipient told about the new pass.
	Notify string `json:"notify,omitempty"`
}

// PassRequest generates a pass without a stored merchant.
type PassRequest struct {
	Merchant *pass.MerchantData `json:"merchant"`
	User     *pass.UserData     `json:"user"`
	Notify   string             `json:"notify,omitempty"`
}

// VerifyResponse is the result of checking an uploaded archive.
type VerifyResponse struct {
	Valid        bool     `json:"valid"`
	SerialNumber string   `json:"serialNumber,omitempty"`
	Signer       string   `json:"signer,omitempty"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// IssuedPassesResponse lists the passes issued for a merchant.
type IssuedPassesResponse struct {
	MerchantID string           `json:"merchantID"`
	Passes     []*db.IssuedPass `json:"passes"`
}

// ReloadResponse describes the signing material in use after a reload.
type ReloadResponse struct {
	Signer   string `json:"signer"`
	NotAfter string `json:"notAfter"`
}
