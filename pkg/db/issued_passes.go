/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package db

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	sqlUpsertIssuedPass = `insert into issued_pass (serial_number, merchant_id, user_id, pass_type_id, issued_at)
values (?, ?, ?, ?, ?) on duplicate key update issued_at = values(issued_at), pass_type_id = values(pass_type_id)`
	sqlIssuedPassBySerial = `select id, serial_number, merchant_id, user_id, pass_type_id, issued_at
from issued_pass where serial_number = ?`
	sqlIssuedPassesByMerchant = `select id, serial_number, merchant_id, user_id, pass_type_id, issued_at
from issued_pass where merchant_id = ? order by issued_at desc`
)

// IssuedPass records a generated pass. The serial number identifies the claim,
// so issuing the same claim again refreshes IssuedAt only.
type IssuedPass struct {
	ID           int64     `json:"-"`
	SerialNumber string    `json:"serialNumber"`
	MerchantID   string    `json:"merchantID"`
	UserID       string    `json:"userID"`
	PassTypeID   string    `json:"passTypeID"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// IssuedPasses is an IssuedPass DAO.
type IssuedPasses struct {
	DB *sql.DB
}

// NewIssuedPasses returns a new IssuedPasses.
func NewIssuedPasses(db *sql.DB) *IssuedPasses {
	return &IssuedPasses{DB: db}
}

// Upsert records the issued pass.
func (p *IssuedPasses) Upsert(ip *IssuedPass) error {
	_, err := p.DB.Exec(sqlUpsertIssuedPass, ip.SerialNumber, ip.MerchantID, ip.UserID, ip.PassTypeID, ip.IssuedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert issued pass %s : %w", ip.SerialNumber, err)
	}

	return nil
}

// FindBySerialNumber returns the issued pass with the given serial number.
// The error wraps sql.ErrNoRows when there is none.
func (p *IssuedPasses) FindBySerialNumber(serial string) (*IssuedPass, error) {
	result := &IssuedPass{}

	err := scan(p.DB.QueryRow(sqlIssuedPassBySerial, serial), result)
	if err != nil {
		return nil, fmt.Errorf("failed to query issued_pass by serial_number : %w", err)
	}

	return result, nil
}

// FindByMerchant returns the passes issued for a merchant, most recent first.
func (p *IssuedPasses) FindByMerchant(merchantID string) ([]*IssuedPass, error) {
	rows, err := p.DB.Query(sqlIssuedPassesByMerchant, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query issued_pass by merchant_id : %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.Warnf("failed to close rows : %s", closeErr)
		}
	}()

	var result []*IssuedPass

	for rows.Next() {
		ip := &IssuedPass{}

		if err := scan(rows, ip); err != nil {
			return nil, fmt.Errorf("failed to scan issued_pass : %w", err)
		}

		result = append(result, ip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issued_pass : %w", err)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scan(s scanner, ip *IssuedPass) error {
	return s.Scan(&ip.ID, &ip.SerialNumber, &ip.MerchantID, &ip.UserID, &ip.PassTypeID, &ip.IssuedAt)
}
