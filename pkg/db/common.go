/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package db

import "github.com/trustbloc/edge-core/pkg/log"

var logger = log.New("pass-adapter/db")
