/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pass

import (
	"github.com/trustbloc/pass-adapter/pkg/restapi"
	"github.com/trustbloc/pass-adapter/pkg/restapi/pass/operation"
)

// New returns new controller instance.
func New(config *operation.Config) (*Controller, error) {
	passService, err := operation.New(config)
	if err != nil {
		return nil, err
	}

	handlers := passService.GetRESTHandlers()

	return &Controller{handlers: handlers}, nil
}

// Controller contains handlers for controller.
type Controller struct {
	handlers []restapi.Handler
}

// GetOperations returns all controller endpoints.
func (c *Controller) GetOperations() []restapi.Handler {
	return c.handlers
}
