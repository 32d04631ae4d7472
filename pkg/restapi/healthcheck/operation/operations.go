/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operation

import (
	"net/http"
	"time"

	"github.com/trustbloc/pass-adapter/pkg/internal/common/support"
	"github.com/trustbloc/pass-adapter/pkg/restapi"
	commhttp "github.com/trustbloc/pass-adapter/pkg/restapi/internal/common/http"
)

const (
	healthCheckEndpoint = "/healthcheck"
)

type healthCheckResp struct {
	Status      string    `json:"status"`
	CurrentTime time.Time `json:"currentTime"`
}

// Operation defines handlers.
type Operation struct{}

// New returns health check operation instance.
func New() *Operation {
	return &Operation{}
}

// GetRESTHandlers get all controller API handler available for this service.
func (o *Operation) GetRESTHandlers() []restapi.Handler {
	return []restapi.Handler{
		support.NewHTTPHandler(healthCheckEndpoint, http.MethodGet, o.healthCheckHandler),
	}
}

func (o *Operation) healthCheckHandler(rw http.ResponseWriter, r *http.Request) {
	rw.WriteHeader(http.StatusOK)

	commhttp.WriteResponse(rw, &healthCheckResp{
		Status:      "success",
		CurrentTime: time.Now(),
	})
}
