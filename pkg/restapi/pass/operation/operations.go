/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operation

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/trustbloc/edge-core/pkg/log"
	"golang.org/x/time/rate"

	"github.com/trustbloc/pass-adapter/pkg/db"
	"github.com/trustbloc/pass-adapter/pkg/generator"
	"github.com/trustbloc/pass-adapter/pkg/internal/common/adapterutil"
	"github.com/trustbloc/pass-adapter/pkg/internal/common/support"
	"github.com/trustbloc/pass-adapter/pkg/notify"
	"github.com/trustbloc/pass-adapter/pkg/pass"
	"github.com/trustbloc/pass-adapter/pkg/pkpass"
	"github.com/trustbloc/pass-adapter/pkg/profile/merchant"
	"github.com/trustbloc/pass-adapter/pkg/restapi"
	commhttp "github.com/trustbloc/pass-adapter/pkg/restapi/internal/common/http"
	"github.com/trustbloc/pass-adapter/pkg/signing"
)

var logger = log.New("pass-adapter/restapi/pass")

const (
	// API endpoints
	merchantsEndpoint       = "/merchants"
	merchantEndpoint        = merchantsEndpoint + "/{id}"
	merchantPassesEndpoint  = merchantEndpoint + "/passes"
	passesEndpoint          = "/passes"
	passEndpoint            = passesEndpoint + "/{serial}"
	verifyPassEndpoint      = passesEndpoint + "/verify"
	signingReloadEndpoint   = "/signing/reload"
	notificationMsgTemplate = "Your %s coupon is ready: %s"

	// http params
	idPathParam     = "id"
	serialPathParam = "serial"

	maxRequestSize = 1 << 20
)

type registry interface {
	Upsert(ip *db.IssuedPass) error
	FindBySerialNumber(serial string) (*db.IssuedPass, error)
	FindByMerchant(merchantID string) ([]*db.IssuedPass, error)
}

type metricsRecorder interface {
	ObserveGeneration(result string, d time.Duration)
}

// Config defines configuration for pass operations.
type Config struct {
	Generator     *generator.Generator
	StoreProvider storage.Provider
	// Registry records issued passes. Optional.
	Registry registry
	// Notifier delivers pass notifications. Optional.
	Notifier notify.Sender
	// Metrics records generation outcomes. Optional.
	Metrics metricsRecorder
	// ReloadSigningMaterial re-reads the configured signing material. Optional.
	ReloadSigningMaterial func() (*signing.Material, error)
	// RateLimit is the number of generation requests allowed per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Operation defines handlers for pass operations.
type Operation struct {
	generator    *generator.Generator
	profileStore *merchant.Profile
	registry     registry
	notifier     notify.Sender
	metrics      metricsRecorder
	reload       func() (*signing.Material, error)
	limiter      *rate.Limiter
}

// New returns pass rest instance.
func New(config *Config) (*Operation, error) {
	if config.Generator == nil {
		return nil, errors.New("pass generator is mandatory")
	}

	p, err := merchant.New(config.StoreProvider)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	burst := config.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Operation{
		generator:    config.Generator,
		profileStore: p,
		registry:     config.Registry,
		notifier:     config.Notifier,
		metrics:      config.Metrics,
		reload:       config.ReloadSigningMaterial,
		limiter:      rate.NewLimiter(limit, burst),
	}, nil
}

// GetRESTHandlers get all controller API handler available for this service.
func (o *Operation) GetRESTHandlers() []restapi.Handler {
	return []restapi.Handler{
		// merchant profile
		support.NewHTTPHandler(merchantsEndpoint, http.MethodPost, o.createMerchantHandler),
		support.NewHTTPHandler(merchantEndpoint, http.MethodGet, o.getMerchantHandler),
		support.NewHTTPHandler(merchantEndpoint, http.MethodDelete, o.deleteMerchantHandler),

		// passes
		support.NewHTTPHandler(merchantPassesEndpoint, http.MethodPost, o.generateMerchantPassHandler),
		support.NewHTTPHandler(merchantPassesEndpoint, http.MethodGet, o.listMerchantPassesHandler),
		support.NewHTTPHandler(passesEndpoint, http.MethodPost, o.generatePassHandler),
		support.NewHTTPHandler(verifyPassEndpoint, http.MethodPost, o.verifyPassHandler),
		support.NewHTTPHandler(passEndpoint, http.MethodGet, o.getPassHandler),

		// signing material
		support.NewHTTPHandler(signingReloadEndpoint, http.MethodPost, o.reloadSigningHandler),
	}
}

func (o *Operation) createMerchantHandler(rw http.ResponseWriter, req *http.Request) {
	data := &merchant.ProfileData{}

	if err := json.NewDecoder(io.LimitReader(req.Body, maxRequestSize)).Decode(data); err != nil {
		commhttp.WriteErrorResponse(rw, http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))

		return
	}

	err := o.profileStore.SaveProfile(data)
	if err != nil {
		var validationErr *pass.ValidationError

		status := http.StatusInternalServerError

		switch {
		case errors.As(err, &validationErr):
			status = http.StatusBadRequest
		case errors.Is(err, merchant.ErrProfileExists):
			status = http.StatusConflict
		}

		commhttp.WriteErrorResponse(rw, status, fmt.Sprintf("failed to create merchant profile: %s", err.Error()))

		return
	}

	commhttp.WriteResponseWithStatus(rw, http.StatusCreated, data)
}

func (o *Operation) getMerchantHandler(rw http.ResponseWriter, req *http.Request) {
	profile, ok := o.lookupMerchant(rw, mux.Vars(req)[idPathParam])
	if !ok {
		return
	}

	commhttp.WriteResponse(rw, profile)
}

func (o *Operation) deleteMerchantHandler(rw http.ResponseWriter, req *http.Request) {
	err := o.profileStore.DeleteProfile(mux.Vars(req)[idPathParam])
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrDataNotFound) {
			status = http.StatusNotFound
		}

		commhttp.WriteErrorResponse(rw, status, fmt.Sprintf("failed to delete merchant profile: %s", err.Error()))

		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

func (o *Operation) generateMerchantPassHandler(rw http.ResponseWriter, req *http.Request) {
	if !o.limiter.Allow() {
		commhttp.WriteErrorResponse(rw, http.StatusTooManyRequests, "pass generation rate limit exceeded")

		return
	}

	request := &MerchantPassRequest{}

	if err := json.NewDecoder(io.LimitReader(req.Body, maxRequestSize)).Decode(request); err != nil {
		commhttp.WriteErrorResponse(rw, http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))

		return
	}

	profile, ok := o.lookupMerchant(rw, mux.Vars(req)[idPathParam])
	if !ok {
		return
	}

	o.generate(rw, &profile.MerchantData, request.User, request.Notify)
}

func (o *Operation) generatePassHandler(rw http.ResponseWriter, req *http.Request) {
	if !o.limiter.Allow() {
		commhttp.WriteErrorResponse(rw, http.StatusTooManyRequests, "pass generation rate limit exceeded")

		return
	}

	request := &PassRequest{}

	if err := json.NewDecoder(io.LimitReader(req.Body, maxRequestSize)).Decode(request); err != nil {
		commhttp.WriteErrorResponse(rw, http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))

		return
	}

	o.generate(rw, request.Merchant, request.User, request.Notify)
}

func (o *Operation) generate(rw http.ResponseWriter, m *pass.MerchantData, user *pass.UserData, recipient string) {
	start := time.Now()

	result, err := o.generator.Generate(m, user)

	if o.metrics != nil {
		o.metrics.ObserveGeneration(string(generator.KindOf(err)), time.Since(start))
	}

	if err != nil {
		commhttp.WriteErrorResponse(rw, generationStatus(err), fmt.Sprintf("failed to generate pass: %s", err.Error()))

		return
	}

	o.record(m, user, result)
	o.notify(m, recipient, result)

	rw.Header().Set("Content-Type", pkpass.MIMEType)
	rw.Header().Set("Content-Disposition", adapterutil.ContentDispositionAttachment(result.Filename()))
	rw.WriteHeader(http.StatusOK)

	if _, err := rw.Write(result.Archive); err != nil {
		logger.Errorf("failed to write pass %s : %s", result.SerialNumber, err)
	}
}

func (o *Operation) record(m *pass.MerchantData, user *pass.UserData, result *generator.Result) {
	if o.registry == nil {
		return
	}

	err := o.registry.Upsert(&db.IssuedPass{
		SerialNumber: result.SerialNumber,
		MerchantID:   m.ID,
		UserID:       user.ID,
		PassTypeID:   result.Document.PassTypeIdentifier,
		IssuedAt:     time.Now().UTC(),
	})
	if err != nil {
		logger.Warnf("failed to record issued pass %s : %s", result.SerialNumber, err)
	}
}

func (o *Operation) notify(m *pass.MerchantData, recipient string, result *generator.Result) {
	if o.notifier == nil || recipient == "" {
		return
	}

	message := fmt.Sprintf(notificationMsgTemplate, m.Name, result.SerialNumber)

	go func() {
		if err := o.notifier.Send(recipient, message); err != nil {
			logger.Warnf("failed to notify %s about pass %s : %s", recipient, result.SerialNumber, err)
		}
	}()
}

func (o *Operation) listMerchantPassesHandler(rw http.ResponseWriter, req *http.Request) {
	if o.registry == nil {
		commhttp.WriteErrorResponse(rw, http.StatusNotFound, "issued pass registry is not configured")

		return
	}

	merchantID := mux.Vars(req)[idPathParam]

	passes, err := o.registry.FindByMerchant(merchantID)
	if err != nil {
		commhttp.WriteErrorResponse(rw, http.StatusInternalServerError,
			fmt.Sprintf("failed to list issued passes: %s", err.Error()))

		return
	}

	if passes == nil {
		passes = []*db.IssuedPass{}
	}

	commhttp.WriteResponse(rw, &IssuedPassesResponse{MerchantID: merchantID, Passes: passes})
}

func (o *Operation) getPassHandler(rw http.ResponseWriter, req *http.Request) {
	if o.registry == nil {
		commhttp.WriteErrorResponse(rw, http.StatusNotFound, "issued pass registry is not configured")

		return
	}

	ip, err := o.registry.FindBySerialNumber(mux.Vars(req)[serialPathParam])
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sql.ErrNoRows) {
			status = http.StatusNotFound
		}

		commhttp.WriteErrorResponse(rw, status, fmt.Sprintf("failed to get issued pass: %s", err.Error()))

		return
	}

	commhttp.WriteResponse(rw, ip)
}

func (o *Operation) verifyPassHandler(rw http.ResponseWriter, req *http.Request) {
	data, err := ioutil.ReadAll(io.LimitReader(req.Body, pkpass.MaxContentSize))
	if err != nil {
		commhttp.WriteErrorResponse(rw, http.StatusBadRequest, fmt.Sprintf("failed to read request: %s", err.Error()))

		return
	}

	archive, err := pkpass.Open(data)
	if err != nil {
		commhttp.WriteErrorResponse(rw, http.StatusBadRequest, fmt.Sprintf("invalid pass archive: %s", err.Error()))

		return
	}

	resp := &VerifyResponse{Files: archive.Names()}

	if serial, serialErr := archive.SerialNumber(); serialErr == nil {
		resp.SerialNumber = serial
	}

	if err := archive.Verify(); err != nil {
		resp.Error = err.Error()
		commhttp.WriteResponse(rw, resp)

		return
	}

	resp.Valid = true

	if signer, signerErr := archive.Signer(); signerErr == nil {
		resp.Signer = signer.Subject.CommonName
	}

	commhttp.WriteResponse(rw, resp)
}

func (o *Operation) reloadSigningHandler(rw http.ResponseWriter, _ *http.Request) {
	if o.reload == nil {
		commhttp.WriteErrorResponse(rw, http.StatusNotFound, "signing material reload is not configured")

		return
	}

	m, err := o.generator.Keys().Rotate(o.reload)
	if err != nil {
		commhttp.WriteErrorResponse(rw, http.StatusInternalServerError, err.Error())

		return
	}

	commhttp.WriteResponse(rw, &ReloadResponse{
		Signer:   m.String(),
		NotAfter: m.Certificate.NotAfter.UTC().Format(time.RFC3339),
	})
}

func (o *Operation) lookupMerchant(rw http.ResponseWriter, id string) (*merchant.ProfileData, bool) {
	profile, err := o.profileStore.GetProfile(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrDataNotFound) {
			status = http.StatusNotFound
		}

		commhttp.WriteErrorResponse(rw, status, fmt.Sprintf("failed to get merchant profile: %s", err.Error()))

		return nil, false
	}

	return profile, true
}

func generationStatus(err error) int {
	switch generator.KindOf(err) {
	case generator.KindValidation:
		return http.StatusBadRequest
	case generator.KindCertificate:
		if errors.Is(err, generator.ErrNoSigningMaterial) {
			return http.StatusServiceUnavailable
		}

		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
