/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operation

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/pass-adapter/pkg/db"
	"github.com/trustbloc/pass-adapter/pkg/generator"
	"github.com/trustbloc/pass-adapter/pkg/internal/testutil"
	"github.com/trustbloc/pass-adapter/pkg/pass"
	"github.com/trustbloc/pass-adapter/pkg/restapi"
	"github.com/trustbloc/pass-adapter/pkg/signing"
	"github.com/trustbloc/pass-adapter/pkg/template"
)

const passTypeID = "pass.com.example.coupon"

func newMaterial(t *testing.T) *signing.Material {
	t.Helper()

	pki := testutil.NewPKI(t)

	m, err := signing.Load(&signing.Raw{
		Certificate: pki.CertPEM(),
		PrivateKey:  pki.KeyPKCS8PEM(t),
		Authority:   pki.CAPEM(),
	})
	require.NoError(t, err)

	return m
}

func newGenerator(t *testing.T, material *signing.Material) *generator.Generator {
	t.Helper()

	b, err := pass.NewBuilder(&pass.Config{
		PassTypeID:       passTypeID,
		TeamID:           "ABCDE12345",
		OrganizationName: "Example Deals",
	})
	require.NoError(t, err)

	templates, err := template.Default()
	require.NoError(t, err)

	g, err := generator.New(&generator.Config{Builder: b, Templates: templates, Keys: signing.NewHolder(material)})
	require.NoError(t, err)

	return g
}

func newOperation(t *testing.T, material *signing.Material, opts ...func(*Config)) *Operation {
	t.Helper()

	config := &Config{
		Generator:     newGenerator(t, material),
		StoreProvider: mem.NewProvider(),
	}

	for _, opt := range opts {
		opt(config)
	}

	op, err := New(config)
	require.NoError(t, err)

	return op
}

func getHandler(t *testing.T, op *Operation, lookup, method string) restapi.Handler {
	t.Helper()

	handlers := op.GetRESTHandlers()
	require.NotEmpty(t, handlers)

	for _, h := range handlers {
		if h.Path() == lookup && h.Method() == method {
			return h
		}
	}

	require.Fail(t, "unable to find handler")

	return nil
}

func serveHTTP(t *testing.T, handler http.HandlerFunc, method, path string, req []byte) *httptest.ResponseRecorder {
	t.Helper()

	httpReq, err := http.NewRequest(
		method,
		path,
		bytes.NewBuffer(req),
	)
	require.NoError(t, err)

	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, httpReq)

	return rr
}

func serveHTTPMux(t *testing.T, handler restapi.Handler, endpoint string, reqBytes []byte,
	urlVars map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	r, err := http.NewRequest(handler.Method(), endpoint, bytes.NewBuffer(reqBytes))
	require.NoError(t, err)

	rr := httptest.NewRecorder()

	req1 := mux.SetURLVars(r, urlVars)

	handler.Handle().ServeHTTP(rr, req1)

	return rr
}

type mockRegistry struct {
	mu          sync.Mutex
	passes      map[string]*db.IssuedPass
	upsertErr   error
	findErr     error
	merchantErr error
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{passes: map[string]*db.IssuedPass{}}
}

func (m *mockRegistry) Upsert(ip *db.IssuedPass) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.upsertErr != nil {
		return m.upsertErr
	}

	m.passes[ip.SerialNumber] = ip

	return nil
}

func (m *mockRegistry) FindBySerialNumber(serial string) (*db.IssuedPass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}

	ip, ok := m.passes[serial]
	if !ok {
		return nil, fmt.Errorf("failed to query issued_pass by serial_number : %w", sql.ErrNoRows)
	}

	return ip, nil
}

func (m *mockRegistry) FindByMerchant(merchantID string) ([]*db.IssuedPass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.merchantErr != nil {
		return nil, m.merchantErr
	}

	var result []*db.IssuedPass

	for _, ip := range m.passes {
		if ip.MerchantID == merchantID {
			result = append(result, ip)
		}
	}

	return result, nil
}

type notification struct {
	recipient string
	message   string
}

type mockNotifier struct {
	sent chan notification
	err  error
}

func (m *mockNotifier) Send(recipient, message string) error {
	m.sent <- notification{recipient: recipient, message: message}

	return m.err
}

type mockMetrics struct {
	mu      sync.Mutex
	results []string
}

func (m *mockMetrics) ObserveGeneration(result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results = append(m.results, result)
}
