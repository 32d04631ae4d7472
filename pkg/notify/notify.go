/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package notify

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/pass-adapter/pkg/internal/common/adapterutil"
)

var logger = log.New("pass-adapter/notify")

const (
	defaultRetries  = 3
	defaultInterval = time.Second
)

// Sender delivers a message to a recipient.
type Sender interface {
	Send(recipient, message string) error
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type webhookRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// Option configures the webhook.
type Option func(*Webhook)

// WithRetry sets the number of retries and the constant interval between them.
func WithRetry(retries uint64, interval time.Duration) Option {
	return func(w *Webhook) {
		w.retries = retries
		w.interval = interval
	}
}

// WithHTTPClient overrides the http client.
func WithHTTPClient(client httpClient) Option {
	return func(w *Webhook) {
		w.httpClient = client
	}
}

// Webhook posts delivery requests to an http endpoint.
type Webhook struct {
	url         string
	bearerToken string
	httpClient  httpClient
	retries     uint64
	interval    time.Duration
}

// NewWebhook returns a webhook sender posting to endpoint.
func NewWebhook(endpoint string, tlsConfig *tls.Config, bearerToken string, opts ...Option) (*Webhook, error) {
	if !adapterutil.ValidHTTPURL(endpoint) {
		return nil, fmt.Errorf("invalid webhook url: %s", endpoint)
	}

	w := &Webhook{
		url:         endpoint,
		bearerToken: bearerToken,
		httpClient:  &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}},
		retries:     defaultRetries,
		interval:    defaultInterval,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Send posts the message. Server errors and transport failures are retried;
// a 4xx response is returned immediately.
func (w *Webhook) Send(recipient, message string) error {
	if recipient == "" {
		return errors.New("recipient is mandatory")
	}

	reqBytes, err := json.Marshal(&webhookRequest{Recipient: recipient, Message: message})
	if err != nil {
		return fmt.Errorf("marshal webhook request : %w", err)
	}

	return backoff.RetryNotify(
		func() error {
			return w.post(reqBytes)
		},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(w.interval), w.retries),
		func(retryErr error, t time.Duration) {
			logger.Warnf("failed to deliver to %s, retrying in %s : %s", w.url, t, retryErr)
		},
	)
}

func (w *Webhook) post(reqBytes []byte) error {
	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(reqBytes))
	if err != nil {
		return backoff.Permanent(err)
	}

	req.Header.Set("Content-Type", "application/json")

	if w.bearerToken != "" {
		req.Header.Add("Authorization", "Bearer "+w.bearerToken)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request : %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warnf("failed to close response body")
		}
	}()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		logger.Warnf("failed to read response body for status: %d", resp.StatusCode)
	}

	statusErr := fmt.Errorf("http request: %d %s", resp.StatusCode, string(body))

	if resp.StatusCode < http.StatusInternalServerError {
		return backoff.Permanent(statusErr)
	}

	return statusErr
}
