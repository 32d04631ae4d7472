/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/trustbloc/edge-core/pkg/log"
)

var logger = log.New("pass-adapter/mock-webhook")

const (
	addressPattern = ":%s"

	notifyEndpoint        = "/notify"
	notificationsEndpoint = "/notifications"
)

/*
Webhook is a pass delivery receiver for local runs of pass-rest. It accepts the
notifications posted with --webhook-url and lists them back for inspection.
*/

func main() {
	port := os.Getenv("WEBHOOK_PORT")
	if port == "" {
		logger.Fatalf("WEBHOOK_PORT env variable missing")
	}

	r := newReceiver(os.Getenv("WEBHOOK_TOKEN"))

	certPath := os.Getenv("WEBHOOK_TLS_SERVE_CERT")
	keyPath := os.Getenv("WEBHOOK_TLS_SERVE_KEY")

	if certPath != "" && keyPath != "" {
		logger.Fatalf("webhook server start error %s",
			http.ListenAndServeTLS(fmt.Sprintf(addressPattern, port), certPath, keyPath, r.router()))
	}

	logger.Fatalf("webhook server start error %s",
		http.ListenAndServe(fmt.Sprintf(addressPattern, port), r.router()))
}

type notification struct {
	Recipient  string    `json:"recipient"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type receiver struct {
	token         string
	mu            sync.Mutex
	notifications []*notification
}

func newReceiver(token string) *receiver {
	return &receiver{token: token}
}

func (r *receiver) router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc(notifyEndpoint, r.notifyHandler).Methods(http.MethodPost)
	router.HandleFunc(notificationsEndpoint, r.notificationsHandler).Methods(http.MethodGet)

	return router
}

func (r *receiver) notifyHandler(rw http.ResponseWriter, req *http.Request) {
	if r.token != "" && req.Header.Get("Authorization") != "Bearer "+r.token {
		rw.WriteHeader(http.StatusUnauthorized)

		return
	}

	n := &notification{}

	if err := json.NewDecoder(req.Body).Decode(n); err != nil || n.Recipient == "" {
		logger.Warnf("invalid notification: %v", err)
		rw.WriteHeader(http.StatusBadRequest)

		return
	}

	n.ReceivedAt = time.Now().UTC()

	r.mu.Lock()
	r.notifications = append(r.notifications, n)
	r.mu.Unlock()

	logger.Infof("notification for %s: %s", n.Recipient, n.Message)

	rw.WriteHeader(http.StatusAccepted)
}

func (r *receiver) notificationsHandler(rw http.ResponseWriter, _ *http.Request) {
	r.mu.Lock()
	result := append([]*notification{}, r.notifications...)
	r.mu.Unlock()

	rw.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(rw).Encode(result); err != nil {
		logger.Errorf("failed to write notifications: %s", err)
	}
}
