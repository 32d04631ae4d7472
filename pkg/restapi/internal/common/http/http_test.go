/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponse(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteErrorResponse(rr, http.StatusBadRequest, "invalid merchant.id: value is empty")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := &ErrorResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), resp))
	require.Equal(t, "invalid merchant.id: value is empty", resp.Message)
}

func TestWriteResponse(t *testing.T) {
	t.Run("test write response - success", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteResponse(rr, map[string]string{"status": "success"})
		require.Equal(t, http.StatusOK, rr.Code)
		require.JSONEq(t, `{"status":"success"}`, rr.Body.String())
	})

	t.Run("test write response with status - success", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteResponseWithStatus(rr, http.StatusCreated, map[string]string{"id": "m1"})
		require.Equal(t, http.StatusCreated, rr.Code)
		require.JSONEq(t, `{"id":"m1"}`, rr.Body.String())
	})

	t.Run("test write response - marshal failure", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteResponse(rr, make(chan int))
		require.Empty(t, rr.Body.String())
	})
}
