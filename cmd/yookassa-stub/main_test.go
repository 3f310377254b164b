package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/models"
)

func TestStub_PaymentLifecycle(t *testing.T) {
	var notified models.PaymentNotification
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&notified))
		w.WriteHeader(http.StatusOK)
	}))
	defer receiver.Close()

	srv := httptest.NewServer(newStub(zap.NewNop().Sugar(), receiver.URL).routes())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/payments",
		strings.NewReader(`{"amount":{"value":"601.00","currency":"RUB"},"confirmation":{"type":"redirect","return_url":"http://x"},"capture":true,"description":"Order #1"}`))
	require.NoError(t, err)
	req.SetBasicAuth("shop", "secret")
	req.Header.Set("Idempotence-Key", "k1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created models.Payment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, models.PaymentStatusPending, created.Status)
	assert.Equal(t, "601.00", created.Amount.Value)
	assert.NotEmpty(t, created.Confirmation.ConfirmationURL)

	succeed, err := http.Post(srv.URL+"/payments/"+created.ID+"/succeed", "application/json", nil)
	require.NoError(t, err)
	succeed.Body.Close()
	assert.Equal(t, http.StatusOK, succeed.StatusCode)
	assert.Equal(t, created.ID, notified.Object.ID)
	assert.Equal(t, "payment.succeeded", notified.Event)

	got, err := http.Get(srv.URL + "/payments/" + created.ID)
	require.NoError(t, err)
	defer got.Body.Close()
	var payment models.Payment
	require.NoError(t, json.NewDecoder(got.Body).Decode(&payment))
	assert.True(t, payment.Paid)

	missing, err := http.Get(srv.URL + "/payments/unknown")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestStub_CreateRequiresCredentials(t *testing.T) {
	srv := httptest.NewServer(newStub(zap.NewNop().Sugar(), "").routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/payments", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
