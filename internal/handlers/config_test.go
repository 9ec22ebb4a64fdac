package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mer "meross_emulator"
	"meross_emulator/internal/service"
)

func postJSON(r http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestConfigHandler_DispatchesEnvelope(t *testing.T) {
	now := time.Unix(1740830400, 0)
	reply, err := mer.BuildMessage(mer.NSControlElectricity, mer.MethodGetAck, map[string]any{"electricity": map[string]int{"power": 1015}}, "k", mer.ResponseTopic("plug"), "abc", now)
	require.NoError(t, err)
	dev := &mockDevices{defaultID: "plug", reply: reply}
	r := newTestRouter(&service.Service{Devices: dev})

	req, err := mer.BuildMessage(mer.NSControlElectricity, mer.MethodGet, map[string]any{}, "k", "client", "abc", now)
	require.NoError(t, err)
	body, err := json.Marshal(req)
	require.NoError(t, err)

	// no uuid: default device answers
	w := postJSON(r, "/config", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "plug", dev.lastUUID)
	assert.Equal(t, req.Header, dev.lastRequest.Header)

	var got mer.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, mer.MethodGetAck, got.Header.Method)
	assert.JSONEq(t, `{"electricity":{"power":1015}}`, string(got.Payload))

	w = postJSON(r, "/config/other", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "other", dev.lastUUID)
}

func TestConfigHandler_Rejects(t *testing.T) {
	dev := &mockDevices{}
	r := newTestRouter(&service.Service{Devices: dev})

	w := postJSON(r, "/config/plug", []byte(`{"header":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/config/plug", []byte(`{"header":{"messageId":"x"},"payload":{}}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// no device registered
	w = postJSON(r, "/config", []byte(`{"header":{"namespace":"Appliance.System.All","method":"GET"},"payload":{}}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	dev.err = service.ErrDeviceNotFound
	w = postJSON(r, "/config/missing", []byte(`{"header":{"namespace":"Appliance.System.All","method":"GET"},"payload":{}}`))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
