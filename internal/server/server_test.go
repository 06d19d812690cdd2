package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-submit/internal/server"
	"github.com/rezonia/invoice-submit/internal/table"
)

const validInvoiceRequest = `{
	"document": {
		"number": "2024-001",
		"date": "2024-01-15",
		"currency_code": "EUR",
		"items": [{"name": "Widget", "quantity": 1, "price": 100, "taxes": [{"rate": 22}]}]
	},
	"entity": {
		"id": "ent_1",
		"name": "Acme d.o.o.",
		"address": "Dunajska 1",
		"post_code": "1000",
		"city": "Ljubljana",
		"country_code": "SI",
		"tax_number": "12345678",
		"settings": {"furs": {"enabled": true}, "eslog": {"enabled": true, "validation_enabled": true}}
	},
	"fiscalization": {"business_premise_name": "P1", "electronic_device_name": "D1"}
}`

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	today, err := table.ParseDate("2024-06-01")
	require.NoError(t, err)
	config := &server.Config{
		Address: ":8080",
		Debug:   true,
	}
	return server.NewServer(config, nil, server.WithClock(func() time.Time { return today }))
}

func do(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
	assert.NotEmpty(t, w.Header().Get(server.RequestIDHeader))
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(server.RequestIDHeader))
}

func TestRulesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/v1/rules", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response server.RulesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	codes := make([]string, len(response.Jurisdictions))
	for i, j := range response.Jurisdictions {
		codes[i] = j.Code
	}
	assert.Contains(t, codes, "SI")
	assert.Contains(t, codes, "HR")
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("valid", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/v1/validate", `{"kind":"invoices",`+validInvoiceRequest[1:])
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response server.ValidationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Valid)
		assert.Empty(t, response.EntityErrors)
		assert.True(t, response.Capabilities.Furs)
	})

	t.Run("entity errors", func(t *testing.T) {
		body := `{"kind":"invoices","document":{"date":"2024-01-15","currency_code":"EUR","items":[]},
			"entity":{"name":"Acme","country_code":"SI","tax_number":"1","settings":{"eslog":{"enabled":true,"validation_enabled":true}}}}`
		w := do(t, srv, http.MethodPost, "/api/v1/validate", body)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response server.ValidationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.Valid)
		assert.NotEmpty(t, response.EntityErrors)
		for _, e := range response.EntityErrors {
			assert.True(t, e.IsEntity(), e.Field)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/v1/validate", `{"kind":"receipts","document":{"items":[]}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPrepareEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/documents/invoices/prepare", validInvoiceRequest)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "invoices", response["kind"])

	payload := response["payload"].(map[string]any)
	assert.Equal(t, map[string]any{"business_premise_name": "P1", "electronic_device_name": "D1"}, payload["furs"])
	item := payload["items"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 100, item["price"])
}

func TestPrepareEndpoint_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown kind", "/api/v1/documents/receipts/prepare", validInvoiceRequest, http.StatusNotFound},
		{"empty body", "/api/v1/documents/invoices/prepare", "", http.StatusBadRequest},
		{"malformed json", "/api/v1/documents/invoices/prepare", `{"document":`, http.StatusBadRequest},
		{"missing document", "/api/v1/documents/invoices/prepare", `{}`, http.StatusBadRequest},
		{"schema failure", "/api/v1/documents/estimates/prepare", `{"document":{"items":[{"quantity":1}]}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestPreviewEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := `{"items":[{"name":"A","quantity":1,"price":122,"taxes":[{"rate":22}]}],"price_modes":{"0":true}}`
	w := do(t, srv, http.MethodPost, "/api/v1/preview", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.EqualValues(t, 100, response["net"])
	assert.EqualValues(t, 22, response["tax"])
	assert.EqualValues(t, 122, response["total"])
}

func TestTableQueryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("post overdue", func(t *testing.T) {
		body := `{"params":{"search":"acme","limit":25},"filter":{"statuses":["overdue"]}}`
		w := do(t, srv, http.MethodPost, "/api/v1/table/query", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response server.TableQueryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.JSONEq(t,
			`{"paid_in_full":{"equals":false},"date_due":{"lt":"2024-06-01"},"voided_at":{"equals":null}}`,
			response.Query)
		assert.Contains(t, response.URLParams, "filter_status=overdue")
		assert.Contains(t, response.APIParams, "query=")
		assert.NotContains(t, response.APIParams, "filter_status")
	})

	t.Run("post with today override", func(t *testing.T) {
		body := `{"filter":{"statuses":["overdue"]},"today":"2025-01-31"}`
		w := do(t, srv, http.MethodPost, "/api/v1/table/query", body)
		require.Equal(t, http.StatusOK, w.Code)

		var response server.TableQueryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response.Query, `"lt":"2025-01-31"`)
	})

	t.Run("post invalid today", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, "/api/v1/table/query", `{"today":"tomorrow"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get from url params", func(t *testing.T) {
		w := do(t, srv, http.MethodGet,
			"/api/v1/table/query?filter_date_from=2024-01-01&filter_date_to=2024-01-31&order_by=-date", "")
		require.Equal(t, http.StatusOK, w.Code)

		var response server.TableQueryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.JSONEq(t, `{"date":{"between":["2024-01-01","2024-01-31"]}}`, response.Query)
		assert.Equal(t, "-date", response.Params.OrderBy)
	})
}

func TestRateLimit(t *testing.T) {
	srv := server.NewServer(&server.Config{Address: ":8080", RateLimit: 2}, nil)

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		codes[i] = w.Code
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
