package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripEmptyQueryParams(t *testing.T) {
	// setup
	var got string
	handler := StripEmptyQueryParams()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
	}))

	// when
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs?dead=&type=timer&key=%20", nil))

	// then
	assert.Equal(t, "type=timer", got)
}

func TestCorsExposesRetryAfter(t *testing.T) {
	// setup
	handler := Cors([]string{"https://ui.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	req := httptest.NewRequest(http.MethodPost, "/v1/workflow-instances/1/messages", nil)
	req.Header.Set("Origin", "https://ui.example")
	rec := httptest.NewRecorder()

	// when
	handler.ServeHTTP(rec, req)

	// then
	assert.Equal(t, "https://ui.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
}
