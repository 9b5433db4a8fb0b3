package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func Test_GetRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	var gotPattern string
	r.Post("/verifications/{sid}/approve", func(w http.ResponseWriter, req *http.Request) {
		gotPattern = GetRoutePattern(req)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/verifications/VE123/approve", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "/verifications/{sid}/approve", gotPattern)

	// outside of a chi router there's no route context
	assert.Equal(t, "undefined", GetRoutePattern(httptest.NewRequest(http.MethodGet, "/health", nil)))
}

func Test_UnwrapInterfaceToPointer(t *testing.T) {
	s := "approved"
	var i interface{} = &s

	assert.Equal(t, &s, UnwrapInterfaceToPointer[string](i))
	assert.Nil(t, UnwrapInterfaceToPointer[int](i))
}

func Test_IsEmpty(t *testing.T) {
	assert.True(t, IsEmpty[any](nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty(0))
	assert.True(t, IsEmpty([]string(nil)))
	assert.False(t, IsEmpty("sms"))
	assert.False(t, IsEmpty([]string{"en"}))
}

func Test_exactTestPattern(t *testing.T) {
	assert.Equal(t, "^Test_serve$", exactTestPattern("Test_serve"))
	assert.Equal(t, `^Test_verify$/^exits_\(no_creds\)$`, exactTestPattern("Test_verify/exits_(no_creds)"))
}
