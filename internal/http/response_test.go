package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferedResponseFirstStatusWins(t *testing.T) {
	b := NewBufferedResponse()
	b.WriteHeader(http.StatusOK)
	b.WriteHeader(http.StatusInternalServerError)
	require.Equal(t, http.StatusOK, b.Status())
}

func TestBufferedResponseDefaultsTo200(t *testing.T) {
	b := NewBufferedResponse()
	_, err := b.Write([]byte("implicit ok"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, b.Status())
	require.Equal(t, "implicit ok", string(b.Body()))
}

func TestBufferedResponseResetReopensStatus(t *testing.T) {
	b := NewBufferedResponse()
	b.WriteHeader(http.StatusTeapot)
	b.Reset()
	b.WriteHeader(http.StatusBadGateway)
	require.Equal(t, http.StatusBadGateway, b.Status())

	rec := httptest.NewRecorder()
	b.flush(rec)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}
