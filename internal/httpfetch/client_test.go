package httpfetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/httpfetch"
)

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "http://example.com/cal.ics", httpfetch.NormalizeURL("webcal://example.com/cal.ics"))
	assert.Equal(t, "https://example.com/cal.ics", httpfetch.NormalizeURL("webcals://example.com/cal.ics"))
	assert.Equal(t, "https://example.com/cal.ics", httpfetch.NormalizeURL("https://example.com/cal.ics"))
}

func TestFetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "text/calendar")
		w.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	}))
	defer srv.Close()

	body, err := httpfetch.New(0).FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
}

func TestFetchTextWebcalAlias(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	url := "webcal://" + strings.TrimPrefix(srv.URL, "http://")
	body, err := httpfetch.New(0).FetchText(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}

func TestFetchTextNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := httpfetch.New(0).FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
