package lcu

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testClient(t *testing.T, handler http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return NewRESTClient(ClientInfo{
		Protocol: "https",
		Host:     u.Hostname(),
		Port:     port,
		Token:    "sekrit",
	}, zaptest.NewLogger(t))
}

func TestRESTClient_SendsRiotBasicAuth(t *testing.T) {
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("riot:sekrit"))

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, want, r.Header.Get("Authorization"))
		require.Equal(t, "/chat/v5/participants", r.URL.Path)
		w.Write([]byte(`{"participants":[]}`))
	})

	raw, err := c.Request(context.Background(), http.MethodGet, "/chat/v5/participants", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"participants":[]}`, string(raw))
}

func TestRESTClient_NonSuccessStatusIsTransportError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not allowed in this phase", http.StatusInternalServerError)
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/lol-champ-select/v1/session", nil)
	require.ErrorIs(t, err, ErrTransport)
	require.NotErrorIs(t, err, ErrNotFound, "only a 404 means the resource is gone")
}

func TestRESTClient_NotFoundCarriesBothKinds(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no active session", http.StatusNotFound)
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/lol-champ-select/v1/session", nil)
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRESTClient_UnreachableHostIsTransportError(t *testing.T) {
	c := NewRESTClient(ClientInfo{Port: 1}, zaptest.NewLogger(t))
	_, err := c.Request(context.Background(), http.MethodGet, "/healthz", nil)
	require.ErrorIs(t, err, ErrTransport)
}
