// Package lcu talks to the local game client's private API: a REST client
// for request/response calls and a monitor for connect/disconnect lifecycle.
package lcu

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ClientInfo is what a REST client needs to reach the local game client.
type ClientInfo struct {
	Protocol string `json:"protocol"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Token    string `json:"token"`
}

// Client is the gateway capability the rest of the app consumes.
type Client interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// requestTimeout caps every call so a hung game client can't wedge a handler.
const requestTimeout = 5 * time.Second

type RESTClient struct {
	base  string
	authz string
	http  *http.Client
	log   *zap.Logger
}

func NewRESTClient(info ClientInfo, log *zap.Logger) *RESTClient {
	host := info.Host
	if host == "" {
		host = "127.0.0.1"
	}
	proto := info.Protocol
	if proto == "" {
		proto = "https"
	}
	return &RESTClient{
		base:  fmt.Sprintf("%s://%s:%d", proto, host, info.Port),
		authz: "Basic " + base64.StdEncoding.EncodeToString([]byte("riot:"+info.Token)),
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				// The game client serves a self-signed cert on loopback.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		log: log,
	}
}

func (c *RESTClient) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body: %v", ErrTransport, err)
		}
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Authorization", c.authz)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrTransport, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("game client rejected request",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w: %s %s", ErrTransport, ErrNotFound, method, path)
		}
		return nil, fmt.Errorf("%w: %s %s: status %d", ErrTransport, method, path, resp.StatusCode)
	}
	return json.RawMessage(data), nil
}
