// Package opgg calls the external stats API: a JSON-RPC "tools/call"
// exchange over HTTPS against a fixed endpoint.
package opgg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultEndpoint = "https://mcp-api.op.gg/mcp"

var ErrTransport = errors.New("stats api request failed")
var ErrRemoteAPI = errors.New("stats api returned an error")
var ErrEmptyResponse = errors.New("stats api returned neither result nor error")

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  params `json:"params"`
}

type params struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

func NewClient(endpoint string, log *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
		log:      log,
	}
}

// Call invokes one named function. The three failure kinds stay distinct
// for the caller: ErrTransport (no usable response), ErrRemoteAPI (the
// remote reported an error, which wins even when a result is also present),
// and ErrEmptyResponse (a well-formed reply carrying neither).
func (c *Client) Call(ctx context.Context, function string, arguments json.RawMessage) (json.RawMessage, error) {
	if arguments == nil {
		arguments = json.RawMessage(`{}`)
	}
	payload, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      uint64(time.Now().UnixNano()),
		Method:  "tools/call",
		Params:  params{Name: function, Arguments: arguments},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	c.log.Debug("calling stats api", zap.String("function", function))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}

	if present(decoded.Error) {
		return nil, fmt.Errorf("%w: %s: %s", ErrRemoteAPI, function, decoded.Error)
	}
	if !present(decoded.Result) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, function)
	}
	return decoded.Result, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
