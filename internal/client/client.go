package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kode4food/banquet/pkg/api"
)

type (
	// Client invokes a single capability
	Client interface {
		Invoke(context.Context, api.Args, api.Metadata) (api.Args, error)
	}

	// Func adapts an in-process function to the Client interface
	Func func(context.Context, api.Args) (api.Args, error)

	// Bindings resolves capability names to the clients that serve them
	Bindings map[api.Capability]Client

	// HTTPClient invokes a capability exposed at an HTTP endpoint
	HTTPClient struct {
		httpClient *http.Client
		endpoint   string
	}
)

var (
	ErrCapabilityUnsuccessful = errors.New(
		"capability returned success=false",
	)
	ErrHTTPError = errors.New("capability returned HTTP error")
	ErrNotBound  = errors.New("capability not bound")
)

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (Func)(nil)
)

func (f Func) Invoke(
	ctx context.Context, args api.Args, _ api.Metadata,
) (api.Args, error) {
	return f(ctx, args)
}

// Resolve returns the client bound to the named capability
func (b Bindings) Resolve(name api.Capability) (Client, error) {
	cl, ok := b[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotBound, name)
	}
	return cl, nil
}

// Names returns the bound capability names in no particular order
func (b Bindings) Names() []api.Capability {
	res := make([]api.Capability, 0, len(b))
	for name := range b {
		res = append(res, name)
	}
	return res
}

func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
	}
}

// NewHTTPBindings binds each named capability to the conventional tools
// endpoint beneath baseURL
func NewHTTPBindings(
	baseURL string, timeout time.Duration, names ...api.Capability,
) Bindings {
	res := make(Bindings, len(names))
	for _, name := range names {
		res[name] = NewHTTPClient(
			baseURL+"/tools/"+string(name), timeout,
		)
	}
	return res
}

func (c *HTTPClient) Invoke(
	ctx context.Context, args api.Args, meta api.Metadata,
) (api.Args, error) {
	request := api.CapabilityRequest{
		Arguments: args,
		Metadata:  meta,
	}

	body, err := json.Marshal(request)
	if err != nil {
		slog.Error("Failed to marshal capability request",
			slog.String("endpoint", c.endpoint),
			slog.Any("error", err))
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, "POST", c.endpoint, bytes.NewBuffer(body),
	)
	if err != nil {
		slog.Error("Failed to create HTTP request",
			slog.String("endpoint", c.endpoint),
			slog.Any("error", err))
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "Banquet-Engine/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	dur := time.Since(start)

	if err != nil {
		slog.Error("HTTP request failed",
			slog.String("endpoint", c.endpoint),
			slog.Duration("duration", dur),
			slog.Any("error", err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Failed to read response body",
			slog.String("endpoint", c.endpoint),
			slog.Any("error", err))
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("HTTP error",
			slog.String("endpoint", c.endpoint),
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(respBody)))
		return nil, fmt.Errorf("%w: HTTP %d", ErrHTTPError, resp.StatusCode)
	}

	var response api.CapabilityResult
	if err := json.Unmarshal(respBody, &response); err != nil {
		slog.Error("Failed to unmarshal response",
			slog.String("endpoint", c.endpoint),
			slog.Any("error", err))
		return nil, err
	}

	if !response.Success {
		if response.Error == "" {
			slog.Error("Capability unsuccessful",
				slog.String("endpoint", c.endpoint))
			return nil, ErrCapabilityUnsuccessful
		}
		slog.Error("Capability failed",
			slog.String("endpoint", c.endpoint),
			slog.String("error", response.Error))
		return nil, fmt.Errorf(
			"%w: %s", ErrCapabilityUnsuccessful, response.Error,
		)
	}

	if response.Outputs == nil {
		return api.Args{}, nil
	}
	return response.Outputs, nil
}
