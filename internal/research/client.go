// Package research talks to an OpenAI-compatible chat completion endpoint to
// produce the recipe drafts, reviews, and report prose the workflow can't
// answer from the catalog alone
package research

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

	"github.com/tidwall/gjson"

	"github.com/kode4food/banquet/pkg/api"
)

type (
	// Client performs chat completion calls against an OpenAI-compatible
	// API such as OpenAI itself or a local stand-in
	Client struct {
		httpClient *http.Client
		baseURL    string
		apiKey     string
		model      string
	}

	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}
)

var (
	ErrChatFailed      = errors.New("chat completion failed")
	ErrEmptyCompletion = errors.New("chat completion was empty")
	ErrFetchFailed     = errors.New("fetch failed")
	ErrMissingURL      = errors.New("missing url argument")
)

// maxFetchBytes bounds how much of a fetched page is returned
const maxFetchBytes = 256 * 1024

// NewClient creates a chat completion client for the given endpoint and model
func NewClient(
	baseURL, apiKey, model string, timeout time.Duration,
) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// Complete sends a system and user message pair to the model and returns the
// assistant's reply
func (c *Client) Complete(
	ctx context.Context, system, user string,
) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		slog.Error("Failed to create chat request",
			slog.String("endpoint", endpoint),
			slog.Any("error", err))
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Banquet-Engine/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Chat request failed",
			slog.String("endpoint", endpoint),
			slog.Any("error", err))
		return "", err
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		slog.Error("Failed to read chat response",
			slog.String("endpoint", endpoint),
			slog.Any("error", err))
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = res.Status
		}
		slog.Error("Chat completion returned error",
			slog.String("endpoint", endpoint),
			slog.Int("status_code", res.StatusCode),
			slog.String("message", msg))
		return "", fmt.Errorf("%w: %s", ErrChatFailed, msg)
	}

	content := gjson.GetBytes(body, "choices.0.message.content").String()
	if content == "" {
		slog.Error("Chat completion had no content",
			slog.String("endpoint", endpoint))
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// Fetch answers the fetch capability by retrieving a page of web content,
// bounded so a runaway response can't flood the workflow
func (c *Client) Fetch(
	ctx context.Context, args api.Args,
) (api.Args, error) {
	url := args.GetString(api.ArgURL, "")
	if url == "" {
		return nil, ErrMissingURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Banquet-Engine/1.0")

	res, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Fetch request failed",
			slog.String("url", url),
			slog.Any("error", err))
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		slog.Error("Fetch returned error",
			slog.String("url", url),
			slog.Int("status_code", res.StatusCode))
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxFetchBytes))
	if err != nil {
		return nil, err
	}
	return api.Args{api.ArgContent: string(body)}, nil
}
