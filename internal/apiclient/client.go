// Package apiclient is the single entry point to the Red Esperanza REST backend.
// Every call goes through Client.Request so auth headers, envelope decoding and
// error surfacing stay uniform.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	applog "redesperanza/web/internal/log"
)

const (
	defaultErrorMessage  = "Error en la petición"
	loginErrorMessage    = "Error al iniciar sesión"
	registerErrorMessage = "Error al registrar usuario"
	transportMessage     = "No se pudo conectar con el servidor"
	invalidBodyMessage   = "Respuesta inválida del servidor"

	maxResponseBytes = 10 << 20
)

// TokenSource yields the bearer token of the current session, or "".
type TokenSource interface {
	Token(ctx context.Context) string
}

// APIError is the only error type returned by the client. Status is zero
// when the request never got an HTTP response.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Message returns the text to show the user for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return defaultErrorMessage
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, log)
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// Request sends body as JSON to path and decodes the envelope's data field into out.
// out may be nil when the caller does not need the data.
func (c *Client) Request(ctx context.Context, tokens TokenSource, method, path string, body, out any) error {
	return c.do(ctx, tokens, method, path, body, out, defaultErrorMessage)
}

func (c *Client) do(ctx context.Context, tokens TokenSource, method, path string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: fallback, Err: fmt.Errorf("encode body: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Message: fallback, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := applog.RequestID(ctx)
	if requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}
	if tokens != nil {
		if token := tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("backend request failed")
		return &APIError{Message: transportMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: transportMessage, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if !ok {
		message := fallback
		if decodeErr == nil && env.Error != "" {
			message = env.Error
		}
		c.log.Warn().
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Str("error", message).
			Msg("backend returned error")
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return &APIError{Status: resp.StatusCode, Message: invalidBodyMessage, Err: decodeErr}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: invalidBodyMessage, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}
