package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/adapter/http/handler"
	"github.com/iho/cantina/internal/adapter/http/middleware"
)

// apiClient talks to the cantina HTTP API.
type apiClient struct {
	baseURL   string
	token     string
	actorID   string
	actorName string
	admin     bool
	http      *http.Client
}

func newAPIClient(baseURL, token, actorID string, admin bool, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		actorID: actorID,
		admin:   admin,
		http:    &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

type request struct {
	method         string
	path           string
	query          url.Values
	body           any
	idempotencyKey string
}

func (c *apiClient) do(ctx context.Context, req request, out any) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return err
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.actorID != "" {
		httpReq.Header.Set(middleware.ActorIDHeader, c.actorID)
		if c.actorName != "" {
			httpReq.Header.Set(middleware.ActorNameHeader, c.actorName)
		}
		if c.admin {
			httpReq.Header.Set(middleware.ActorAdminHeader, "true")
		}
	}
	if req.idempotencyKey != "" {
		httpReq.Header.Set(handler.IdempotencyKeyHeader, req.idempotencyKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode, Body: data}
		var errResp dto.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil {
			apiErr.Message = errResp.Error
			if errResp.Message != "" {
				apiErr.Message += ": " + errResp.Message
			}
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
