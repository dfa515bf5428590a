// Package upstream is the HTTP client for the training platform's REST
// backend. All calls carry ambient cookie credentials; a 401 response is
// the sole signal that the access token went stale, in which case the
// registered refresh hook runs once and the request is retried once.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"hospital_training_portal/internal/util"
	"hospital_training_portal/pkg/logger"
	"hospital_training_portal/pkg/monitoring"

	"go.uber.org/zap"
)

// RefreshFunc attempts a silent token renewal and reports success. The
// session manager installs one that is single-flight.
type RefreshFunc func(ctx context.Context) bool

type Client struct {
	baseURL string
	http    *http.Client
	refresh RefreshFunc
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}
}

// SetRefreshHook installs the refresh routine used on 401 responses.
// Auth endpoints themselves never trigger it.
func (c *Client) SetRefreshHook(fn RefreshFunc) {
	c.refresh = fn
}

type callOpts struct {
	body        io.Reader
	contentType string
	noRetry     bool
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.call(ctx, http.MethodGet, path, callOpts{}, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodPost, path, callOpts{body: body, contentType: contentType}, out)
}

func (c *Client) putJSON(ctx context.Context, path string, in, out interface{}) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodPut, path, callOpts{body: body, contentType: contentType}, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.call(ctx, http.MethodDelete, path, callOpts{}, nil)
}

func (c *Client) postMultipart(ctx context.Context, path string, body *bytes.Buffer, contentType string, out interface{}) error {
	return c.call(ctx, http.MethodPost, path, callOpts{body: body, contentType: contentType}, out)
}

func (c *Client) putMultipart(ctx context.Context, path string, body *bytes.Buffer, contentType string, out interface{}) error {
	return c.call(ctx, http.MethodPut, path, callOpts{body: body, contentType: contentType}, out)
}

func encodeJSON(in interface{}) (io.Reader, string, error) {
	if in == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

// call runs one request against the upstream. Bodies passed as
// *bytes.Reader or *bytes.Buffer are rewindable, which is what makes the
// single retry after a refresh possible.
func (c *Client) call(ctx context.Context, method, path string, opts callOpts, out interface{}) error {
	resp, err := c.doOnce(ctx, method, path, opts)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !opts.noRetry {
		drain(resp)

		if c.refresh == nil || !c.refresh(ctx) {
			return util.ErrAuthExpired
		}

		if !rewind(opts.body) {
			return util.ErrAuthExpired
		}
		resp, err = c.doOnce(ctx, method, path, opts)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return util.ErrAuthExpired
		}
	}

	return decodeResponse(resp, out)
}

func (c *Client) doOnce(ctx context.Context, method, path string, opts callOpts) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, opts.body)
	if err != nil {
		return nil, err
	}
	if opts.contentType != "" {
		req.Header.Set("Content-Type", opts.contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		monitoring.ObserveUpstream(method, path, 0, time.Since(start))
		logger.Log.Warn("upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, &util.RequestError{Message: err.Error()}
	}

	monitoring.ObserveUpstream(method, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

func rewind(body io.Reader) bool {
	switch b := body.(type) {
	case nil:
		return true
	case *bytes.Reader:
		_, err := b.Seek(0, io.SeekStart)
		return err == nil
	default:
		// Multipart buffers are consumed by the first attempt.
		return false
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// decodeResponse turns non-2xx answers into RequestErrors carrying the
// upstream's own message when it provided one ("detail" is what the
// backend uses, "message" is accepted as a fallback).
func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &util.RequestError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &util.RequestError{Status: resp.StatusCode, Message: serverMessage(data, resp.StatusCode)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return util.NewValidationError("upstream response", "payload does not match the expected schema")
	}
	return nil
}

func serverMessage(data []byte, status int) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" && len(text) < 512 {
		return text
	}
	return fmt.Sprintf("upstream returned status %s", strconv.Itoa(status))
}
