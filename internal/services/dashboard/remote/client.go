// Package remote talks to the equipment telemetry API: CSV upload, dataset
// history and JWT issuance.
//
// Every failure is returned as a typed error of kind auth_expired (HTTP 401)
// or connection (anything else). Raw transport errors stay wrapped inside.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/chemviz/internal/equipment"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	pathUpload       = "upload/"
	pathHistory      = "history/"
	pathToken        = "token/"
	pathTokenRefresh = "token/refresh/"

	// uploadField is the multipart field the API reads the CSV from.
	uploadField = "file"

	maxErrorBody = 4 << 10
)

// DefaultBaseURL is where the API listens in a default local deployment.
const DefaultBaseURL = "http://127.0.0.1:8000/api/"

// Client is an HTTP client for the telemetry API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tracer  trace.Tracer
}

// NewClient builds a client rooted at baseURL. A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: parsed,
		http:    httpClient,
		tracer:  otel.Tracer("github.com/louisbranch/chemviz/internal/services/dashboard/remote"),
	}, nil
}

// TokenPair is the access/refresh pair issued by the token endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UploadReceipt acknowledges an accepted upload. Raw holds the response body
// as sent; Dataset is set when the body decodes as a dataset record.
type UploadReceipt struct {
	Raw     json.RawMessage
	Dataset *equipment.Dataset
}

// History loads every dataset visible to token, newest first.
func (c *Client) History(ctx context.Context, token string) ([]*equipment.Dataset, error) {
	ctx, span := c.tracer.Start(ctx, "remote.History")
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodGet, pathHistory, nil)
	if err != nil {
		return nil, endSpan(span, err)
	}
	setBearer(req, token)

	body, err := c.do(span, req)
	if err != nil {
		return nil, endSpan(span, err)
	}
	history, err := decodeHistory(body)
	if err != nil {
		return nil, endSpan(span, apperrors.Wrap(apperrors.KindConnection, "", err))
	}
	span.SetAttributes(attribute.Int("chemviz.history.count", len(history)))
	return history, nil
}

// Upload sends one CSV file as multipart field "file".
func (c *Client) Upload(ctx context.Context, token, filename string, content io.Reader) (UploadReceipt, error) {
	ctx, span := c.tracer.Start(ctx, "remote.Upload", trace.WithAttributes(attribute.String("chemviz.upload.filename", filename)))
	defer span.End()

	if content == nil {
		return UploadReceipt{}, endSpan(span, apperrors.E(apperrors.KindInvalidInput, "upload content is required"))
	}
	var payload bytes.Buffer
	form := multipart.NewWriter(&payload)
	part, err := form.CreateFormFile(uploadField, filename)
	if err != nil {
		return UploadReceipt{}, endSpan(span, fmt.Errorf("create form file: %w", err))
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadReceipt{}, endSpan(span, fmt.Errorf("copy upload content: %w", err))
	}
	if err := form.Close(); err != nil {
		return UploadReceipt{}, endSpan(span, fmt.Errorf("close multipart form: %w", err))
	}

	req, err := c.newRequest(ctx, http.MethodPost, pathUpload, &payload)
	if err != nil {
		return UploadReceipt{}, endSpan(span, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	setBearer(req, token)

	body, err := c.do(span, req)
	if err != nil {
		return UploadReceipt{}, endSpan(span, err)
	}
	receipt := UploadReceipt{Raw: json.RawMessage(body)}
	var dataset equipment.Dataset
	if json.Unmarshal(body, &dataset) == nil && dataset.Filename != "" {
		receipt.Dataset = &dataset
	}
	return receipt, nil
}

// ObtainToken exchanges credentials for an access/refresh pair.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (TokenPair, error) {
	ctx, span := c.tracer.Start(ctx, "remote.ObtainToken")
	defer span.End()

	if strings.TrimSpace(username) == "" || password == "" {
		return TokenPair{}, endSpan(span, apperrors.E(apperrors.KindInvalidInput, "username and password are required"))
	}
	body, err := c.postJSON(ctx, span, pathToken, map[string]string{"username": username, "password": password})
	if err != nil {
		return TokenPair{}, endSpan(span, err)
	}
	var pair TokenPair
	if err := json.Unmarshal(body, &pair); err != nil {
		return TokenPair{}, endSpan(span, apperrors.Wrap(apperrors.KindConnection, "", fmt.Errorf("decode token response: %w", err)))
	}
	if pair.Access == "" {
		return TokenPair{}, endSpan(span, apperrors.E(apperrors.KindConnection, "token response has no access token"))
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refresh string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "remote.Refresh")
	defer span.End()

	if strings.TrimSpace(refresh) == "" {
		return "", endSpan(span, apperrors.E(apperrors.KindInvalidInput, "refresh token is required"))
	}
	body, err := c.postJSON(ctx, span, pathTokenRefresh, map[string]string{"refresh": strings.TrimSpace(refresh)})
	if err != nil {
		return "", endSpan(span, err)
	}
	var resp struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", endSpan(span, apperrors.Wrap(apperrors.KindConnection, "", fmt.Errorf("decode refresh response: %w", err)))
	}
	if resp.Access == "" {
		return "", endSpan(span, apperrors.E(apperrors.KindConnection, "refresh response has no access token"))
	}
	return resp.Access, nil
}

func (c *Client) postJSON(ctx context.Context, span trace.Span, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(span, req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes req and returns the body of a 2xx response.
func (c *Client) do(span trace.Span, req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindConnection, "", fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readErrorDetail(resp.Body)
		cause := fmt.Errorf("%s %s returned %s", req.Method, req.URL.Path, resp.Status)
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, apperrors.Wrap(apperrors.KindAuthExpired, detail, cause)
		}
		return nil, apperrors.Wrap(apperrors.KindConnection, detail, cause)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindConnection, "", fmt.Errorf("read %s response: %w", req.URL.Path, err))
	}
	return body, nil
}

// readErrorDetail extracts the API's {"error": ...} or {"detail": ...}
// message when present.
func readErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Detail
}

// decodeHistory accepts either {"data": [...]} or a bare array.
func decodeHistory(body []byte) ([]*equipment.Dataset, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty history response")
	}
	var records []*equipment.Dataset
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	case '{':
		var envelope struct {
			Data []*equipment.Dataset `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		records = envelope.Data
	default:
		return nil, fmt.Errorf("unexpected history payload")
	}
	history := make([]*equipment.Dataset, 0, len(records))
	for _, record := range records {
		if record != nil {
			history = append(history, record)
		}
	}
	return history, nil
}

func setBearer(req *http.Request, token string) {
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func endSpan(span trace.Span, err error) error {
	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperrors.KindOf(err)))
	return err
}
