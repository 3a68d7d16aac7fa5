package cadeia

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

	"github.com/emrgen/cadeia/internal/service"
)

// Client talks to the cadeia HTTP API.
type Client interface {
	io.Closer
	Tree(ctx context.Context, parcelID string) (*service.TreePayload, error)
	CheckDuplicate(ctx context.Context, req service.DuplicateCheckRequest) (*service.DuplicateCheckResponse, error)
	Import(ctx context.Context, documentIDs []string, parcelID string) (*service.ImportResult, error)
	ConfirmImport(ctx context.Context, token string) (*service.ImportResult, error)
	UndoImport(ctx context.Context, documentID string) error
	SetManualLevel(ctx context.Context, documentID string, level *int) error
	AddEntry(ctx context.Context, documentID string, req service.EntryRequest) (*service.AddEntryResponse, error)
	Parse(ctx context.Context, text string) ([]string, error)

	CreateOffice(ctx context.Context, req service.OfficeRequest) (*service.OfficePayload, error)
	CreateParcel(ctx context.Context, req service.ParcelRequest) (*service.ParcelPayload, error)
	DeleteParcel(ctx context.Context, parcelID string) error
	CreateDocument(ctx context.Context, parcelID string, req service.DocumentRequest) (*service.DocumentPayload, error)
	ListImports(ctx context.Context, parcelID string) ([]service.ImportRecordPayload, error)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL ("http://localhost:4001").
// token is sent as a bearer token when not empty.
func NewClient(baseURL, token string) (Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}

	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *client) Tree(ctx context.Context, parcelID string) (*service.TreePayload, error) {
	var res service.TreePayload
	err := c.do(ctx, http.MethodGet, "/v1/parcels/"+url.PathEscape(parcelID)+"/chain", nil, &res)
	return &res, err
}

func (c *client) CheckDuplicate(ctx context.Context, req service.DuplicateCheckRequest) (*service.DuplicateCheckResponse, error) {
	var res service.DuplicateCheckResponse
	err := c.do(ctx, http.MethodPost, "/v1/duplicates/check", req, &res)
	return &res, err
}

func (c *client) Import(ctx context.Context, documentIDs []string, parcelID string) (*service.ImportResult, error) {
	var res service.ImportResult
	body := map[string]any{"document_ids": documentIDs, "parcel_id": parcelID}
	err := c.do(ctx, http.MethodPost, "/v1/imports", body, &res)
	return &res, err
}

func (c *client) ConfirmImport(ctx context.Context, token string) (*service.ImportResult, error) {
	var res service.ImportResult
	err := c.do(ctx, http.MethodPost, "/v1/imports/proposals/"+url.PathEscape(token)+"/confirm", nil, &res)
	return &res, err
}

func (c *client) UndoImport(ctx context.Context, documentID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/imports/"+url.PathEscape(documentID), nil, nil)
}

func (c *client) SetManualLevel(ctx context.Context, documentID string, level *int) error {
	return c.do(ctx, http.MethodPut, "/v1/documents/"+url.PathEscape(documentID)+"/level", map[string]*int{"level": level}, nil)
}

func (c *client) AddEntry(ctx context.Context, documentID string, req service.EntryRequest) (*service.AddEntryResponse, error) {
	var res service.AddEntryResponse
	err := c.do(ctx, http.MethodPost, "/v1/documents/"+url.PathEscape(documentID)+"/entries", req, &res)
	return &res, err
}

func (c *client) Parse(ctx context.Context, text string) ([]string, error) {
	var res struct {
		Codes []string `json:"codes"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/origins/parse?text="+url.QueryEscape(text), nil, &res)
	return res.Codes, err
}

func (c *client) CreateOffice(ctx context.Context, req service.OfficeRequest) (*service.OfficePayload, error) {
	var res service.OfficePayload
	err := c.do(ctx, http.MethodPost, "/v1/offices", req, &res)
	return &res, err
}

func (c *client) CreateParcel(ctx context.Context, req service.ParcelRequest) (*service.ParcelPayload, error) {
	var res service.ParcelPayload
	err := c.do(ctx, http.MethodPost, "/v1/parcels", req, &res)
	return &res, err
}

func (c *client) DeleteParcel(ctx context.Context, parcelID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/parcels/"+url.PathEscape(parcelID), nil, nil)
}

func (c *client) CreateDocument(ctx context.Context, parcelID string, req service.DocumentRequest) (*service.DocumentPayload, error) {
	var res service.DocumentPayload
	err := c.do(ctx, http.MethodPost, "/v1/parcels/"+url.PathEscape(parcelID)+"/documents", req, &res)
	return &res, err
}

func (c *client) ListImports(ctx context.Context, parcelID string) ([]service.ImportRecordPayload, error) {
	var res []service.ImportRecordPayload
	err := c.do(ctx, http.MethodGet, "/v1/parcels/"+url.PathEscape(parcelID)+"/imports", nil, &res)
	return res, err
}

func (c *client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&e)
		return &APIError{Status: res.StatusCode, Message: e.Error}
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}
