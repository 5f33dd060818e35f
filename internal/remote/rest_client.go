package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "github.com/panhaneath12/sweet-delights-pos-system/internal/errors"
)

// RESTConfig holds remote connection configuration.
type RESTConfig struct {
	BaseURL string // e.g. https://project.example.co
	AnonKey string // service API key sent on every request
	Token   string // bearer token of the authenticated session, if any
}

// RESTClient implements Client against a PostgREST-style API. Each table is
// a resource under /rest/v1/ and upserts use the on_conflict query parameter
// with merge-duplicates resolution.
type RESTClient struct {
	config     RESTConfig
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewRESTClient creates a new RESTClient.
func NewRESTClient(config RESTConfig) *RESTClient {
	return &RESTClient{
		config: config,
		token:  config.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}
}

// SetToken installs or clears the authenticated session token.
func (c *RESTClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// HasSession reports whether an authenticated session token is installed.
func (c *RESTClient) HasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// FetchCollection retrieves every row of a table.
func (c *RESTClient) FetchCollection(ctx context.Context, table string) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=*", strings.TrimSuffix(c.config.BaseURL, "/"), url.PathEscape(table))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemoteUnavailable, "fetch "+table+" failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.New(apperrors.ErrSyncNotAuthenticated, "remote session rejected")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, apperrors.New(apperrors.ErrRemoteUnavailable,
			fmt.Sprintf("fetch %s failed with status %d: %s", table, resp.StatusCode, string(body)))
	}

	var rows []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", table, err)
	}

	return rows, nil
}

// Upsert inserts or updates one record keyed by conflictKey.
func (c *RESTClient) Upsert(ctx context.Context, table string, record interface{}, conflictKey string) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", table, err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?on_conflict=%s",
		strings.TrimSuffix(c.config.BaseURL, "/"), url.PathEscape(table), url.QueryEscape(conflictKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "upsert "+table+" failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperrors.New(apperrors.ErrSyncNotAuthenticated, "remote session rejected")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return apperrors.New(apperrors.ErrRemoteUnavailable,
			fmt.Sprintf("upsert %s failed with status %d: %s", table, resp.StatusCode, string(body)))
	}

	return nil
}

// Delete removes one record by id.
func (c *RESTClient) Delete(ctx context.Context, table string, id string) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?id=eq.%s",
		strings.TrimSuffix(c.config.BaseURL, "/"), url.PathEscape(table), url.QueryEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, "delete from "+table+" failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperrors.New(apperrors.ErrSyncNotAuthenticated, "remote session rejected")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return apperrors.New(apperrors.ErrRemoteUnavailable,
			fmt.Sprintf("delete from %s failed with status %d: %s", table, resp.StatusCode, string(body)))
	}

	return nil
}

// setHeaders attaches the API key and, when present, the session token.
func (c *RESTClient) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.config.AnonKey)

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
