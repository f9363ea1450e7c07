// Package remote implements the RemoteGateway port against the hosted
// PostgREST-style data API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finq/internal/models"
	"github.com/example/finq/internal/ports/secondary"
)

const (
	debtSelect  = "*,debt_amount_history(*)"
	restPrefix  = "/rest/v1/"
	noRowsCode  = "PGRST116"
	noRowsError = "JSON object requested, multiple (or no) rows returned"
)

// Config holds the connection settings of the client.
type Config struct {
	BaseURL string
	APIKey  string
	// AccessToken is sent as the bearer token; the API key is used when empty.
	AccessToken string
	Timeout     time.Duration
}

// Client implements secondary.RemoteGateway over HTTP.
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	http        *http.Client
	logger      *slog.Logger
}

// NewClient creates a gateway client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		accessToken: cfg.AccessToken,
		http:        &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type debtInsert struct {
	models.NewDebt
	UserID string `json:"user_id"`
}

type assetInsert struct {
	models.NewAsset
	UserID string `json:"user_id"`
}

// ListDebts retrieves the owner's debts ordered by due date.
func (c *Client) ListDebts(ctx context.Context, ownerID string) ([]models.Debt, error) {
	q := url.Values{}
	q.Set("select", debtSelect)
	q.Set("user_id", "eq."+ownerID)
	q.Set("order", "due_date.asc")

	var debts []models.Debt
	if err := c.do(ctx, "list debts", http.MethodGet, "debts", q, nil, &debts); err != nil {
		return nil, err
	}
	return debts, nil
}

// CreateDebt inserts a debt for ownerID.
func (c *Client) CreateDebt(ctx context.Context, debt models.NewDebt, ownerID string) (*models.Debt, error) {
	q := url.Values{}
	q.Set("select", debtSelect)

	var rows []models.Debt
	body := []debtInsert{{NewDebt: debt, UserID: ownerID}}
	if err := c.do(ctx, "create debt", http.MethodPost, "debts", q, body, &rows); err != nil {
		return nil, err
	}
	return single("create debt", rows)
}

// UpdateDebt writes the given columns of one debt.
func (c *Client) UpdateDebt(ctx context.Context, id string, fields map[string]any) (*models.Debt, error) {
	q := url.Values{}
	q.Set("select", debtSelect)
	q.Set("id", "eq."+id)

	var rows []models.Debt
	if err := c.do(ctx, "update debt", http.MethodPatch, "debts", q, fields, &rows); err != nil {
		return nil, err
	}
	return single("update debt", rows)
}

// DeleteDebt removes a debt.
func (c *Client) DeleteDebt(ctx context.Context, id string) (string, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := c.do(ctx, "delete debt", http.MethodDelete, "debts", q, nil, nil); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateDebtAmount calls the update_debt_amount procedure.
func (c *Client) UpdateDebtAmount(ctx context.Context, id string, amount decimal.Decimal, note string) error {
	args := map[string]any{
		"in_debt_id":    id,
		"in_new_amount": amount,
		"in_note":       note,
	}
	return c.do(ctx, "rpc update_debt_amount", http.MethodPost, "rpc/update_debt_amount", nil, args, nil)
}

// ListAssets retrieves the owner's assets, newest first.
func (c *Client) ListAssets(ctx context.Context, ownerID string) ([]models.Asset, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+ownerID)
	q.Set("order", "created_at.desc")

	var assets []models.Asset
	if err := c.do(ctx, "list assets", http.MethodGet, "assets", q, nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// CreateAsset inserts an asset for ownerID.
func (c *Client) CreateAsset(ctx context.Context, asset models.NewAsset, ownerID string) (*models.Asset, error) {
	q := url.Values{}
	q.Set("select", "*")

	var rows []models.Asset
	body := []assetInsert{{NewAsset: asset, UserID: ownerID}}
	if err := c.do(ctx, "create asset", http.MethodPost, "assets", q, body, &rows); err != nil {
		return nil, err
	}
	return single("create asset", rows)
}

// UpdateAsset writes the given columns of one asset.
func (c *Client) UpdateAsset(ctx context.Context, id string, fields map[string]any) (*models.Asset, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)

	var rows []models.Asset
	if err := c.do(ctx, "update asset", http.MethodPatch, "assets", q, fields, &rows); err != nil {
		return nil, err
	}
	return single("update asset", rows)
}

// DeleteAsset removes an asset.
func (c *Client) DeleteAsset(ctx context.Context, id string) (string, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := c.do(ctx, "delete asset", http.MethodDelete, "assets", q, nil, nil); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateAssetAmount calls the update_asset_amount procedure.
func (c *Client) UpdateAssetAmount(ctx context.Context, id string, amount decimal.Decimal, note string) error {
	args := map[string]any{
		"in_asset_id":   id,
		"in_new_amount": amount,
		"in_note":       note,
	}
	return c.do(ctx, "rpc update_asset_amount", http.MethodPost, "rpc/update_asset_amount", nil, args, nil)
}

// apiError is the error body returned by the data API.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends one request and decodes a 2xx response body into out.
// Any other outcome is returned as *secondary.GatewayError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + restPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &secondary.GatewayError{Op: op, Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &secondary.GatewayError{Op: op, Message: "failed to build request", Err: err}
	}
	c.authorize(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if out != nil && method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &secondary.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("gateway request", "op", op, "method", method, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &secondary.GatewayError{Op: op, Status: resp.StatusCode, Message: "failed to decode response", Err: err}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	token := c.accessToken
	if token == "" {
		token = c.apiKey
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func decodeError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	gerr := &secondary.GatewayError{Op: op, Status: resp.StatusCode}

	var body apiError
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		gerr.Code = body.Code
		gerr.Message = body.Message
		return gerr
	}
	gerr.Message = strings.TrimSpace(string(data))
	if gerr.Message == "" {
		gerr.Message = http.StatusText(resp.StatusCode)
	}
	return gerr
}

// single returns the only row of a representation response.
func single[T any](op string, rows []T) (*T, error) {
	if len(rows) != 1 {
		return nil, &secondary.GatewayError{
			Op:      op,
			Status:  http.StatusNotAcceptable,
			Code:    noRowsCode,
			Message: fmt.Sprintf("%s (%d rows)", noRowsError, len(rows)),
		}
	}
	return &rows[0], nil
}

// Health reports whether the API answers its health check.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

var _ secondary.RemoteGateway = (*Client)(nil)
