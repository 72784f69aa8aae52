package gateway

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

	apperrors "github.com/feebook/feebook/internal"
	gatewaytypes "github.com/feebook/feebook/internal/core/datamodel/gateway"
)

// API is the surface the order manager and reconciliation engine depend on.
// Implementations must never be called while holding a reconciliation lock.
type API interface {
	CreateOrder(ctx context.Context, req *gatewaytypes.CreateOrderRequest) (*gatewaytypes.CreateOrderResponse, error)
	GetOrder(ctx context.Context, externalOrderID string) (*gatewaytypes.OrderState, error)
	GetOrderPayments(ctx context.Context, externalOrderID string) ([]gatewaytypes.PaymentRecord, error)
}

type Config struct {
	BaseURL        string
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration
	ReturnURL      string
	NotifyURL      string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
	returnURL  string
	notifyURL  string
	timeout    time.Duration
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		clientID:   cfg.ClientID,
		secret:     cfg.ClientSecret,
		returnURL:  cfg.ReturnURL,
		notifyURL:  cfg.NotifyURL,
		timeout:    timeout,
		logger:     logger,
	}
}

func (c *Client) CreateOrder(ctx context.Context, req *gatewaytypes.CreateOrderRequest) (*gatewaytypes.CreateOrderResponse, error) {
	if req.ReturnURL == "" {
		req.ReturnURL = c.returnURL
	}
	if req.NotifyURL == "" {
		req.NotifyURL = c.notifyURL
	}

	c.logger.Info("gateway: creating order",
		"order_id", req.OrderID,
		"amount", req.Amount.StringFixed(2),
		"currency", req.Currency)

	var resp gatewaytypes.CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("gateway: order created",
		"order_id", req.OrderID,
		"external_order_id", resp.ExternalOrderID,
		"payment_session_id", resp.PaymentSessionID)

	return &resp, nil
}

func (c *Client) GetOrder(ctx context.Context, externalOrderID string) (*gatewaytypes.OrderState, error) {
	var state gatewaytypes.OrderState
	if err := c.do(ctx, http.MethodGet, "/orders/"+externalOrderID, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) GetOrderPayments(ctx context.Context, externalOrderID string) ([]gatewaytypes.PaymentRecord, error) {
	var payments []gatewaytypes.PaymentRecord
	if err := c.do(ctx, http.MethodGet, "/orders/"+externalOrderID+"/payments", nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal gateway request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create gateway request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.clientID)
	httpReq.Header.Set("x-client-secret", c.secret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Error("gateway request timed out", "method", method, "path", path)
		} else {
			c.logger.Error("gateway request failed", "method", method, "path", path, "error", err)
		}
		return apperrors.NewGatewayUnavailableError("payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewGatewayUnavailableError("failed to read gateway response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewNotFoundError("gateway order not found", apperrors.ErrCodeOrderNotFound)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Error("gateway returned server error",
			"method", method,
			"path", path,
			"status", resp.StatusCode)
		return apperrors.NewGatewayUnavailableError(
			fmt.Sprintf("payment gateway error: status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		c.logger.Error("gateway rejected request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"response", string(respBody))
		return apperrors.NewInternalError(
			fmt.Sprintf("unexpected gateway status %d", resp.StatusCode), nil)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apperrors.NewInternalError("failed to decode gateway response", err)
		}
	}

	return nil
}
