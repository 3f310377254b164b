package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rryowa/foodcombo/internal/models"
	"github.com/rryowa/foodcombo/internal/util"
)

const (
	defaultHTTPStatusThreshold = 300
	paymentCurrency            = "RUB"
	maxErrorBodyBytes          = 1 << 10
)

// PaymentClient is a minimal YooKassa v3 client.
type PaymentClient struct {
	client    *http.Client
	log       *zap.SugaredLogger
	apiURL    string
	shopID    string
	secretKey string
	returnURL string
}

func NewPaymentClient(log *zap.SugaredLogger, cfg util.PaymentConfig) *PaymentClient {
	return &PaymentClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		log:       log,
		apiURL:    cfg.APIURL,
		shopID:    cfg.ShopID,
		secretKey: cfg.SecretKey,
		returnURL: cfg.ReturnURL,
	}
}

type createPaymentBody struct {
	Amount       models.Amount       `json:"amount"`
	Confirmation models.Confirmation `json:"confirmation"`
	Capture      bool                `json:"capture"`
	Description  string              `json:"description"`
}

func (c *PaymentClient) CreatePayment(ctx context.Context, amount float64, description string) (*models.Payment, error) {
	body := createPaymentBody{
		Amount: models.Amount{
			Value:    fmt.Sprintf("%.2f", amount),
			Currency: paymentCurrency,
		},
		Confirmation: models.Confirmation{
			Type:      "redirect",
			ReturnURL: c.returnURL,
		},
		Capture:     true,
		Description: description,
	}

	payment, err := c.do(ctx, http.MethodPost, "/payments", body)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	c.log.Infow("Payment created", "paymentID", payment.ID, "status", payment.Status)
	return payment, nil
}

func (c *PaymentClient) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}

func (c *PaymentClient) do(ctx context.Context, method, path string, payload any) (*models.Payment, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrPaymentProvider, err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Idempotence-Key", uuid.NewString())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode >= defaultHTTPStatusThreshold || resp.StatusCode < http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.log.Warnw("Payment provider returned non-2xx status", "status", resp.StatusCode, "path", path)
		return nil, fmt.Errorf("%w: status %d: %s", ErrPaymentProvider, resp.StatusCode, bytes.TrimSpace(detail))
	}

	var payment models.Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrPaymentProvider, err)
	}
	return &payment, nil
}
