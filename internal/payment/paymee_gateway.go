package payment

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"boutique-be/internal/apperr"
	"boutique-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPaymeeBaseURL = "https://sandbox.paymee.tn"
	defaultPaymeeTimeout = 15 * time.Second
	maxPaymeeAttempts    = 2
	maxPaymeeBody        = 1 << 20
)

type PaymeeConfig struct {
	APIKey     string
	BaseURL    string
	ReturnURL  string
	CancelURL  string
	WebhookURL string
	Timeout    time.Duration
}

type paymeeGateway struct {
	apiKey     string
	baseURL    string
	returnURL  string
	cancelURL  string
	webhookURL string
	httpClient *http.Client
	retryDelay time.Duration
}

func NewPaymeeGateway(cfg PaymeeConfig) Gateway {
	if cfg.APIKey == "" {
		logger.L().Warn("Paymee API key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPaymeeBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPaymeeTimeout
	}

	return &paymeeGateway{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		returnURL:  cfg.ReturnURL,
		cancelURL:  cfg.CancelURL,
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retryDelay: 300 * time.Millisecond,
	}
}

// paymeeEnvelope is the wrapper around every Paymee API response.
type paymeeEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type paymeeCreateRequest struct {
	Amount     json.Number `json:"amount"`
	Note       string      `json:"note"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	ReturnURL  string      `json:"return_url,omitempty"`
	CancelURL  string      `json:"cancel_url,omitempty"`
	WebhookURL string      `json:"webhook_url,omitempty"`
	OrderID    string      `json:"order_id"`
}

type paymeeCreateData struct {
	Token      string `json:"token"`
	PaymentURL string `json:"payment_url"`
}

type paymeeCheckData struct {
	Token         string      `json:"token"`
	PaymentStatus bool        `json:"payment_status"`
	OrderID       flexString  `json:"order_id"`
	TransactionID flexString  `json:"transaction_id"`
	Amount        json.Number `json:"amount"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

func (g *paymeeGateway) CreatePayment(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "CreatePayment"),
		zap.String("order_id", req.OrderID),
		zap.String("amount", req.Amount.String()),
	)

	body, err := json.Marshal(paymeeCreateRequest{
		Amount:     json.Number(req.Amount.StringFixed(3)),
		Note:       req.Note,
		FirstName:  req.Payer.FirstName,
		LastName:   req.Payer.LastName,
		Email:      req.Payer.Email,
		Phone:      req.Payer.Phone,
		ReturnURL:  g.returnURL,
		CancelURL:  g.cancelURL,
		WebhookURL: g.webhookURL,
		OrderID:    req.OrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal paymee request: %w", err)
	}

	log.Info("sending payment request to Paymee")

	env, raw, err := g.do(ctx, http.MethodPost, "/api/v2/payments/create", body)
	if err != nil {
		log.Error("paymee create failed", zap.Error(err))
		return nil, err
	}

	var data paymeeCreateData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		log.Error("unexpected paymee create response", zap.ByteString("response", raw))
		return nil, apperr.WithDetail(ErrProvider, "réponse Paymee invalide")
	}

	log.Info("paymee payment created", zap.String("token", data.Token))

	return &CreateResponse{
		Token:       data.Token,
		PaymentURL:  data.PaymentURL,
		RawResponse: raw,
	}, nil
}

func (g *paymeeGateway) CheckPayment(ctx context.Context, token string) (*CheckResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "CheckPayment"),
		zap.String("token", token),
	)

	env, raw, err := g.do(ctx, http.MethodGet, "/api/v2/payments/"+url.PathEscape(token)+"/check", nil)
	if err != nil {
		log.Error("paymee check failed", zap.Error(err))
		return nil, err
	}

	var data paymeeCheckData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		log.Error("unexpected paymee check response", zap.ByteString("response", raw))
		return nil, apperr.WithDetail(ErrProvider, "réponse Paymee invalide")
	}

	res := &CheckResult{
		Token:         token,
		Paid:          data.PaymentStatus,
		OrderID:       string(data.OrderID),
		TransactionID: string(data.TransactionID),
	}
	if data.Amount != "" {
		if amt, err := decimal.NewFromString(data.Amount.String()); err == nil {
			res.Amount = amt
		}
	}
	return res, nil
}

// VerifyWebhook checks the notification checksum md5(token + "1"|"0" + apiKey).
func (g *paymeeGateway) VerifyWebhook(n WebhookNotification) error {
	if n.Token == "" || n.CheckSum == "" {
		return ErrInvalidSignature
	}
	expected := WebhookChecksum(n.Token, n.PaymentStatus, g.apiKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.CheckSum))) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

func WebhookChecksum(token string, paid bool, apiKey string) string {
	status := "0"
	if paid {
		status = "1"
	}
	sum := md5.Sum([]byte(token + status + apiKey))
	return hex.EncodeToString(sum[:])
}

// do sends the request, retrying once on transient failures. A 4xx or
// an envelope with status=false is terminal.
func (g *paymeeGateway) do(ctx context.Context, method, path string, body []byte) (*paymeeEnvelope, json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= maxPaymeeAttempts; attempt++ {
		env, raw, err := g.send(ctx, method, path, body)
		if err == nil {
			return env, raw, nil
		}
		lastErr = err
		if !errors.Is(err, errTransient) || ctx.Err() != nil {
			break
		}
		if attempt < maxPaymeeAttempts {
			logger.FromCtx(ctx).Warn("retrying paymee request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return nil, nil, apperr.Wrap(ErrProviderDown, ctx.Err())
			case <-time.After(g.retryDelay):
			}
		}
	}

	if errors.Is(lastErr, errTransient) {
		return nil, nil, apperr.Wrap(apperr.WithDetail(ErrProviderDown, lastErr.Error()), lastErr)
	}
	return nil, nil, lastErr
}

func (g *paymeeGateway) send(ctx context.Context, method, path string, body []byte) (*paymeeEnvelope, json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, nil, apperr.Wrap(ErrProvider, err)
	}
	req.Header.Set("Authorization", "Token "+g.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPaymeeBody))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read body: %v", errTransient, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, nil, fmt.Errorf("%w: status %d", errTransient, resp.StatusCode)
	}

	var env paymeeEnvelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		detail := fmt.Sprintf("paymee status %d", resp.StatusCode)
		if decodeErr == nil && env.Message != "" {
			detail = env.Message
		}
		return nil, raw, apperr.WithDetail(ErrProvider, detail)
	}
	if decodeErr != nil {
		return nil, raw, apperr.WithDetail(ErrProvider, "réponse Paymee illisible")
	}
	if !env.Status {
		return nil, raw, apperr.WithDetail(ErrProvider, env.Message)
	}
	return &env, raw, nil
}
