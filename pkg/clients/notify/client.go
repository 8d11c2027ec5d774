package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/agrocampo/internal/config"
)

// Alert kinds pushed to the operations webhook.
const (
	KindConsistencyWarning = "consistency_warning"
	KindLowStock           = "low_stock"
)

// Alert is the payload delivered to the webhook endpoint.
type Alert struct {
	Kind      string  `json:"kind"`
	Message   string  `json:"message"`
	ProductID string  `json:"productId,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// Client exposes the alert delivery operation used by the application.
type Client interface {
	SendAlert(ctx context.Context, alert Alert) error
}

// WebhookClient is a resty-backed implementation of Client posting alerts to
// a configured HTTP endpoint.
type WebhookClient struct {
	httpClient *resty.Client
}

// NewWebhookClient builds a notifier client from the provided configuration.
func NewWebhookClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.WebhookURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &WebhookClient{httpClient: restyClient}
}

// SendAlert posts the alert as JSON to the webhook endpoint.
func (c *WebhookClient) SendAlert(ctx context.Context, alert Alert) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post("")
	if err != nil {
		return fmt.Errorf("send alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("alert webhook error: status=%d body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
