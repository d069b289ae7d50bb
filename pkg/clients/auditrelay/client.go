// Package auditrelay ships audit records to an external collector over HTTP.
package auditrelay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/armory/internal/config"
	"github.com/mamadbah2/armory/internal/domain/models"
)

// Client exposes the collector operations used by the audit sink.
type Client interface {
	Forward(ctx context.Context, rec models.AuditRecord) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a collector client from the relay configuration.
func NewClient(cfg config.AuditRelayConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.URL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}

	return &APIClient{httpClient: restyClient}
}

// relayPayload mirrors the collector's ingestion contract.
type relayPayload struct {
	User      string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// Forward posts one audit record to the collector.
func (c *APIClient) Forward(ctx context.Context, rec models.AuditRecord) error {
	payload := relayPayload{
		User:      rec.User,
		Action:    rec.Action,
		Details:   rec.Details,
		Timestamp: rec.Timestamp,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("")
	if err != nil {
		return fmt.Errorf("post audit record: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("audit collector returned %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}
