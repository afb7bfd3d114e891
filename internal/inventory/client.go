// Package inventory talks to the remote flight-inventory service. The
// remote pool is the sole source of truth for seat availability; this
// service never tracks remaining seats locally.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devnishantt/flight-booking-service/config"
	"github.com/devnishantt/flight-booking-service/internal/domain"
	"github.com/devnishantt/flight-booking-service/internal/money"
	"go.uber.org/zap"
)

type FlightClient interface {
	FetchPrice(ctx context.Context, flightID int64) (money.Cents, error)
	AdjustRemainingSeats(ctx context.Context, flightID int64, delta int) error
}

type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewClient(cfg config.InventoryConfig, log *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type flightEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Price money.Cents `json:"price"`
	} `json:"data"`
}

func (c *Client) FetchPrice(ctx context.Context, flightID int64) (money.Cents, error) {
	url := fmt.Sprintf("%s/api/v1/flight/%d", c.baseURL, flightID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, domain.WrapError(domain.ErrKindInternal, "build flight request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, domain.WrapError(domain.ErrKindRemoteUnavailable, "flight inventory service unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, domain.NewError(domain.ErrKindRemoteNotFound, fmt.Sprintf("flight %d not found", flightID))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return 0, domain.NewError(domain.ErrKindRemoteUnavailable, fmt.Sprintf("flight inventory service returned %d", resp.StatusCode))
	}

	var envelope flightEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, domain.WrapError(domain.ErrKindRemoteUnavailable, "decode flight response", err)
	}
	return envelope.Data.Price, nil
}

func (c *Client) AdjustRemainingSeats(ctx context.Context, flightID int64, delta int) error {
	payload, err := json.Marshal(map[string]int{"amount": delta})
	if err != nil {
		return domain.WrapError(domain.ErrKindInternal, "encode seat adjustment", err)
	}

	url := fmt.Sprintf("%s/api/v1/flight/%d/remaining-seats", c.baseURL, flightID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return domain.WrapError(domain.ErrKindInternal, "build seat adjustment request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrKindRemoteUnavailable, "flight inventory service unreachable", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("seat adjustment rejected",
			zap.Int64("flight_id", flightID),
			zap.Int("delta", delta),
			zap.Int("status", resp.StatusCode))
		return domain.NewError(domain.ErrKindRemoteUnavailable, fmt.Sprintf("seat adjustment returned %d", resp.StatusCode))
	}
	return nil
}

var _ FlightClient = (*Client)(nil)
