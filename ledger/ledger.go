// Package ledger is the client side of the external payment ledger:
// append one record per confirmed payment, read them all back for display.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aptosedu/aptpay/logger"
	"github.com/aptosedu/aptpay/types"
)

type Appender interface {
	Append(ctx context.Context, record types.PaymentRecord) error
}

type Reader interface {
	List(ctx context.Context) ([]types.PaymentRecord, error)
}

// Client talks to a ledger endpoint over HTTP JSON.
type Client struct {
	url    string
	client *http.Client
	log    logger.Logger
}

var (
	_ Appender = (*Client)(nil)
	_ Reader   = (*Client)(nil)
)

func NewClient(url string, client *http.Client, log logger.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Client{url: url, client: client, log: log}
}

// Append posts one payment record.
func (c *Client) Append(ctx context.Context, record types.PaymentRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode payment record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &types.PayError{Code: types.ErrLedgerError, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &types.PayError{
			Code:    types.ErrLedgerError,
			Message: fmt.Sprintf("ledger returned status %d", resp.StatusCode),
		}
	}
	return nil
}

// List fetches every recorded payment. Records that fail validation are
// dropped with a warning rather than poisoning the whole read.
func (c *Client) List(ctx context.Context) ([]types.PaymentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &types.PayError{Code: types.ErrLedgerError, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.PayError{
			Code:    types.ErrLedgerError,
			Message: fmt.Sprintf("ledger returned status %d", resp.StatusCode),
		}
	}

	var records []types.PaymentRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode payment records: %w", err)
	}

	valid := records[:0]
	for i := range records {
		if err := records[i].Validate(); err != nil {
			c.log.Warn("dropping malformed payment record", map[string]any{"error": err.Error()})
			continue
		}
		valid = append(valid, records[i])
	}
	return valid, nil
}
