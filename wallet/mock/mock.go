// Package mock implements wallet.Bridge in memory for tests.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aptosedu/aptpay/types"
	"github.com/aptosedu/aptpay/utils"
	"github.com/aptosedu/aptpay/wallet"
)

// Transfer is one submit attempt the mock accepted.
type Transfer struct {
	To     string
	Amount decimal.Decimal
	Octas  uint64
	Hash   string
}

type Config struct {
	// Unavailable simulates a missing extension.
	Unavailable bool
	// Address the wallet reports after connecting.
	Address string
	// Balance reported for the wallet's own address.
	Balance decimal.Decimal
	// Connected starts the wallet with an exposed account, so Connect
	// short-circuits without prompting.
	Connected bool
	// HoldSubmit, when non-nil, blocks SubmitTransfer until the channel
	// is closed or the context ends. Used to exercise in-flight guards.
	HoldSubmit chan struct{}
}

// Mock implements the wallet.Bridge interface for testing purposes.
type Mock struct {
	mu            sync.Mutex
	cfg           Config
	connected     bool
	rejectConnect bool
	submitErr     string
	nextHash      string
	nextSeq       int
	transfers     []Transfer
}

var _ wallet.Bridge = (*Mock)(nil)

// New creates a new Mock bridge.
func New(cfg Config) *Mock {
	if cfg.Address == "" {
		cfg.Address = "0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
	}
	return &Mock{cfg: cfg, connected: cfg.Connected}
}

// RejectConnect makes the next Connect behave like a user denial.
func (m *Mock) RejectConnect(reject bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectConnect = reject
}

// FailSubmit forces subsequent submits to fail with the given message.
// Empty restores normal behavior.
func (m *Mock) FailSubmit(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitErr = msg
}

// NextHash fixes the hash returned for the next successful submit.
func (m *Mock) NextHash(hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextHash = hash
}

// Transfers returns a copy of every transfer the mock accepted.
func (m *Mock) Transfers() []Transfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Transfer, len(m.transfers))
	copy(out, m.transfers)
	return out
}

func (m *Mock) IsAvailable() bool {
	return !m.cfg.Unavailable
}

func (m *Mock) Connect(ctx context.Context) (string, error) {
	if !m.IsAvailable() {
		return "", &types.PayError{Code: types.ErrExtensionMissing, Message: types.MsgExtensionMissing}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return m.cfg.Address, nil
	}
	if m.rejectConnect {
		return "", &types.PayError{Code: types.ErrUserRejected, Message: "Connection request was rejected"}
	}
	m.connected = true
	return m.cfg.Address, nil
}

func (m *Mock) Account(ctx context.Context) (string, error) {
	if !m.IsAvailable() {
		return "", nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return "", nil
	}
	return m.cfg.Address, nil
}

func (m *Mock) Balance(ctx context.Context, address string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if address != m.cfg.Address {
		return decimal.Zero
	}
	return m.cfg.Balance
}

func (m *Mock) SubmitTransfer(ctx context.Context, to string, amount decimal.Decimal) *types.TransferResult {
	if to == "" || !amount.IsPositive() {
		return &types.TransferResult{Success: false, Error: types.MsgInvalidTransfer}
	}
	if !m.IsAvailable() {
		return &types.TransferResult{Success: false, Error: types.MsgExtensionMissing}
	}

	if m.cfg.HoldSubmit != nil {
		select {
		case <-m.cfg.HoldSubmit:
		case <-ctx.Done():
			return &types.TransferResult{Success: false, Error: types.MsgTransferFailed}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitErr != "" {
		return &types.TransferResult{Success: false, Error: m.submitErr}
	}

	hash := m.nextHash
	m.nextHash = ""
	if hash == "" {
		hash = fmt.Sprintf("0x%064x", m.nextSeq)
	}
	m.nextSeq++

	m.transfers = append(m.transfers, Transfer{
		To:     to,
		Amount: amount,
		Octas:  utils.ToOctas(amount),
		Hash:   hash,
	})
	return &types.TransferResult{Success: true, Hash: hash}
}

func (m *Mock) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}
