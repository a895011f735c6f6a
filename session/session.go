// Package session owns the wallet connection state shared by every page.
package session

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aptosedu/aptpay/logger"
	"github.com/aptosedu/aptpay/metrics"
	"github.com/aptosedu/aptpay/types"
	"github.com/aptosedu/aptpay/utils"
	"github.com/aptosedu/aptpay/wallet"
)

// Manager is the single owner of the WalletSession. Pages read snapshots;
// only the operations below mutate state. The mutex is held across bridge
// calls, which serializes wallet operations per session.
type Manager struct {
	mu      sync.Mutex
	bridge  wallet.Bridge
	log     logger.Logger
	metrics metrics.Recorder
	state   types.WalletSession
}

func NewManager(bridge wallet.Bridge, log logger.Logger, rec metrics.Recorder) *Manager {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Manager{
		bridge:  bridge,
		log:     log,
		metrics: rec,
		state:   types.WalletSession{Balance: decimal.Zero},
	}
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() types.WalletSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect actively connects the wallet and refreshes the balance.
// On any failure the session is left unchanged and the error is surfaced
// for the caller to present.
func (m *Manager) Connect(ctx context.Context) (types.WalletSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	address, err := m.bridge.Connect(ctx)
	if err != nil {
		m.log.Warn("wallet connect failed", map[string]any{"error": err.Error()})
		m.metrics.IncCounter("connect_failed", nil)
		return m.state, err
	}

	m.state = types.WalletSession{
		Connected: true,
		Address:   address,
		Balance:   m.bridge.Balance(ctx, address),
	}
	m.log.Info("wallet connected", map[string]any{"address": utils.ShortenAddress(address)})
	m.metrics.IncCounter("connect_ok", nil)
	return m.state, nil
}

// Restore populates the session from an already-connected wallet without
// prompting the user. Returns the session and whether a wallet was found.
func (m *Manager) Restore(ctx context.Context) (types.WalletSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	address, _ := m.bridge.Account(ctx)
	if address == "" {
		return m.state, false
	}

	m.state = types.WalletSession{
		Connected: true,
		Address:   address,
		Balance:   m.bridge.Balance(ctx, address),
	}
	m.log.Info("wallet session restored", map[string]any{"address": utils.ShortenAddress(address)})
	return m.state, true
}

// RefreshBalance re-reads the balance in place. No-op without an address.
func (m *Manager) RefreshBalance(ctx context.Context) types.WalletSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Address == "" {
		return m.state
	}
	m.state.Balance = m.bridge.Balance(ctx, m.state.Address)
	return m.state
}

// Clear resets the session and fires a detached bridge disconnect.
// The local state is cleared regardless of what the extension says.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.state = types.WalletSession{Balance: decimal.Zero}
	m.mu.Unlock()

	go func() {
		if err := m.bridge.Disconnect(context.WithoutCancel(ctx)); err != nil {
			m.log.Warn("wallet disconnect failed", map[string]any{"error": err.Error()})
		}
	}()
}
