// Package aptpay implements the wallet session and fee-payment submission
// core of the AptosEdu Pay application: connect a Petra wallet, validate a
// payment form, submit an APT transfer and route to the outcome.
package aptpay

import (
	"context"
	"time"

	"github.com/aptosedu/aptpay/flow"
	"github.com/aptosedu/aptpay/form"
	"github.com/aptosedu/aptpay/guard"
	"github.com/aptosedu/aptpay/ledger"
	"github.com/aptosedu/aptpay/logger"
	"github.com/aptosedu/aptpay/metrics"
	"github.com/aptosedu/aptpay/session"
	"github.com/aptosedu/aptpay/types"
	"github.com/aptosedu/aptpay/utils"
	"github.com/aptosedu/aptpay/wallet"
)

// AptPay is the main struct wiring bridge, session, flow and ledger.
type AptPay struct {
	bridge  wallet.Bridge
	session *session.Manager
	flow    *flow.Flow
	reader  ledger.Reader
	config  *types.Config

	logger  logger.Logger
	metrics metrics.Recorder
	timeout time.Duration
}

// New creates an AptPay instance with the given configuration.
func New(config *types.Config, opts ...Option) (*AptPay, error) {
	if config == nil || config.InstitutionAddress == "" {
		return nil, &types.PayError{
			Code:    types.ErrConfigError,
			Message: "institutionAddress is required",
		}
	}
	if err := utils.ValidateAddress(config.InstitutionAddress); err != nil {
		return nil, &types.PayError{Code: types.ErrConfigError, Message: err.Error()}
	}

	a := &AptPay{config: config, timeout: 30 * time.Second}
	if config.DefaultTimeout > 0 {
		a.timeout = config.DefaultTimeout
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logger.NewZapLogger(config.LogLevel)
	}
	if a.metrics == nil {
		if config.EnableMetrics {
			a.metrics = metrics.NewPrometheusRecorder()
		} else {
			a.metrics = metrics.NoopRecorder{}
		}
	}

	if a.bridge == nil {
		bridge, err := wallet.NewPetra(config.Bridge, a.logger)
		if err != nil {
			return nil, err
		}
		a.bridge = bridge
	}

	var appender ledger.Appender
	if config.LedgerURL != "" {
		client := ledger.NewClient(config.LedgerURL, nil, a.logger)
		appender = client
		if a.reader == nil {
			a.reader = client
		}
	}

	a.session = session.NewManager(a.bridge, a.logger, a.metrics)
	a.flow = flow.New(a.bridge, config.InstitutionAddress, appender, a.logger, a.metrics)
	return a, nil
}

// Connect actively connects the wallet and refreshes the balance.
func (a *AptPay) Connect(ctx context.Context) (types.WalletSession, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.session.Connect(ctx)
}

// Restore passively picks up an already-connected wallet on first load.
// It never prompts the user.
func (a *AptPay) Restore(ctx context.Context) (types.WalletSession, bool) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.session.Restore(ctx)
}

// Session returns a copy of the current wallet session state.
func (a *AptPay) Session() types.WalletSession {
	return a.session.Snapshot()
}

// RefreshBalance re-reads the balance of the connected wallet.
func (a *AptPay) RefreshBalance(ctx context.Context) types.WalletSession {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.session.RefreshBalance(ctx)
}

// Disconnect clears the session and detaches the extension disconnect.
func (a *AptPay) Disconnect(ctx context.Context) {
	a.session.Clear(ctx)
}

// NewForm starts a fresh payment draft with the standard defaults.
func (a *AptPay) NewForm() *form.Form {
	return form.New()
}

// Pay submits a payment request and returns its outcome. The extension
// call has no client-side timeout; the flow waits for it to resolve.
func (a *AptPay) Pay(ctx context.Context, req types.PaymentRequest) (*types.TransactionOutcome, error) {
	return a.flow.Submit(ctx, req)
}

// FlowState exposes the submission machine state for busy affordances.
func (a *AptPay) FlowState() flow.State {
	return a.flow.State()
}

// GuardRoute decides whether the current session may visit the route.
func (a *AptPay) GuardRoute(target string) guard.Decision {
	return guard.Check(a.session.Snapshot(), target)
}

// Payments reads the recorded payments from the ledger collaborator.
func (a *AptPay) Payments(ctx context.Context) ([]types.PaymentRecord, error) {
	if a.reader == nil {
		return nil, &types.PayError{Code: types.ErrConfigError, Message: "no ledger endpoint configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.reader.List(ctx)
}

// Close waits for detached side effects to settle.
func (a *AptPay) Close() {
	a.flow.Drain()
}

// Version information
const Version = "1.0.0"

// GetVersion returns version information
func GetVersion() map[string]interface{} {
	feeTypes := make([]string, 0, len(types.FeeTypes()))
	for _, ft := range types.FeeTypes() {
		feeTypes = append(feeTypes, ft.String())
	}
	return map[string]interface{}{
		"library_version": Version,
		"supported_networks": []string{
			types.NetworkMainnet.String(),
			types.NetworkTestnet.String(),
			types.NetworkDevnet.String(),
		},
		"fee_types": feeTypes,
	}
}
