// Package flow orchestrates one payment submission: validate, transfer,
// branch to an outcome, append to the ledger on success.
package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aptosedu/aptpay/ledger"
	"github.com/aptosedu/aptpay/logger"
	"github.com/aptosedu/aptpay/metrics"
	"github.com/aptosedu/aptpay/types"
	"github.com/aptosedu/aptpay/wallet"
)

// State of the submission machine. Submitting always resolves to exactly
// one of Succeeded or Failed; a fresh submission re-enters from either.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// ErrSubmitInProgress rejects re-entrant submissions while one is in flight.
var ErrSubmitInProgress = errors.New("a submission is already in progress")

// Flow serializes validate, transfer and outcome for one session.
type Flow struct {
	mu    sync.Mutex
	state State

	bridge      wallet.Bridge
	ledger      ledger.Appender
	institution string

	log     logger.Logger
	metrics metrics.Recorder
	now     func() time.Time

	detached sync.WaitGroup
}

// New creates a flow paying into the institution address. The ledger
// appender may be nil, which disables the side effect entirely.
func New(bridge wallet.Bridge, institution string, led ledger.Appender, log logger.Logger, rec metrics.Recorder) *Flow {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Flow{
		state:       StateIdle,
		bridge:      bridge,
		ledger:      led,
		institution: institution,
		log:         log,
		metrics:     rec,
		now:         time.Now,
	}
}

// State returns the current machine state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit runs one submission attempt and produces its immutable outcome.
// Invalid input never reaches the bridge; a second call while Submitting
// fails with ErrSubmitInProgress.
func (f *Flow) Submit(ctx context.Context, req types.PaymentRequest) (*types.TransactionOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	start := f.now()
	result := f.bridge.SubmitTransfer(ctx, f.institution, req.Amount)
	f.metrics.ObserveLatency("submit_transfer", f.now().Sub(start), nil)
	if result == nil {
		result = &types.TransferResult{Success: false, Error: types.MsgTransferFailed}
	}

	reqCopy := req
	outcome := &types.TransactionOutcome{Request: &reqCopy}

	if result.Success {
		outcome.Success = true
		outcome.Hash = result.Hash
		f.appendToLedger(ctx, &reqCopy, result.Hash)
		f.setState(StateSucceeded)
		f.metrics.IncCounter("payment_succeeded", nil)
		f.log.Info("payment succeeded", map[string]any{"hash": result.Hash})
		return outcome, nil
	}

	outcome.Error = result.Error
	if outcome.Error == "" {
		outcome.Error = types.MsgTransferFailed
	}
	f.setState(StateFailed)
	f.metrics.IncCounter("payment_failed", nil)
	f.log.Warn("payment failed", map[string]any{"error": outcome.Error})
	return outcome, nil
}

// Reset returns a terminal machine to Idle for a fresh attempt.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSubmitting {
		f.state = StateIdle
	}
}

// Drain waits for detached ledger appends to finish. Intended for
// shutdown and tests; the submission path never waits on it.
func (f *Flow) Drain() {
	f.detached.Wait()
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// appendToLedger fires the best-effort record append. Its failure is
// logged and never changes the outcome already produced.
func (f *Flow) appendToLedger(ctx context.Context, req *types.PaymentRequest, hash string) {
	if f.ledger == nil {
		return
	}

	record := types.NewPaymentRecord(req, hash, f.now())
	f.detached.Add(1)
	go func() {
		defer f.detached.Done()
		if err := f.ledger.Append(context.WithoutCancel(ctx), record); err != nil {
			f.log.Error("failed to save payment record", map[string]any{
				"hash":  hash,
				"error": err.Error(),
			})
		}
	}()
}
