package flow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aptosedu/aptpay/flow"
	"github.com/aptosedu/aptpay/types"
	"github.com/aptosedu/aptpay/wallet"
	"github.com/aptosedu/aptpay/wallet/mock"
)

const institution = "0x1"

type captureLedger struct {
	mu      sync.Mutex
	records []types.PaymentRecord
	err     error
}

func (c *captureLedger) Append(ctx context.Context, record types.PaymentRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
	return c.err
}

func (c *captureLedger) Records() []types.PaymentRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.PaymentRecord, len(c.records))
	copy(out, c.records)
	return out
}

func validRequest() types.PaymentRequest {
	return types.PaymentRequest{
		StudentName: "A",
		CollegeName: "B",
		RollNumber:  "1",
		FeeType:     types.FeeTypeCollege,
		Amount:      decimal.NewFromInt(5),
	}
}

func TestSubmitSucceeded(t *testing.T) {
	bridge := mock.New(mock.Config{Connected: true})
	bridge.NextHash("0xabc")
	led := &captureLedger{}
	f := flow.New(bridge, institution, led, nil, nil)

	req := validRequest()
	outcome, err := f.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, "0xabc", outcome.Hash)
	assert.Empty(t, outcome.Error)
	require.True(t, outcome.HasRequest())
	assert.Equal(t, req, *outcome.Request)
	assert.Equal(t, types.RouteSuccess, outcome.Route())
	assert.Equal(t, flow.StateSucceeded, f.State())

	transfers := bridge.Transfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, institution, transfers[0].To)
	assert.Equal(t, uint64(500_000_000), transfers[0].Octas)

	f.Drain()
	records := led.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "success", records[0].Status)
	assert.Equal(t, "0xabc", records[0].TransactionHash)
	assert.Equal(t, "A", records[0].StudentName)
	assert.False(t, records[0].Date.IsZero())
}

func TestSubmitFailed(t *testing.T) {
	bridge := mock.New(mock.Config{Connected: true})
	bridge.FailSubmit("insufficient funds")
	led := &captureLedger{}
	f := flow.New(bridge, institution, led, nil, nil)

	outcome, err := f.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Equal(t, "insufficient funds", outcome.Error)
	assert.Equal(t, types.RouteFailed, outcome.Route())
	assert.Equal(t, flow.StateFailed, f.State())

	// Failed submissions never touch the ledger.
	f.Drain()
	assert.Empty(t, led.Records())
}

// nilBridge simulates the extension call itself blowing up: the flow
// must map it to a Failed outcome with the default message.
type nilBridge struct{ wallet.Bridge }

func (nilBridge) SubmitTransfer(context.Context, string, decimal.Decimal) *types.TransferResult {
	return nil
}

func TestSubmitBridgeError(t *testing.T) {
	led := &captureLedger{}
	f := flow.New(nilBridge{}, institution, led, nil, nil)

	outcome, err := f.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Equal(t, types.MsgTransferFailed, outcome.Error)
	f.Drain()
	assert.Empty(t, led.Records())
}

func TestSubmitValidationShortCircuits(t *testing.T) {
	bridge := mock.New(mock.Config{Connected: true})
	f := flow.New(bridge, institution, nil, nil, nil)

	cases := []struct {
		name   string
		mutate func(*types.PaymentRequest)
	}{
		{"missing student name", func(r *types.PaymentRequest) { r.StudentName = "" }},
		{"missing college name", func(r *types.PaymentRequest) { r.CollegeName = "" }},
		{"missing roll number", func(r *types.PaymentRequest) { r.RollNumber = "" }},
		{"zero amount", func(r *types.PaymentRequest) { r.Amount = decimal.Zero }},
		{"negative amount", func(r *types.PaymentRequest) { r.Amount = decimal.NewFromInt(-1) }},
		{"bad fee type", func(r *types.PaymentRequest) { r.FeeType = "Parking Fee" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)

			outcome, err := f.Submit(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, outcome)

			var payErr *types.PayError
			require.ErrorAs(t, err, &payErr)
			assert.Equal(t, types.ErrInvalidInput, payErr.Code)
		})
	}

	// The bridge was never invoked.
	assert.Empty(t, bridge.Transfers())
	assert.Equal(t, flow.StateIdle, f.State())
}

func TestSubmitRejectsDoubleSubmit(t *testing.T) {
	hold := make(chan struct{})
	bridge := mock.New(mock.Config{Connected: true, HoldSubmit: hold})
	f := flow.New(bridge, institution, nil, nil, nil)

	done := make(chan *types.TransactionOutcome, 1)
	go func() {
		outcome, _ := f.Submit(context.Background(), validRequest())
		done <- outcome
	}()

	require.Eventually(t, func() bool {
		return f.State() == flow.StateSubmitting
	}, time.Second, time.Millisecond)

	_, err := f.Submit(context.Background(), validRequest())
	assert.ErrorIs(t, err, flow.ErrSubmitInProgress)

	close(hold)
	outcome := <-done
	require.NotNil(t, outcome)
	assert.True(t, outcome.Success)

	// Terminal states accept a fresh submission.
	outcome, err = f.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
}

func TestLedgerFailureDoesNotChangeOutcome(t *testing.T) {
	bridge := mock.New(mock.Config{Connected: true})
	led := &captureLedger{err: &types.PayError{Code: types.ErrLedgerError, Message: "ledger down"}}
	f := flow.New(bridge, institution, led, nil, nil)

	outcome, err := f.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, flow.StateSucceeded, f.State())
	f.Drain()
}

func TestReset(t *testing.T) {
	bridge := mock.New(mock.Config{Connected: true})
	f := flow.New(bridge, institution, nil, nil, nil)

	_, err := f.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, flow.StateSucceeded, f.State())

	f.Reset()
	assert.Equal(t, flow.StateIdle, f.State())
}
