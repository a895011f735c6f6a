// Package wallet abstracts the Petra extension surface and the Aptos
// fullnode behind a single Bridge interface, so session and flow logic
// never touch the wire directly and test doubles can be substituted.
package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/aptosedu/aptpay/types"
)

type Bridge interface {
	// IsAvailable reports whether the wallet extension surface is
	// reachable at all. Pure, no side effect.
	IsAvailable() bool

	// Connect asks the extension for an account, prompting the user if
	// needed. Implementations short-circuit through Account first so an
	// already-connected wallet is never re-prompted.
	Connect(ctx context.Context) (string, error)

	// Account passively probes for an already-exposed address. A missing
	// extension or a not-connected wallet yields "", never an error.
	Account(ctx context.Context) (string, error)

	// Balance returns the APT balance of the address. Advisory display
	// data: any failure resolves to zero, logged but never propagated.
	Balance(ctx context.Context, address string) decimal.Decimal

	// SubmitTransfer signs and submits an APT transfer. Fails closed on
	// bad input before the extension is ever invoked.
	SubmitTransfer(ctx context.Context, to string, amount decimal.Decimal) *types.TransferResult

	// Disconnect is best effort; callers clear local state regardless.
	Disconnect(ctx context.Context) error
}
