package aptpay

import (
	"time"

	"github.com/aptosedu/aptpay/ledger"
	"github.com/aptosedu/aptpay/logger"
	"github.com/aptosedu/aptpay/metrics"
	"github.com/aptosedu/aptpay/wallet"
)

type Option func(*AptPay)

func WithLogger(l logger.Logger) Option {
	return func(a *AptPay) {
		a.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(a *AptPay) {
		a.metrics = r
	}
}

func WithTimeout(t time.Duration) Option {
	return func(a *AptPay) {
		a.timeout = t
	}
}

// WithBridge substitutes the wallet backend, e.g. a test double.
func WithBridge(b wallet.Bridge) Option {
	return func(a *AptPay) {
		a.bridge = b
	}
}

// WithLedgerReader substitutes the ledger read side.
func WithLedgerReader(r ledger.Reader) Option {
	return func(a *AptPay) {
		a.reader = r
	}
}
