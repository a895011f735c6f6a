package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OctasPerAPT is the base-unit scale of the Aptos coin: 1 APT = 10^8 Octas.
const OctasPerAPT = 100_000_000

var octasFactor = decimal.NewFromInt(OctasPerAPT)

// ToOctas converts an APT amount to integer Octas, truncating toward zero.
// floor(amount * 1e8) is the conversion the extension payload expects.
func ToOctas(amount decimal.Decimal) uint64 {
	return amount.Mul(octasFactor).Floor().BigInt().Uint64()
}

// OctasString renders the Octas value of an APT amount as the decimal
// string carried in the transfer payload arguments.
func OctasString(amount decimal.Decimal) string {
	return amount.Mul(octasFactor).Floor().String()
}

// FromOctas converts a base-unit string (as reported by the coin store
// resource) back to a display APT amount.
func FromOctas(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("octas value cannot be empty")
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid octas value: %w", err)
	}
	return v.Shift(-8), nil
}

// ShortenAddress abbreviates a wallet address for display:
// first 6 characters, an ellipsis, last 4. Inputs too short to
// abbreviate come back unchanged.
func ShortenAddress(address string) string {
	if address == "" {
		return ""
	}
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
