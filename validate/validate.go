// Package validate holds the pure input classifiers for the conversation
// flows. Every function is total: same input, same verdict, no panics.
package validate

import (
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

const (
	publicKeyLen = 32
	secretKeyLen = 64
)

// Address reports whether s is a structurally valid public key: base58 with
// a 32 byte payload.
func Address(s string) bool {
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == publicKeyLen
}

// SecretKey reports whether s decodes to exactly the raw secret key size.
// Anything else is rejected before key construction is even attempted.
func SecretKey(s string) bool {
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == secretKeyLen
}

// Amount parses s as a decimal and reports whether it is positive and
// strictly below ceiling. The ceiling is a policy constant, not a protocol
// limit; callers pass their configured value.
func Amount(s string, ceiling decimal.Decimal) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	if !d.IsPositive() || d.GreaterThanOrEqual(ceiling) {
		return decimal.Zero, false
	}

	return d, true
}
