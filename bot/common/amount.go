package common

import (
	"errors"
	"strconv"
	"strings"

	"overbank/service"
)

// ErrInvalidAmountFormat is returned for amounts that are neither a number, "half" nor "all"
var ErrInvalidAmountFormat = errors.New(`amount must be a whole number, "half" or "all"`)

// ParseAmount resolves an amount option against the balance it refers to.
// "all" is the whole balance, "half" rounds down.
func ParseAmount(raw string, balance int64) (int64, error) {
	var amount int64
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case "all":
		amount = balance
	case "half":
		amount = balance / 2
	default:
		parsed, err := strconv.ParseInt(strings.ReplaceAll(value, ",", ""), 10, 64)
		if err != nil {
			return 0, ErrInvalidAmountFormat
		}
		amount = parsed
	}

	if amount <= 0 {
		return 0, service.ErrInvalidAmount
	}
	return amount, nil
}

// NeedsBalance reports whether raw can only be resolved with the balance
func NeedsBalance(raw string) bool {
	value := strings.ToLower(strings.TrimSpace(raw))
	return value == "all" || value == "half"
}
