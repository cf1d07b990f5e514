package common

import (
	"testing"

	"overbank/service"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		balance int64
		want    int64
		wantErr error
	}{
		{name: "integer", raw: "250", balance: 1000, want: 250},
		{name: "integer above balance is left to the ledger", raw: "5000", balance: 1000, want: 5000},
		{name: "thousands separator", raw: "1,500", balance: 0, want: 1500},
		{name: "all", raw: "all", balance: 1000, want: 1000},
		{name: "all is case insensitive", raw: " ALL ", balance: 42, want: 42},
		{name: "half rounds down", raw: "half", balance: 101, want: 50},
		{name: "all of nothing", raw: "all", balance: 0, wantErr: service.ErrInvalidAmount},
		{name: "half of one", raw: "half", balance: 1, wantErr: service.ErrInvalidAmount},
		{name: "zero", raw: "0", balance: 1000, wantErr: service.ErrInvalidAmount},
		{name: "negative", raw: "-5", balance: 1000, wantErr: service.ErrInvalidAmount},
		{name: "garbage", raw: "lots", balance: 1000, wantErr: ErrInvalidAmountFormat},
		{name: "fraction", raw: "1.5", balance: 1000, wantErr: ErrInvalidAmountFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw, tt.balance)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNeedsBalance(t *testing.T) {
	assert.True(t, NeedsBalance("all"))
	assert.True(t, NeedsBalance("Half"))
	assert.False(t, NeedsBalance("100"))
}
