package miner

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/crypt0miester/ore-cli-v2/ore"
)

func TestCutoffSeconds(t *testing.T) {
	tests := []struct {
		name       string
		lastHashAt int64
		now        int64
		buffer     int64
		want       int64
	}{
		{
			name:       "fresh proof waits almost a full epoch",
			lastHashAt: 1000,
			now:        1000,
			buffer:     5,
			want:       55,
		},
		{
			name:       "eligible exactly at the buffered boundary",
			lastHashAt: 1000,
			now:        1055,
			buffer:     5,
			want:       0,
		},
		{
			name:       "clock at T+58 with 5s buffer needs no wait",
			lastHashAt: 1000,
			now:        1058,
			buffer:     5,
			want:       0,
		},
		{
			name:       "long overdue clamps to zero",
			lastHashAt: 1000,
			now:        2000,
			buffer:     5,
			want:       0,
		},
		{
			name:       "no buffer",
			lastHashAt: 1000,
			now:        1030,
			buffer:     0,
			want:       30,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, cutoffSeconds(tt.lastHashAt, tt.now, tt.buffer))
		})
	}
}

func TestGetCutoffReadsLedgerClock(t *testing.T) {
	// the clock sysvar has no discriminator prefix
	clockData := encodeBorsh(t, clock{UnixTimestamp: 1040})

	ledger := &fakeLedger{
		getAccountInfo: func(_ context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
			require.Equal(t, solana.SysVarClockPubkey, account)
			return accountResult(t, clockData), nil
		},
	}
	m := newTestMiner(t, ledger, Config{})

	wait, err := m.getCutoff(context.Background(), &ore.Proof{LastHashAt: 1000}, 5)
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, wait)
}
