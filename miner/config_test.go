package miner

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/crypt0miester/ore-cli-v2/ore"
)

func TestGetProgramConfigIsCached(t *testing.T) {
	reads := 0
	ledger := &fakeLedger{
		getAccountInfo: func(_ context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
			reads++
			require.Equal(t, ore.ConfigAddress(), account)
			return accountResult(t, encodeAccount(t, 101, ore.Config{MinDifficulty: 8, BaseRewardRate: 3})), nil
		},
	}
	m := newTestMiner(t, ledger, Config{})

	for i := 0; i < 3; i++ {
		cfg, err := m.getProgramConfig(context.Background())
		require.NoError(t, err)
		require.Equal(t, uint64(8), cfg.MinDifficulty)
	}
	require.Equal(t, 1, reads)
}
