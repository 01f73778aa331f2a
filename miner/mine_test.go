package miner

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/crypt0miester/ore-cli-v2/ore"
)

func TestMineRoundSubmitsBundle(t *testing.T) {
	signer := solana.NewWallet().PrivateKey
	feePayer := solana.NewWallet().PrivateKey

	var challenge [32]byte
	for i := range challenge {
		challenge[i] = byte(37 + i)
	}

	accounts := map[solana.PublicKey][]byte{
		ore.ProofAddress(signer.PublicKey()): encodeAccount(t, 102, ore.Proof{
			Authority:  signer.PublicKey(),
			Challenge:  challenge,
			LastHashAt: 1000,
		}),
		// far past the epoch boundary, so no submission wait
		solana.SysVarClockPubkey: encodeBorsh(t, clock{UnixTimestamp: 2000}),
	}
	for i := range ore.BusAddresses {
		accounts[ore.BusAddresses[i]] = encodeAccount(t, 100, ore.Bus{ID: uint64(i), Rewards: uint64(10 * (i + 1))})
	}

	ledger := &fakeLedger{
		getAccountInfo: func(_ context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
			data, ok := accounts[account]
			require.True(t, ok, "unexpected account read: %s", account)
			return accountResult(t, data), nil
		},
		getBalance: func(context.Context, solana.PublicKey) (*rpc.GetBalanceResult, error) {
			return &rpc.GetBalanceResult{Value: 2_000_000_000}, nil
		},
		getLatestBlockhash: func(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
			return blockhashResult(100), nil
		},
		getSignatureStatuses: func(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			return statusResult(rpc.ConfirmationStatusConfirmed), nil
		},
	}

	var submitted []*solana.Transaction
	relay := &fakeRelay{
		sendBundle: func(_ context.Context, txs []*solana.Transaction) (string, error) {
			submitted = txs
			return "bundle-id", nil
		},
		tipAccount: solana.NewWallet().PrivateKey.PublicKey(),
	}
	m := newTestMiner(t, ledger, Config{
		Signers:  []solana.PrivateKey{signer},
		FeePayer: feePayer,
		Relay:    relay,
	})

	err := m.mineRound(context.Background(), 1, MineOptions{
		Threads:       2,
		MinDifficulty: 1,
		TipAmount:     1000,
	})
	require.NoError(t, err)

	// one participant: auth + mine share a single bundled transaction
	require.Len(t, submitted, 1)
	require.Len(t, submitted[0].Message.Instructions, 3)

	// the mine instruction must target the richest bus
	keys := submitted[0].Message.AccountKeys
	programs := make(map[solana.PublicKey]bool)
	for _, ix := range submitted[0].Message.Instructions {
		prog := keys[ix.ProgramIDIndex]
		programs[prog] = true
		if prog != ore.ProgramID {
			continue
		}
		busAddr := keys[ix.Accounts[1]]
		require.Equal(t, ore.BusAddresses[ore.BusCount-1], busAddr)
	}
	require.True(t, programs[ore.ProgramID])
	require.True(t, programs[ore.NoopProgramID])
}
