package miner

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/crypt0miester/ore-cli-v2/ore"
)

func TestRegisterSkipsExistingProof(t *testing.T) {
	signer := solana.NewWallet().PrivateKey
	proof := encodeAccount(t, 102, ore.Proof{Authority: signer.PublicKey()})

	sends := 0
	ledger := &fakeLedger{
		getAccountInfo: func(_ context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
			require.Equal(t, ore.ProofAddress(signer.PublicKey()), account)
			return accountResult(t, proof), nil
		},
		sendTransaction: func(context.Context, *solana.Transaction, rpc.TransactionOpts) (solana.Signature, error) {
			sends++
			return solana.Signature{}, nil
		},
	}
	m := newTestMiner(t, ledger, Config{Signers: []solana.PrivateKey{signer}})

	require.NoError(t, m.Register(context.Background()))
	require.Zero(t, sends, "existing accounts must not be re-registered")
}

func TestRegisterCreatesMissingProof(t *testing.T) {
	signer := solana.NewWallet().PrivateKey

	sends := 0
	ledger := &fakeLedger{
		getAccountInfo: func(context.Context, solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
			return nil, rpc.ErrNotFound
		},
		getLatestBlockhash: func(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
			return blockhashResult(100), nil
		},
		sendTransaction: func(_ context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
			sends++
			// priority fee plus the account-open instruction
			require.Len(t, tx.Message.Instructions, 2)
			return tx.Signatures[0], nil
		},
		getSignatureStatuses: func(context.Context, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			return statusResult(rpc.ConfirmationStatusFinalized), nil
		},
	}
	m := newTestMiner(t, ledger, Config{Signers: []solana.PrivateKey{signer}})

	require.NoError(t, m.Register(context.Background()))
	require.Equal(t, 1, sends)
}

func TestRegisterPropagatesReadErrors(t *testing.T) {
	signer := solana.NewWallet().PrivateKey

	ledger := &fakeLedger{
		getAccountInfo: func(context.Context, solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
			return nil, errors.New("rpc timeout")
		},
	}
	m := newTestMiner(t, ledger, Config{Signers: []solana.PrivateKey{signer}})

	err := m.Register(context.Background())
	require.ErrorContains(t, err, "rpc timeout")
}
