package miner

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errFakeUnhandled = errors.New("fake: call not handled")

// fakeLedger implements LedgerClient with per-call function fields.
type fakeLedger struct {
	getAccountInfo       func(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	getBalance           func(ctx context.Context, account solana.PublicKey) (*rpc.GetBalanceResult, error)
	getLatestBlockhash   func(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	sendTransaction      func(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	getSignatureStatuses func(ctx context.Context, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

func (f *fakeLedger) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, _ *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	if f.getAccountInfo == nil {
		return nil, errFakeUnhandled
	}
	return f.getAccountInfo(ctx, account)
}

func (f *fakeLedger) GetBalance(ctx context.Context, account solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	if f.getBalance == nil {
		return nil, errFakeUnhandled
	}
	return f.getBalance(ctx, account)
}

func (f *fakeLedger) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if f.getLatestBlockhash == nil {
		return nil, errFakeUnhandled
	}
	return f.getLatestBlockhash(ctx, commitment)
}

func (f *fakeLedger) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	if f.sendTransaction == nil {
		return solana.Signature{}, errFakeUnhandled
	}
	return f.sendTransaction(ctx, tx, opts)
}

func (f *fakeLedger) GetSignatureStatuses(ctx context.Context, _ bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	if f.getSignatureStatuses == nil {
		return nil, errFakeUnhandled
	}
	return f.getSignatureStatuses(ctx, sigs...)
}

// fakeRelay implements RelayClient.
type fakeRelay struct {
	sendBundle func(ctx context.Context, txs []*solana.Transaction) (string, error)
	tipAccount solana.PublicKey
}

func (f *fakeRelay) SendBundle(ctx context.Context, txs []*solana.Transaction) (string, error) {
	if f.sendBundle == nil {
		return "", errFakeUnhandled
	}
	return f.sendBundle(ctx, txs)
}

func (f *fakeRelay) TipAccount() solana.PublicKey {
	return f.tipAccount
}

func newTestMiner(t *testing.T, ledger LedgerClient, cfg Config) *Miner {
	t.Helper()
	if len(cfg.Signers) == 0 {
		cfg.Signers = []solana.PrivateKey{solana.NewWallet().PrivateKey}
	}
	m, err := New(zap.NewNop(), ledger, cfg)
	require.NoError(t, err)
	// no real sleeping in tests
	m.confirmPollInterval = 0
	m.bundleConfirmPollInterval = 0
	m.txRetryInterval = 0
	m.bundleRetryInterval = 0
	return m
}

// accountResult wraps raw account bytes the way the RPC layer delivers them.
func accountResult(t *testing.T, data []byte) *rpc.GetAccountInfoResult {
	t.Helper()
	raw, err := json.Marshal([]string{base64.StdEncoding.EncodeToString(data), "base64"})
	require.NoError(t, err)
	var d rpc.DataBytesOrJSON
	require.NoError(t, json.Unmarshal(raw, &d))
	return &rpc.GetAccountInfoResult{Value: &rpc.Account{Data: &d}}
}

func encodeBorsh(t *testing.T, v interface{}) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(v))
	return buf.Bytes()
}

// encodeAccount serializes a state struct behind its discriminator prefix.
func encodeAccount(t *testing.T, discriminator byte, v interface{}) []byte {
	t.Helper()
	prefix := make([]byte, 8)
	prefix[0] = discriminator
	return append(prefix, encodeBorsh(t, v)...)
}

func blockhashResult(slot uint64) *rpc.GetLatestBlockhashResult {
	return &rpc.GetLatestBlockhashResult{
		RPCContext: rpc.RPCContext{Context: rpc.Context{Slot: slot}},
		Value: &rpc.LatestBlockhashResult{
			Blockhash: solana.HashFromBytes(bytes.Repeat([]byte{7}, 32)),
		},
	}
}

func statusResult(status rpc.ConfirmationStatusType) *rpc.GetSignatureStatusesResult {
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{ConfirmationStatus: status}},
	}
}

func noStatusResult() *rpc.GetSignatureStatusesResult {
	return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}
}
