// Package miner implements the mining pipeline: proof-of-work search, epoch
// scheduling, reward bus selection and transaction/bundle submission.
package miner

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/crypt0miester/ore-cli-v2/ore"
)

var (
	ErrNoSigners   = errors.New("no signer keypairs configured")
	ErrNoFeePayer  = errors.New("no fee payer keypair configured")
	ErrNoRelay     = errors.New("no relay configured")
	ErrMaxRetries  = errors.New("max retries")
	ErrAccountData = errors.New("account has no data")
)

// LedgerClient is the subset of the RPC client the miner depends on. It is
// satisfied by *rpc.Client and is safe for concurrent use.
type LedgerClient interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// RelayClient submits transaction bundles to a block-inclusion relay.
type RelayClient interface {
	SendBundle(ctx context.Context, txs []*solana.Transaction) (string, error)
	TipAccount() solana.PublicKey
}

// Config carries the collaborator inputs of the miner. Signers are the
// participant identities mined concurrently within one round; FeePayer pays
// network fees and relay tips and may be empty for read-only use.
type Config struct {
	Signers     []solana.PrivateKey
	FeePayer    solana.PrivateKey
	PriorityFee uint64
	Relay       RelayClient
}

// Miner drives mining rounds against a single RPC endpoint. The underlying
// client handle is shared read-only across all fan-out operations.
type Miner struct {
	log         *zap.Logger
	rpc         LedgerClient
	signers     []solana.PrivateKey
	feePayer    solana.PrivateKey
	priorityFee uint64
	relay       RelayClient

	configCache *gocache.Cache

	// Retry pacing, overridable in tests.
	confirmPollInterval       time.Duration
	bundleConfirmPollInterval time.Duration
	txRetryInterval           time.Duration
	bundleRetryInterval       time.Duration
}

func New(log *zap.Logger, client LedgerClient, cfg Config) (*Miner, error) {
	if len(cfg.Signers) == 0 {
		return nil, ErrNoSigners
	}
	return &Miner{
		log:         log.Named("miner"),
		rpc:         client,
		signers:     cfg.Signers,
		feePayer:    cfg.FeePayer,
		priorityFee: cfg.PriorityFee,
		relay:       cfg.Relay,

		configCache: gocache.New(programConfigTTL, 2*programConfigTTL),

		confirmPollInterval:       10 * time.Second,
		bundleConfirmPollInterval: 2 * time.Second,
		txRetryInterval:           2 * time.Second,
		bundleRetryInterval:       300 * time.Millisecond,
	}, nil
}

// getAccountData reads an account at confirmed commitment and returns its raw
// data. Absent accounts surface as rpc.ErrNotFound.
func (m *Miner) getAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	res, err := m.rpc.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, err
	}
	if res == nil || res.Value == nil {
		return nil, rpc.ErrNotFound
	}
	data := res.Value.Data.GetBinary()
	if len(data) == 0 {
		return nil, ErrAccountData
	}
	return data, nil
}

// Proof fetches the on-ledger proof record for a participant authority.
func (m *Miner) Proof(ctx context.Context, authority solana.PublicKey) (*ore.Proof, error) {
	data, err := m.getAccountData(ctx, ore.ProofAddress(authority))
	if err != nil {
		return nil, err
	}
	return ore.ParseProof(data)
}

// Signers returns the participant identities this miner operates.
func (m *Miner) Signers() []solana.PrivateKey {
	return m.signers
}
