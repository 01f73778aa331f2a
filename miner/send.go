package miner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/crypt0miester/ore-cli-v2/metrics"
)

const (
	// rpcRetries is passed to the node's own send queue; resubmission is
	// handled here, not by the node.
	rpcRetries uint = 1

	// gatewayRetries bounds resubmissions with a fresh blockhash; the total
	// attempt count is gatewayRetries+1.
	gatewayRetries = 4

	// confirmRetries bounds status polls per submission attempt.
	confirmRetries = 4
)

// ErrSignatureMismatch means the node acknowledged a signature that is not the
// one computed locally. That is an integrity failure, never retried.
var ErrSignatureMismatch = errors.New("rpc returned mismatched signature")

// signedTx is one submission attempt: a transaction bound to a blockhash and
// the slot it was fetched at.
type signedTx struct {
	tx   *solana.Transaction
	slot uint64
}

// SendAndConfirm builds, signs, sends and confirms a transaction carrying ixs,
// paid and signed by signer. Each attempt runs build -> send -> poll; an
// exhausted poll rebuilds against a fresh blockhash, up to the gateway bound.
func (m *Miner) SendAndConfirm(ctx context.Context, ixs []solana.Instruction, signer solana.PrivateKey, skipConfirm bool) (solana.Signature, error) {
	log := m.log.Named("send").With(zap.Stringer("signer", signer.PublicKey()))

	confirmSleep := m.confirmPollInterval
	for attempt := 0; attempt <= gatewayRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(m.txRetryInterval)
		}
		log.Info("Submitting transaction", zap.Int("attempt", attempt))

		stx, err := m.buildTransaction(ctx, ixs, signer)
		if err != nil {
			log.Warn("Failed to build transaction", zap.Error(err))
			continue
		}

		sig, err := m.sendTransaction(ctx, stx)
		if err != nil {
			if errors.Is(err, ErrSignatureMismatch) {
				return solana.Signature{}, err
			}
			log.Warn("Failed to send transaction", zap.Error(err))
			continue
		}
		log.Info("Transaction sent", zap.Stringer("signature", sig))

		if skipConfirm {
			return sig, nil
		}
		if m.pollConfirmation(ctx, log, sig, &confirmSleep) {
			log.Info("Transaction landed", zap.Stringer("signature", sig))
			return sig, nil
		}
		log.Warn("Transaction did not land", zap.Stringer("signature", sig))
	}
	return solana.Signature{}, fmt.Errorf("send transaction: %w", ErrMaxRetries)
}

// buildTransaction fetches a recent blockhash at confirmed commitment and
// returns the signed transaction together with the fetch slot.
func (m *Miner) buildTransaction(ctx context.Context, ixs []solana.Instruction, signer solana.PrivateKey) (*signedTx, error) {
	recent, err := m.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(ixs, recent.Value.Blockhash, solana.TransactionPayer(signer.PublicKey()))
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	if _, err := tx.Sign(keyring(signer)); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return &signedTx{tx: tx, slot: recent.Context.Slot}, nil
}

// sendTransaction submits with preflight disabled, pinned to the blockhash
// fetch slot. The acknowledged signature must match the local one.
func (m *Miner) sendTransaction(ctx context.Context, stx *signedTx) (solana.Signature, error) {
	maxRetries := rpcRetries
	minSlot := stx.slot
	sig, err := m.rpc.SendTransactionWithOpts(ctx, stx.tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentProcessed,
		MaxRetries:          &maxRetries,
		MinContextSlot:      &minSlot,
	})
	if err != nil {
		return solana.Signature{}, err
	}
	metrics.IncTransactionsSent()
	if sig != stx.tx.Signatures[0] {
		return solana.Signature{}, fmt.Errorf("%w: got %s, want %s", ErrSignatureMismatch, sig, stx.tx.Signatures[0])
	}
	return sig, nil
}

// pollConfirmation polls the signature status up to confirmRetries times.
// "confirmed" and "finalized" are terminal; "processed" tightens the poll
// interval; missing statuses and transport errors keep polling.
func (m *Miner) pollConfirmation(ctx context.Context, log *zap.Logger, sig solana.Signature, sleep *time.Duration) bool {
	for i := 0; i < confirmRetries; i++ {
		time.Sleep(*sleep)

		res, err := m.rpc.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			log.Warn("Failed to poll signature status", zap.Error(err))
			continue
		}
		if len(res.Value) == 0 || res.Value[0] == nil {
			log.Debug("No status yet", zap.Stringer("signature", sig))
			continue
		}

		switch res.Value[0].ConfirmationStatus {
		case rpc.ConfirmationStatusProcessed:
			// Confirmation is near, poll faster.
			*sleep = time.Second
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return true
		}
	}
	return false
}

// keyring resolves the private keys a transaction's signature set requires.
func keyring(keys ...solana.PrivateKey) func(solana.PublicKey) *solana.PrivateKey {
	byPub := make(map[solana.PublicKey]*solana.PrivateKey, len(keys))
	for i := range keys {
		byPub[keys[i].PublicKey()] = &keys[i]
	}
	return func(pub solana.PublicKey) *solana.PrivateKey {
		return byPub[pub]
	}
}
