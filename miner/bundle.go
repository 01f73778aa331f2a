package miner

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/crypt0miester/ore-cli-v2/metrics"
)

const (
	// maxInstructionsPerTx caps how many payload instructions share one
	// transaction before the compute-budget and tip augmentation.
	maxInstructionsPerTx = 2

	// bundleComputeUnitLimit is requested for every bundled transaction.
	bundleComputeUnitLimit = 500_000
)

// SendAndConfirmBundle partitions ixs into transactions, attaches the relay
// tip, and submits the group atomically through the relay. The first
// transaction's signature is the bundle's canonical confirmation handle.
func (m *Miner) SendAndConfirmBundle(ctx context.Context, ixs []solana.Instruction, tipAmount uint64, skipConfirm bool) (solana.Signature, error) {
	if m.relay == nil {
		return solana.Signature{}, ErrNoRelay
	}
	if len(m.feePayer) == 0 {
		return solana.Signature{}, ErrNoFeePayer
	}
	log := m.log.Named("bundle")

	// One finalized blockhash is shared by every transaction in the bundle.
	recent, err := m.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("fetch blockhash: %w", err)
	}

	txs, err := buildBundle(ixs, recent.Value.Blockhash, m.feePayer, m.signers, tipAmount, m.relay.TipAccount())
	if err != nil {
		return solana.Signature{}, err
	}
	sig := txs[0].Signatures[0]
	log.Info("Built bundle", zap.Int("transactions", len(txs)), zap.Stringer("signature", sig))

	confirmSleep := m.bundleConfirmPollInterval
	for attempt := 0; attempt <= gatewayRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(m.bundleRetryInterval)
		}

		bundleID, err := m.relay.SendBundle(ctx, txs)
		if err != nil {
			log.Warn("Failed to send bundle", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		metrics.IncBundlesSubmitted()
		log.Info("Bundle accepted by relay", zap.String("bundle_id", bundleID), zap.Int("attempt", attempt))

		if skipConfirm {
			return sig, nil
		}
		if m.pollConfirmation(ctx, log, sig, &confirmSleep) {
			metrics.IncBundlesLanded()
			log.Info("Bundle landed", zap.Stringer("signature", sig))
			return sig, nil
		}
		log.Warn("Bundle did not land", zap.Int("attempt", attempt))
	}
	return solana.Signature{}, fmt.Errorf("send bundle: %w", ErrMaxRetries)
}

// buildBundle chunks instructions into transactions of at most
// maxInstructionsPerTx, appending a compute-budget instruction to each and the
// relay tip transfer to the chunks that reference the fee payer. All
// transactions share one blockhash; each is signed by exactly the identities
// its instruction set requires, with the fee payer paying every transaction.
func buildBundle(
	ixs []solana.Instruction,
	blockhash solana.Hash,
	feePayer solana.PrivateKey,
	signers []solana.PrivateKey,
	tipAmount uint64,
	tipAccount solana.PublicKey,
) ([]*solana.Transaction, error) {
	feePayerPub := feePayer.PublicKey()
	keys := keyring(append([]solana.PrivateKey{feePayer}, signers...)...)

	var txs []*solana.Transaction
	for start := 0; start < len(ixs); start += maxInstructionsPerTx {
		end := start + maxInstructionsPerTx
		if end > len(ixs) {
			end = len(ixs)
		}
		chunk := append([]solana.Instruction{}, ixs[start:end]...)
		chunk = append(chunk, computebudget.NewSetComputeUnitLimitInstruction(bundleComputeUnitLimit).Build())

		// The tip rides with the transaction(s) that touch the fee payer so
		// the relay sees the payment inside the atomic group it prices.
		if referencesAccount(chunk[:end-start], feePayerPub) {
			chunk = append(chunk, system.NewTransferInstruction(tipAmount, feePayerPub, tipAccount).Build())
		}

		tx, err := solana.NewTransaction(chunk, blockhash, solana.TransactionPayer(feePayerPub))
		if err != nil {
			return nil, fmt.Errorf("build bundle transaction: %w", err)
		}
		if _, err := tx.Sign(keys); err != nil {
			return nil, fmt.Errorf("sign bundle transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// referencesAccount reports whether any instruction lists pub among its
// accounts, signer or not.
func referencesAccount(ixs []solana.Instruction, pub solana.PublicKey) bool {
	for _, ix := range ixs {
		for _, meta := range ix.Accounts() {
			if meta.PublicKey.Equals(pub) {
				return true
			}
		}
	}
	return false
}
