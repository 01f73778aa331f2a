package miner

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/crypt0miester/ore-cli-v2/metrics"
	"github.com/crypt0miester/ore-cli-v2/ore"
)

// Register ensures every participant has an on-ledger proof account, creating
// missing ones. Safe to call on every start; existing accounts are left
// untouched.
func (m *Miner) Register(ctx context.Context) error {
	for _, signer := range m.signers {
		if err := m.register(ctx, signer); err != nil {
			return fmt.Errorf("register %s: %w", signer.PublicKey(), err)
		}
	}
	return nil
}

func (m *Miner) register(ctx context.Context, signer solana.PrivateKey) error {
	authority := signer.PublicKey()
	proofAddress := ore.ProofAddress(authority)

	_, err := m.getAccountData(ctx, proofAddress)
	if err == nil {
		return nil
	}
	if !errors.Is(err, rpc.ErrNotFound) {
		return err
	}

	m.log.Info("Creating proof account",
		zap.Stringer("authority", authority),
		zap.Stringer("proof", proofAddress),
	)
	ixs := []solana.Instruction{
		computebudget.NewSetComputeUnitPriceInstruction(m.priorityFee).Build(),
		ore.Open(authority, authority, authority),
	}
	if _, err := m.SendAndConfirm(ctx, ixs, signer, false); err != nil {
		return err
	}
	metrics.IncAccountsRegistered()
	return nil
}
