package miner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/crypt0miester/ore-cli-v2/drillx"
	"github.com/crypt0miester/ore-cli-v2/metrics"
	"github.com/crypt0miester/ore-cli-v2/ore"
)

// MineOptions are the operator inputs of the mining loop.
type MineOptions struct {
	// Threads is the hash search worker count.
	Threads uint64

	// BufferTime is subtracted from the epoch cutoff so the bundle is in
	// flight before the proof's epoch boundary, in seconds.
	BufferTime int64

	// MinDifficulty overrides the program config's difficulty floor when
	// non-zero.
	MinDifficulty uint32

	// TipAmount is the relay incentive per bundle, in lamports.
	TipAmount uint64
}

// Mine registers all participants and then runs mining rounds until the
// context is cancelled. A failed round is logged and the next one starts with
// fresh proof state; solutions are never carried across rounds.
func (m *Miner) Mine(ctx context.Context, opt MineOptions) error {
	if m.relay == nil {
		return ErrNoRelay
	}
	if len(m.feePayer) == 0 {
		return ErrNoFeePayer
	}
	if cores := uint64(runtime.NumCPU()); opt.Threads > cores {
		m.log.Warn("Thread count exceeds available cores",
			zap.Uint64("threads", opt.Threads),
			zap.Uint64("cores", cores),
		)
	}

	if err := m.Register(ctx); err != nil {
		return fmt.Errorf("registration gate: %w", err)
	}
	m.log.Info("Starting mining loop",
		zap.Int("participants", len(m.signers)),
		zap.Stringer("fee_payer", m.feePayer.PublicKey()),
		zap.Uint64("threads", opt.Threads),
	)

	for round := uint64(1); ; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		metrics.IncRoundsStarted()
		if err := m.mineRound(ctx, round, opt); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.IncRoundsFailed()
			m.log.Warn("Round failed, starting next round", zap.Uint64("round", round), zap.Error(err))
		}
	}
}

// mineRound runs one full round: fetch -> search (per participant) -> wait ->
// select -> submit.
func (m *Miner) mineRound(ctx context.Context, round uint64, opt MineOptions) error {
	log := m.log.With(zap.Uint64("round", round))
	start := time.Now()

	proofs, err := m.fetchProofs(ctx)
	if err != nil {
		return err
	}
	m.logBalances(ctx, log, proofs)

	minDifficulty, err := m.minDifficulty(ctx, opt)
	if err != nil {
		return err
	}

	// Every solution in this round is computed against the challenge read
	// above; anything staler is rejected by the ledger.
	solutions := make([]drillx.Solution, len(m.signers))
	for i := range m.signers {
		solutions[i] = m.findHash(proofs[i].Challenge, 0, opt.Threads, minDifficulty)
		metrics.IncSolutionsFound()
	}
	log.Info("Hash generation finished", zap.Duration("took", time.Since(start)))

	cutoff, err := m.getCutoff(ctx, proofs[len(proofs)-1], opt.BufferTime)
	if err != nil {
		return err
	}
	if remaining := cutoff - time.Since(start); remaining > 0 {
		if err := m.waitForCutoff(ctx, log, remaining); err != nil {
			return err
		}
	}

	bus, err := m.findRichestBus(ctx)
	if err != nil {
		return err
	}
	log.Info("Selected reward bus",
		zap.Uint64("bus", bus.ID),
		zap.String("rewards", FormatOre(bus.Rewards)),
	)

	ixs := make([]solana.Instruction, 0, 2*len(m.signers))
	for i, signer := range m.signers {
		authority := signer.PublicKey()
		ixs = append(ixs,
			ore.Auth(ore.ProofAddress(authority)),
			ore.Mine(authority, authority, ore.BusAddresses[bus.ID], solutions[i]),
		)
	}

	if _, err := m.SendAndConfirmBundle(ctx, ixs, opt.TipAmount, false); err != nil {
		return err
	}
	log.Info("Round complete", zap.Duration("took", time.Since(start)))
	return nil
}

// fetchProofs reads every participant's proof record concurrently. All reads
// must succeed; a missing challenge would make the whole round unsubmittable.
func (m *Miner) fetchProofs(ctx context.Context) ([]*ore.Proof, error) {
	proofs := make([]*ore.Proof, len(m.signers))
	errs := make([]error, len(m.signers))
	var wg sync.WaitGroup
	for i, signer := range m.signers {
		wg.Add(1)
		go func(i int, authority solana.PublicKey) {
			defer wg.Done()
			proofs[i], errs[i] = m.Proof(ctx, authority)
		}(i, signer.PublicKey())
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("fetch proof for %s: %w", m.signers[i].PublicKey(), err)
		}
	}
	return proofs, nil
}

// logBalances reports stake and fee balances per participant. Failed balance
// reads are display-only and dropped.
func (m *Miner) logBalances(ctx context.Context, log *zap.Logger, proofs []*ore.Proof) {
	sols := make([]uint64, len(m.signers))
	var wg sync.WaitGroup
	for i, signer := range m.signers {
		wg.Add(1)
		go func(i int, authority solana.PublicKey) {
			defer wg.Done()
			res, err := m.rpc.GetBalance(ctx, authority, rpc.CommitmentConfirmed)
			if err != nil {
				log.Debug("Failed to read balance", zap.Stringer("authority", authority), zap.Error(err))
				return
			}
			sols[i] = res.Value
		}(i, signer.PublicKey())
	}
	wg.Wait()

	for i, signer := range m.signers {
		log.Info("Participant",
			zap.Stringer("authority", signer.PublicKey()),
			zap.String("stake_ore", FormatOre(proofs[i].Balance)),
			zap.String("balance_sol", FormatSol(sols[i])),
		)
	}
}

// minDifficulty resolves the search difficulty floor: the operator override if
// set, the (cached) program config otherwise.
func (m *Miner) minDifficulty(ctx context.Context, opt MineOptions) (uint32, error) {
	if opt.MinDifficulty > 0 {
		return opt.MinDifficulty, nil
	}
	cfg, err := m.getProgramConfig(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve min difficulty: %w", err)
	}
	return uint32(cfg.MinDifficulty), nil
}

// waitForCutoff blocks until the solution set becomes eligible for
// submission, logging the countdown.
func (m *Miner) waitForCutoff(ctx context.Context, log *zap.Logger, wait time.Duration) error {
	log.Info("Waiting before submitting", zap.Duration("wait", wait.Round(time.Second)))
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return nil
			}
			log.Info("Time remaining", zap.Duration("remaining", remaining.Round(time.Second)))
		}
	}
}
