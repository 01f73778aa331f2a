package miner

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/crypt0miester/ore-cli-v2/ore"
)

// clock mirrors the ledger clock sysvar layout.
type clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

// getClock reads the ledger's current clock. Transient read failures are
// retried with a short bounded backoff.
func (m *Miner) getClock(ctx context.Context) (*clock, error) {
	back := backoff.NewExponentialBackOff()
	back.MaxInterval = 3 * time.Second
	back.MaxElapsedTime = 12 * time.Second

	var c clock
	err := backoff.Retry(func() error {
		data, err := m.getAccountData(ctx, solana.SysVarClockPubkey)
		if err != nil {
			return err
		}
		return bin.NewBorshDecoder(data).Decode(&c)
	}, backoff.WithContext(back, ctx))
	if err != nil {
		return nil, fmt.Errorf("read clock sysvar: %w", err)
	}
	return &c, nil
}

// cutoffSeconds returns how many seconds remain until a proof's next solution
// becomes eligible for submission. Never negative.
func cutoffSeconds(lastHashAt, now, buffer int64) int64 {
	wait := lastHashAt + ore.EpochDuration - buffer - now
	if wait < 0 {
		return 0
	}
	return wait
}

// getCutoff computes the submission wait for a proof against the ledger clock.
func (m *Miner) getCutoff(ctx context.Context, proof *ore.Proof, buffer int64) (time.Duration, error) {
	c, err := m.getClock(ctx)
	if err != nil {
		return 0, err
	}
	return time.Duration(cutoffSeconds(proof.LastHashAt, c.UnixTimestamp, buffer)) * time.Second, nil
}
