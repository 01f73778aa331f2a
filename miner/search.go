package miner

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crypt0miester/ore-cli-v2/drillx"
)

// deadlineCheckInterval is how many nonces a worker hashes between deadline
// checks, to keep timing overhead out of the hot loop.
const deadlineCheckInterval = 100

// progressInterval throttles the advisory progress log from worker 0.
const progressInterval = 5 * time.Second

type searchResult struct {
	nonce      uint64
	difficulty uint32
	hash       drillx.Hash
}

// nonceRange returns the contiguous slice of the 64-bit nonce space assigned
// to worker i of n. Ranges never overlap; the last range absorbs the division
// remainder.
func nonceRange(i, n uint64) (start, end uint64) {
	size := math.MaxUint64 / n
	start = size * i
	if i == n-1 {
		return start, math.MaxUint64
	}
	return start, start + size
}

// findHash scans the nonce space in parallel and returns the best solution
// found. Workers run past the deadline until their local best clears
// minDifficulty, so the search always terminates with a solution at least that
// hard. A cutoff of 0 means the deadline is already expired and only the
// difficulty floor applies.
func (m *Miner) findHash(challenge [32]byte, cutoff time.Duration, threads uint64, minDifficulty uint32) drillx.Solution {
	deadline := time.Now().Add(cutoff)

	results := make([]searchResult, threads)
	var wg sync.WaitGroup
	for i := uint64(0); i < threads; i++ {
		wg.Add(1)
		go func(worker uint64) {
			defer wg.Done()
			results[worker] = m.searchRange(worker, threads, challenge, deadline, minDifficulty)
		}(i)
	}
	wg.Wait()

	best := results[0]
	for _, r := range results[1:] {
		if r.difficulty > best.difficulty {
			best = r
		}
	}
	m.log.Info("Best hash found",
		zap.Uint32("difficulty", best.difficulty),
		zap.Uint64("nonce", best.nonce),
	)
	return drillx.NewSolution(best.hash, best.nonce)
}

// searchRange is the per-worker scan. Each worker owns a private solver
// workspace; the only shared inputs are the read-only challenge and deadline.
func (m *Miner) searchRange(worker, threads uint64, challenge [32]byte, deadline time.Time, minDifficulty uint32) searchResult {
	solver := drillx.NewSolver()
	nonce, _ := nonceRange(worker, threads)

	best := searchResult{nonce: nonce}
	lastProgress := time.Now()
	for {
		hx := solver.Solve(challenge, nonce)
		if d := hx.Difficulty(); d > best.difficulty {
			best = searchResult{nonce: nonce, difficulty: d, hash: hx}
		}

		if nonce%deadlineCheckInterval == 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				if best.difficulty > minDifficulty {
					break
				}
			} else if worker == 0 && time.Since(lastProgress) >= progressInterval {
				// Advisory only; a single worker reports for the pool.
				m.log.Info("Mining...", zap.Duration("remaining", remaining.Round(time.Second)))
				lastProgress = time.Now()
			}
		}

		nonce++
	}
	return best
}
