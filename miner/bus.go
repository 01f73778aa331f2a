package miner

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/crypt0miester/ore-cli-v2/ore"
)

var ErrNoBusAvailable = errors.New("no bus account could be read")

// getBus reads one reward bus account.
func (m *Miner) getBus(ctx context.Context, id int) (*ore.Bus, error) {
	data, err := m.getAccountData(ctx, ore.BusAddresses[id])
	if err != nil {
		return nil, err
	}
	return ore.ParseBus(data)
}

// Busses reads all reward buses concurrently. Failed reads leave a nil slot;
// selection and display both tolerate partial results.
func (m *Miner) Busses(ctx context.Context) []*ore.Bus {
	buses := make([]*ore.Bus, ore.BusCount)
	var wg sync.WaitGroup
	for id := 0; id < ore.BusCount; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			bus, err := m.getBus(ctx, id)
			if err != nil {
				m.log.Debug("Failed to read bus", zap.Int("bus", id), zap.Error(err))
				return
			}
			buses[id] = bus
		}(id)
	}
	wg.Wait()
	return buses
}

// findRichestBus picks the bus with the most claimable rewards. Selection is
// advisory; other clients may pick the same bus in the same epoch.
func (m *Miner) findRichestBus(ctx context.Context) (*ore.Bus, error) {
	return bestBus(m.Busses(ctx))
}

// bestBus returns the bus with maximal rewards among the successfully read
// (non-nil) buses.
func bestBus(buses []*ore.Bus) (*ore.Bus, error) {
	var best *ore.Bus
	for _, bus := range buses {
		if bus == nil {
			continue
		}
		if best == nil || bus.Rewards > best.Rewards {
			best = bus
		}
	}
	if best == nil {
		return nil, ErrNoBusAvailable
	}
	return best, nil
}
