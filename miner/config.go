package miner

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/crypt0miester/ore-cli-v2/ore"
)

// programConfigTTL bounds how long a cached program config is reused. The
// config changes rarely (admin resets), so one fetch covers a whole round of
// participants.
const programConfigTTL = time.Minute

const programConfigKey = "program-config"

// getProgramConfig returns the ORE program config, cached for a short TTL.
func (m *Miner) getProgramConfig(ctx context.Context) (*ore.Config, error) {
	if v, ok := m.configCache.Get(programConfigKey); ok {
		return v.(*ore.Config), nil
	}
	data, err := m.getAccountData(ctx, ore.ConfigAddress())
	if err != nil {
		return nil, err
	}
	cfg, err := ore.ParseConfig(data)
	if err != nil {
		return nil, err
	}
	m.configCache.Set(programConfigKey, cfg, gocache.DefaultExpiration)
	m.log.Debug("Fetched program config",
		zap.Uint64("min_difficulty", cfg.MinDifficulty),
		zap.Uint64("base_reward_rate", cfg.BaseRewardRate),
	)
	return cfg, nil
}
