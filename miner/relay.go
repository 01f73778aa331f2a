package miner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/ybbus/jsonrpc/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

var ErrEmptyTipPool = errors.New("relay tip account pool is empty")

// defaultTipAccounts is the relay's published tip account pool. A submission
// tips one of these, chosen at random, to be considered for inclusion.
var defaultTipAccounts = []string{
	"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
	"HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe",
	"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
	"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49",
	"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh",
	"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt",
	"DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL",
	"3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT",
}

// RelayConfig is the optional YAML override for the relay endpoint and its tip
// account pool.
type RelayConfig struct {
	URL         string   `yaml:"url"`
	TipAccounts []string `yaml:"tip_accounts"`
}

// LoadRelayConfig parses a relay config from a file.
func LoadRelayConfig(file string) (*RelayConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var cfg RelayConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RelayBackend submits bundles to a JSON-RPC relay endpoint. Submissions are
// rate limited; relays throttle bundle sends per source.
type RelayBackend struct {
	log         *zap.Logger
	client      jsonrpc.RPCClient
	limiter     *rate.Limiter
	tipAccounts []solana.PublicKey
}

// NewRelayBackend wires a relay client for the given endpoint. tipAccounts may
// be nil to use the default pool.
func NewRelayBackend(log *zap.Logger, url string, tipAccounts []string) (*RelayBackend, error) {
	if tipAccounts == nil {
		tipAccounts = defaultTipAccounts
	}
	if len(tipAccounts) == 0 {
		return nil, ErrEmptyTipPool
	}
	pool := make([]solana.PublicKey, 0, len(tipAccounts))
	for _, acc := range tipAccounts {
		pub, err := solana.PublicKeyFromBase58(acc)
		if err != nil {
			return nil, fmt.Errorf("tip account %q: %w", acc, err)
		}
		pool = append(pool, pub)
	}
	return &RelayBackend{
		log:         log.Named("relay"),
		client:      jsonrpc.NewClient(url),
		limiter:     rate.NewLimiter(rate.Limit(1), 1),
		tipAccounts: pool,
	}, nil
}

// SendBundle submits the signed transactions as one atomic bundle and returns
// the relay's bundle identifier.
func (r *RelayBackend) SendBundle(ctx context.Context, txs []*solana.Transaction) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}

	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return "", fmt.Errorf("serialize transaction: %w", err)
		}
		encoded = append(encoded, base58.Encode(raw))
	}

	res, err := r.client.Call(ctx, "sendBundle", [][]string{encoded})
	if err != nil {
		return "", fmt.Errorf("relay call: %w", err)
	}
	if res.Error != nil {
		return "", fmt.Errorf("relay error: %w", res.Error)
	}
	bundleID, err := res.GetString()
	if err != nil {
		return "", fmt.Errorf("malformed relay response: %w", err)
	}
	r.log.Debug("Relay accepted bundle", zap.String("bundle_id", bundleID), zap.Int("transactions", len(txs)))
	return bundleID, nil
}

// TipAccount draws a tip account uniformly at random from the pool.
func (r *RelayBackend) TipAccount() solana.PublicKey {
	return r.tipAccounts[rand.Intn(len(r.tipAccounts))]
}
