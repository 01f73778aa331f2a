package ore

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Account discriminators, stored in the first byte of the 8-byte prefix.
const (
	busDiscriminator    = 100
	configDiscriminator = 101
	proofDiscriminator  = 102

	discriminatorLen = 8
)

var ErrInvalidAccountData = errors.New("invalid account data")

// Proof is the per-participant mining state tracked by the program. The
// authoritative copy lives on the ledger; it is read each round and never
// mutated locally.
type Proof struct {
	Authority    solana.PublicKey
	Balance      uint64
	Challenge    [32]byte
	LastHash     [32]byte
	LastHashAt   int64
	LastStakeAt  int64
	Miner        solana.PublicKey
	TotalHashes  uint64
	TotalRewards uint64
}

// Bus is one of the BusCount reward pools a mine instruction can draw from.
type Bus struct {
	ID                 uint64
	Rewards            uint64
	TheoreticalRewards uint64
	TopBalance         uint64
}

// Config is the program-wide mining configuration.
type Config struct {
	BaseRewardRate uint64
	LastResetAt    int64
	MinDifficulty  uint64
	TopBalance     uint64
}

func ParseProof(data []byte) (*Proof, error) {
	body, err := accountBody(data, proofDiscriminator)
	if err != nil {
		return nil, fmt.Errorf("proof: %w", err)
	}
	var p Proof
	if err := bin.NewBorshDecoder(body).Decode(&p); err != nil {
		return nil, fmt.Errorf("proof: %w", err)
	}
	return &p, nil
}

func ParseBus(data []byte) (*Bus, error) {
	body, err := accountBody(data, busDiscriminator)
	if err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	var b Bus
	if err := bin.NewBorshDecoder(body).Decode(&b); err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	return &b, nil
}

func ParseConfig(data []byte) (*Config, error) {
	body, err := accountBody(data, configDiscriminator)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var c Config
	if err := bin.NewBorshDecoder(body).Decode(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &c, nil
}

func accountBody(data []byte, discriminator byte) ([]byte, error) {
	if len(data) < discriminatorLen {
		return nil, ErrInvalidAccountData
	}
	if data[0] != discriminator {
		return nil, fmt.Errorf("%w: discriminator %d, want %d", ErrInvalidAccountData, data[0], discriminator)
	}
	return data[discriminatorLen:], nil
}
