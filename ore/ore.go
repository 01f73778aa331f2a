// Package ore contains the on-chain bindings for the ORE program: program
// addresses, account state layouts and instruction builders.
package ore

import (
	"github.com/gagliardetto/solana-go"
)

const (
	// BusCount is the number of parallel reward buses the program maintains.
	BusCount = 8

	// EpochDuration is the length of a mining epoch in seconds. A proof can
	// land at most one solution per epoch.
	EpochDuration = 60

	// TokenDecimals is the number of decimals of the ORE mint.
	TokenDecimals = 11
)

var (
	// ProgramID is the ORE v2 program address.
	ProgramID = solana.MustPublicKeyFromBase58("oreV2ZymfyeXgNgBdqMkumTqqAprVqgBWQfoYkrtKWQ")

	// NoopProgramID is the no-op program used to attach the proof address to a
	// transaction for ledger-side authentication of the mine instruction.
	NoopProgramID = solana.MustPublicKeyFromBase58("noop8ytexvkpCuqbf6FB89BSuNemHtPRqaNC31GWivW")

	// BusAddresses holds the PDAs of all reward buses, indexed by bus id.
	BusAddresses [BusCount]solana.PublicKey

	configAddress solana.PublicKey
)

var (
	proofSeed  = []byte("proof")
	busSeed    = []byte("bus")
	configSeed = []byte("config")
)

func init() {
	for i := 0; i < BusCount; i++ {
		addr, _, err := solana.FindProgramAddress([][]byte{busSeed, {byte(i)}}, ProgramID)
		if err != nil {
			panic(err)
		}
		BusAddresses[i] = addr
	}
	addr, _, err := solana.FindProgramAddress([][]byte{configSeed}, ProgramID)
	if err != nil {
		panic(err)
	}
	configAddress = addr
}

// ProofAddress derives the proof account PDA for a participant authority.
func ProofAddress(authority solana.PublicKey) solana.PublicKey {
	addr, _, err := solana.FindProgramAddress([][]byte{proofSeed, authority.Bytes()}, ProgramID)
	if err != nil {
		panic(err)
	}
	return addr
}

// ConfigAddress returns the program config PDA.
func ConfigAddress() solana.PublicKey {
	return configAddress
}
