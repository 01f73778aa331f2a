package miner

import (
	"math/big"

	"github.com/crypt0miester/ore-cli-v2/ore"
)

const lamportsPerSol = 1_000_000_000

var (
	oreDivisor = new(big.Float).SetUint64(pow10(ore.TokenDecimals))
	solDivisor = new(big.Float).SetUint64(lamportsPerSol)
)

func pow10(n int) uint64 {
	v := uint64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// FormatOre renders a raw ORE amount in whole tokens.
func FormatOre(amount uint64) string {
	f := new(big.Float).SetUint64(amount)
	return f.Quo(f, oreDivisor).Text('f', ore.TokenDecimals)
}

// FormatSol renders lamports in SOL.
func FormatSol(lamports uint64) string {
	f := new(big.Float).SetUint64(lamports)
	return f.Quo(f, solDivisor).Text('f', 9)
}
