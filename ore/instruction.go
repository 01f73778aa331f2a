package ore

import (
	"github.com/gagliardetto/solana-go"

	"github.com/crypt0miester/ore-cli-v2/drillx"
)

// Instruction opcodes.
const (
	opMine byte = 2
	opOpen byte = 3
)

// Open creates the proof account for a participant. The payer funds the
// account rent.
func Open(signer, miner, payer solana.PublicKey) solana.Instruction {
	proof := ProofAddress(signer)
	return solana.NewInstruction(
		ProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(signer, true, true),
			solana.NewAccountMeta(miner, false, false),
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(proof, true, false),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
			solana.NewAccountMeta(solana.SysVarSlotHashesPubkey, false, false),
		},
		[]byte{opOpen},
	)
}

// Auth attaches a proof address to the transaction through the no-op program.
// The ledger inspects it when validating the mine instruction.
func Auth(proof solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		NoopProgramID,
		solana.AccountMetaSlice{},
		proof.Bytes(),
	)
}

// Mine submits a solution for the authority's current challenge, drawing the
// reward from the given bus.
func Mine(signer, authority, bus solana.PublicKey, solution drillx.Solution) solana.Instruction {
	proof := ProofAddress(authority)
	data := make([]byte, 0, 1+len(solution.Digest)+len(solution.Nonce))
	data = append(data, opMine)
	data = append(data, solution.Digest[:]...)
	data = append(data, solution.Nonce[:]...)
	return solana.NewInstruction(
		ProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(signer, true, true),
			solana.NewAccountMeta(bus, true, false),
			solana.NewAccountMeta(ConfigAddress(), false, false),
			solana.NewAccountMeta(proof, true, false),
			solana.NewAccountMeta(solana.SysVarInstructionsPubkey, false, false),
			solana.NewAccountMeta(solana.SysVarSlotHashesPubkey, false, false),
		},
		data,
	)
}
