package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crypt0miester/ore-cli-v2/miner"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Fetch the stake balance of each configured participant",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		m, err := newMiner(logger, nil)
		if err != nil {
			return err
		}

		for _, signer := range m.Signers() {
			proof, err := m.Proof(cmd.Context(), signer.PublicKey())
			if err != nil {
				return fmt.Errorf("fetch proof for %s: %w", signer.PublicKey(), err)
			}
			fmt.Printf("%s: %s ORE\n", signer.PublicKey(), miner.FormatOre(proof.Balance))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
