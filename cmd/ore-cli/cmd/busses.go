package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crypt0miester/ore-cli-v2/miner"
)

var bussesCmd = &cobra.Command{
	Use:   "busses",
	Short: "Fetch the reward balance of each bus",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		m, err := newMiner(logger, nil)
		if err != nil {
			return err
		}

		for id, bus := range m.Busses(cmd.Context()) {
			if bus == nil {
				fmt.Printf("Bus %d: unavailable\n", id)
				continue
			}
			fmt.Printf("Bus %d: %s ORE\n", bus.ID, miner.FormatOre(bus.Rewards))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bussesCmd)
}
