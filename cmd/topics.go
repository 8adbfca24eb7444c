package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the topics the logger subscribes to",
	Args:  cobra.NoArgs,
	RunE:  runTopics,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	for _, t := range cfg.Topics {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), t); err != nil {
			return err
		}
	}
	return nil
}
