package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/minishell/minish/core/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration directory",
	Long: `Creates a configuration file, session log directory, and host key
in the directory given by --config. Existing files are left alone.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.OutOrStdout(), "", 0)
		return config.Initialize(cfgPath, logger)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
