package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/minishell/minish/core/ttylog"
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore recorded shell sessions",
}

var idleTimeLimit time.Duration

var logsPlayCmd = &cobra.Command{
	Use:   "play SESSION_LOG",
	Short: "Replay a session recording in real time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

var logsCatCmd = &cobra.Command{
	Use:   "cat SESSION_LOG",
	Short: "Dump a session recording without timing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

func init() {
	logsPlayCmd.Flags().DurationVar(&idleTimeLimit, "idle-time-limit", 2*time.Second, "maximum pause between replayed events")

	logsCmd.AddCommand(logsPlayCmd)
	logsCmd.AddCommand(logsCatCmd)
	rootCmd.AddCommand(logsCmd)
}
