package cmd

import (
	"os"
	"os/user"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/minishell/minish/core"
	"github.com/minishell/minish/core/logger"
	"github.com/minishell/minish/core/ttylog"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the shell on the current terminal",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		appLog, err := configuration.OpenAppLog()
		if err != nil {
			return err
		}
		defer appLog.Close()
		events := logger.NewJsonLinesLogRecorder(appLog)

		username := os.Getenv("USER")
		if u, err := user.Current(); err == nil {
			username = u.Username
		}

		fd := os.Stdin.Fd()
		info := core.SessionInfo{
			Username:   username,
			RemoteAddr: "local",
			Term:       os.Getenv("TERM"),
			IsPTY:      isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		}

		stdio := ttylog.Stdio{
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		}

		return core.RunSession(configuration, events, stdio, info)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
