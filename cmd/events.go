package cmd

import (
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/minishell/minish/core/logger"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Work with the structured event log",
}

func eachAppLogEntry(handler func(le *logger.LogEntry)) error {
	configuration, err := loadConfig()
	if err != nil {
		return err
	}

	appLog, err := configuration.ReadAppLog()
	if err != nil {
		return err
	}
	defer appLog.Close()

	return logger.ReadJSONLinesLog(appLog, handler)
}

var eventsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize logged events",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var report logger.Report
		if err := eachAppLogEntry(report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(&report)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var eventsSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Group logged events by session",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var report logger.InteractionReport
		if err := eachAppLogEntry(report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(&report)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	eventsCmd.AddCommand(eventsReportCmd)
	eventsCmd.AddCommand(eventsSessionsCmd)
	rootCmd.AddCommand(eventsCmd)
}
