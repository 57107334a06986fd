package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/spf13/cobra"

	"github.com/minishell/minish/core"
	"github.com/minishell/minish/core/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the shell over SSH",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		log.Println("Initializing server...")
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

		server, err := core.NewServer(configuration, events)
		if err != nil {
			return err
		}

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-shutdown
			log.Println("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Printf("Shutdown error: %v", err)
			}
		}()

		log.Printf("Listening on port %d", configuration.SSHPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
