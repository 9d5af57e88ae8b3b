/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"polyglot/pkg/config"
	"polyglot/pkg/logger"
	"polyglot/pkg/ui"

	"github.com/spf13/cobra"
)

var logFilePath string

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the chat client",
	Long:  "Loads Polyglot configuration and starts the terminal chat client. The client owns the terminal, so logs go to the configured file or nowhere.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args
		runChat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&logFilePath, "log-file", "", "append logs to this file instead of discarding them")
}

func runChat() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		return
	}

	log, err := chatLogger(cfg, logFilePath)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		return
	}
	slog.SetDefault(log)

	if err := ui.Run(context.Background(), cfg, log); err != nil {
		fmt.Printf("chat client failed: %v\n", err)
	}
}

// chatLogger resolves where chat-mode logs go. The TUI owns stderr, so
// without a file the logs are discarded rather than smeared over the screen.
func chatLogger(cfg *config.Config, flagPath string) (*slog.Logger, error) {
	if path := strings.TrimSpace(flagPath); path != "" {
		cfg.Logging.File = path
	}

	if strings.TrimSpace(cfg.Logging.File) == "" {
		return logger.Discard(), nil
	}

	return logger.New(cfg.Logging)
}
