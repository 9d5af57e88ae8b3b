/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "polyglot",
	Short: "Peer-to-peer chat with live translation",
	Long:  "Polyglot is a terminal chat client that relays messages between peers and translates incoming messages into your language.",
	Run: func(cmd *cobra.Command, args []string) {
		runChat()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
