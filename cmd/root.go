/*
Copyright © 2025 songwish
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assistant-be",
	Short: "Shopping assistant backend",
	Long: `Backend for the storefront shopping assistant.

It answers customer questions from a markdown knowledge base, grounds
responses in the customer's commerce account, and recommends products
from the live catalog. Run "start" to serve the API or "index" to
build the retrieval index offline.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}
