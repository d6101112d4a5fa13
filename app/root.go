// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lootledger",
	Short: "Lootledger is a web-based party inventory tracker",
	Long: `Lootledger is a web-based party inventory tracker that lets players
sign in with their Discord account and manage shared loot and items.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
