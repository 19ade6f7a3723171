package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "reftabctl", Short: "Manage reference tables over the API"}

func init() {
	rootCmd.PersistentFlags().String("api", "http://localhost:8080", "API base URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for the API")
	rootCmd.PersistentFlags().String("tenant", "", "tenant ID sent as X-Tenant-ID")
	rootCmd.PersistentFlags().String("output", "table", "Output format (table|json)")

	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newToggleCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newOptionsCmd())
	rootCmd.AddCommand(newBusinessesCmd())
	rootCmd.AddCommand(newDBCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
