package main

import "github.com/spf13/cobra"

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List catalogued reference tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := apiClient(cmd).Tables(cmd.Context())
			if err != nil {
				return err
			}
			return printOutput(cmd, tables)
		},
	}
}
