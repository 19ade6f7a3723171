package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var businessID string
	cmd := &cobra.Command{
		Use:   "list [table]",
		Short: "List items of a reference table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := apiClient(cmd).ListItems(cmd.Context(), args[0], businessID)
			if err != nil {
				return err
			}
			return printOutput(cmd, items)
		},
	}
	cmd.Flags().StringVar(&businessID, "business", "", "business scope")
	return cmd
}

func newAddCmd() *cobra.Command {
	var businessID, relationID string
	cmd := &cobra.Command{
		Use:   "add [table] [value]",
		Short: "Add a reference item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := apiClient(cmd).AddItem(cmd.Context(), args[0], args[1], businessID, relationID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (id %s)\n", it.Value, it.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&businessID, "business", "", "business scope")
	cmd.Flags().StringVar(&relationID, "relation", "", "parent entity ID for relation dependent tables")
	return cmd
}

func newRenameCmd() *cobra.Command {
	var businessID string
	cmd := &cobra.Command{
		Use:   "rename [table] [id] [value]",
		Short: "Rename a reference item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := apiClient(cmd).RenameItem(cmd.Context(), args[0], args[1], args[2], businessID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", it.ID, it.Value)
			return nil
		},
	}
	cmd.Flags().StringVar(&businessID, "business", "", "business scope")
	return cmd
}

func newToggleCmd() *cobra.Command {
	var businessID string
	cmd := &cobra.Command{
		Use:   "toggle [table] [id]",
		Short: "Flip a reference item's active flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := apiClient(cmd).ToggleItem(cmd.Context(), args[0], args[1], businessID)
			if err != nil {
				return err
			}
			state := "inactive"
			if it.IsActive {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", it.Value, state)
			return nil
		},
	}
	cmd.Flags().StringVar(&businessID, "business", "", "business scope")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var businessID string
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm [table] [id]",
		Short: "Delete a reference item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "delete %s from %s? [y/N]: ", args[1], args[0])
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return err
				}
				if ans := strings.ToLower(strings.TrimSpace(line)); ans != "y" && ans != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}
			if err := apiClient(cmd).DeleteItem(cmd.Context(), args[0], args[1], businessID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
	cmd.Flags().StringVar(&businessID, "business", "", "business scope")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options [table]",
		Short: "List parent options for a relation dependent table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := apiClient(cmd).Options(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printOutput(cmd, opts)
		},
	}
}

func newBusinessesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "businesses",
		Short: "List the tenant's businesses",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := apiClient(cmd).Businesses(cmd.Context())
			if err != nil {
				return err
			}
			return printOutput(cmd, list)
		},
	}
}
