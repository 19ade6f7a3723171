package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	sdk "github.com/refdata-dev/reftab/sdk"
	"github.com/refdata-dev/reftab/sdk/client"
)

func apiClient(cmd *cobra.Command) client.Client {
	base, _ := cmd.Flags().GetString("api")
	token, _ := cmd.Flags().GetString("token")
	tenant, _ := cmd.Flags().GetString("tenant")
	var opts []client.Option
	if token != "" {
		opts = append(opts, client.WithToken(token))
	}
	if tenant != "" {
		opts = append(opts, client.WithTenant(tenant))
	}
	return client.NewHTTP(base, opts...)
}

// printOutput prints data in either JSON or table format based on the --output flag.
func printOutput(cmd *cobra.Command, v any) error {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if format == "json" {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}
	switch x := v.(type) {
	case []sdk.TableInfo:
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"Key", "Scoped", "Toggle", "Relation", "Display"})
		for _, t := range x {
			tw.Append([]string{t.Key, fmt.Sprint(t.Scoped), fmt.Sprint(t.HasToggle), t.Relation, strings.Join(t.Display, ",")})
		}
		tw.Render()
	case []client.Item:
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"ID", "Value", "Active", "Business"})
		for _, it := range x {
			tw.Append([]string{it.ID, it.Value, fmt.Sprint(it.IsActive), it.BusinessID})
		}
		tw.Render()
	case []sdk.Option:
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"ID", "Label"})
		for _, o := range x {
			tw.Append([]string{o.ID, o.Label})
		}
		tw.Render()
	case []sdk.Business:
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"ID", "Name"})
		for _, b := range x {
			tw.Append([]string{b.ID, b.Name})
		}
		tw.Render()
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
	}
	return nil
}
