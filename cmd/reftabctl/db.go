package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/refdata-dev/reftab/pkg/migrator"
	"github.com/refdata-dev/reftab/pkg/util"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "db", Short: "Database operations"}
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var (
		to     int
		dryRun bool
		dbDSN  string
		driver string
		prefix string
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the service schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if driver == "" {
				d, err := util.DetectDriver(dbDSN)
				if err != nil {
					return err
				}
				driver = d
			}
			m := migrator.NewWithDriverAndPrefix(driver, prefix)
			db, err := sql.Open(driver, dbDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			ctx := cmd.Context()
			if dryRun {
				cur, err := m.Current(ctx, db)
				if err != nil {
					return err
				}
				target := to
				if target == 0 {
					target = m.Len()
				}
				for _, s := range m.SQLForRange(cur, target) {
					fmt.Fprintln(cmd.OutOrStdout(), s+";")
				}
				return nil
			}
			cur, err := m.Current(ctx, db)
			if err != nil {
				return err
			}
			if to != 0 && to < cur {
				return m.Down(ctx, db, to)
			}
			return m.Up(ctx, db, to)
		},
	}
	cmd.Flags().StringVar(&dbDSN, "db", "", "database DSN")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver")
	cmd.Flags().StringVar(&prefix, "table-prefix", "", "service table prefix")
	cmd.Flags().IntVar(&to, "to", 0, "target version (0=latest)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print SQL without executing")
	cobra.CheckErr(cmd.MarkFlagRequired("db"))
	return cmd
}
