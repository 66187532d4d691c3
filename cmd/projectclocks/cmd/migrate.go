package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-projectclocks/internal/config"
	"github.com/goliatone/go-projectclocks/internal/database"
	"github.com/goliatone/go-projectclocks/projectclocks"
	"github.com/goliatone/go-projectclocks/store/bunstore"
)

var dropFirst bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long:  "Create every entity table and its secondary indexes. Existing tables are left untouched unless --drop is given.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&dropFirst, "drop", false, "drop every table before creating it")
}

func runMigrate(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	tables := projectclocks.Tables()
	if dropFirst {
		if err := bunstore.DropSchema(ctx, db, tables...); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Dropped %d tables\n", len(tables))
	}

	if err := bunstore.CreateSchema(ctx, db, tables...); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Schema ready: %d tables on %s\n", len(tables), cfg.Database.Driver)
	return nil
}
