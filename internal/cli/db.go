package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/detektlint/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "History database management",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cleanup, err := openHistoryDB(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the database (destructive!)",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := openHistoryDB(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		if err := d.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database reset.")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbResetCmd)
}

// openHistoryDB opens the database named in the config, falling back to the
// default path when there is no config or it names none.
func openHistoryDB(cmd *cobra.Command) (*db.DB, func(), error) {
	dsn := ""
	if root, err := projectRoot(cmd); err == nil {
		if cfg, err := loadConfig(cmd, root); err == nil {
			dsn = cfg.Database
		}
	}
	return openDB(dsn)
}
