package cmd

import (
	"github.com/emrgen/cadeia/internal/config"
	"github.com/emrgen/cadeia/internal/store"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(migrateCmd())
}

func migrateCmd() *cobra.Command {
	var driver string
	var dsn string

	command := &cobra.Command{
		Use:     "migrate",
		Short:   "create or update the registry tables",
		Example: "cadeia db migrate --driver postgres --dsn <dsn>",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()
			if driver != "" {
				cfg.DbDriver = driver
			}
			if dsn != "" {
				cfg.DbDSN = dsn
			}

			if err := store.NewGormStore(config.GetDb(cfg)).Migrate(); err != nil {
				logrus.Fatalf("migration failed: %v", err)
			}

			color.Green("%s database migrated", cfg.DbDriver)
		},
	}

	command.Flags().StringVar(&driver, "driver", "", "sqlite or postgres, defaults to DB_DRIVER")
	command.Flags().StringVar(&dsn, "dsn", "", "connection string, defaults to DB_DSN")

	return command
}
