package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/config"
	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

// NewMigrateCmd создаёт CLI-команду управления схемой БД.
//
// Без аргумента применяет все миграции, down откатывает последнюю.
//
// Пример использования:
//
//	vaxreport migrate up
//	vaxreport migrate down
func NewMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Применить или откатить миграции",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{config.MigrateUp, config.MigrateDown},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := config.MigrateUp
			if len(args) == 1 {
				direction = args[0]
			}

			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			log, err := logger.NewHTTPLogger(cfg.Log.Options())
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := OpenDB(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := Migrate(db, cfg.Migrations.Path, direction, log.Sugar()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s applied\n", direction)
			return nil
		},
	}
}
