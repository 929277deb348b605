// Package cli реализует командный интерфейс (CLI) сервера VaxReport.
//
// Пакет отвечает за:
//   - определение root-команды и набора подкоманд (serve, migrate, create-user, version);
//   - загрузку .env и конфигурации сервера;
//   - сборку зависимостей сервера и управление его жизненным циклом.
//
// Точка входа пакета — функция Execute.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/config"
)

// App содержит состояние CLI-приложения, разделяемое между командами.
type App struct {
	// ConfigPath — путь к server.yaml.
	ConfigPath string
	// EnvFile — .env с переменными окружения, отсутствие файла не ошибка.
	EnvFile string
}

// loadConfig читает конфиг по ConfigPath.
func (a *App) loadConfig() (*config.Config, error) {
	return config.Load(a.ConfigPath)
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// buildVersion и buildDate используются для вывода информации о сборке (команда version).
// В PersistentPreRunE загружается .env, конфиг читает каждая команда сама.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:   "vaxreport",
		Short: "VaxReport — учёт поставок вакцин",
		Long: `VaxReport server.

Команды:
  serve        Запустить HTTP-сервер
  migrate      Применить (up) или откатить на шаг (down) миграции
  create-user  Создать пользователя из консоли
  version      Версия и дата сборки

Примеры:
  vaxreport serve --config ./configs/server.yaml
  vaxreport migrate up
  vaxreport create-user --email admin@example.com
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.EnvFile == "" {
				return nil
			}
			if err := godotenv.Load(app.EnvFile); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return fmt.Errorf("load %s: %w", app.EnvFile, err)
			}
			return nil
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "./configs/server.yaml", "path to server config")
	cmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", ".env", "dotenv file to load before reading config")

	cmd.AddCommand(NewServeCmd(app))
	cmd.AddCommand(NewMigrateCmd(app))
	cmd.AddCommand(NewCreateUserCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// Execute запускает обработку CLI-команд.
//
// При ошибке выполнения команды сообщение выводится в stderr, после чего процесс
// завершается с кодом 1 (os.Exit(1)).
func Execute(buildVersion, buildDate string) {
	if err := NewRootCmd(buildVersion, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
