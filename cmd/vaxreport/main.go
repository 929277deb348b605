// Package main содержит точку входа сервера VaxReport.
//
// Пакет только передаёт информацию о версии и дате сборки в CLI-слой,
// вся сборка зависимостей и жизненный цикл сервера реализованы в internal/server/cli.
package main

import "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/cli"

var (
	// buildVersion содержит версию приложения, передаваемую при сборке.
	// По умолчанию используется значение "dev".
	buildVersion = "dev"
	// buildDate содержит дату сборки приложения.
	// По умолчанию используется значение "unknown".
	buildDate = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
