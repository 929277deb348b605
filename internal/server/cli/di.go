package cli

import "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/server/config"

// для тестов
var (
	OpenDB  = config.OpenDB
	Migrate = config.Migrate
)
