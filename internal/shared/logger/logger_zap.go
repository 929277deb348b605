// Package logger содержит общий логгер сервера VaxReport.
//
// Пакет предоставляет Zap-логгер, настроенный на запись в файл с ротацией
// (lumberjack) и удобный метод для логирования HTTP-запросов.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// HTTPLogger представляет обёртку над zap.Logger для логирования HTTP-событий.
//
// Встраивание *zap.Logger позволяет использовать все методы zap напрямую.
type HTTPLogger struct {
	*zap.Logger
}

// Options — параметры файлового логгера.
//
// Пустые поля заменяются значениями по умолчанию (см. withDefaults).
type Options struct {
	Dir        string // каталог логов, по умолчанию runtime/logs
	File       string // имя файла, по умолчанию http.log
	Level      string // debug|info|warn|error
	Format     string // console|json
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = filepath.Join("runtime", "logs")
	}
	if o.File == "" {
		o.File = "http.log"
	}
	if o.Level == "" {
		o.Level = "info"
	}
	if o.Format == "" {
		o.Format = "console"
	}
	if o.MaxSizeMB == 0 {
		o.MaxSizeMB = 100 // MB ≈ ~300 000 строк
	}
	if o.MaxBackups == 0 {
		o.MaxBackups = 10
	}
	if o.MaxAgeDays == 0 {
		o.MaxAgeDays = 30
	}
	return o
}

// NewHTTPLogger создаёт файловый zap-логгер.
//
// Логи пишутся в opts.Dir/opts.File, для файлов включена ротация
// (MaxSize/MaxBackups/MaxAge) и, при необходимости, сжатие архивов.
// Формат времени: "HH:MM:SS DD.MM.YYYY".
func NewHTTPLogger(opts Options) (*HTTPLogger, error) {
	opts = opts.withDefaults()

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("некорректный уровень логирования %q: %w", opts.Level, err)
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог логов: %w", err)
	}

	// lumberjack отвечает за ротацию файлов
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, opts.File),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = customTimeEncoder

	var encoder zapcore.Encoder
	if strings.EqualFold(opts.Format, "json") {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	return New(zapcore.NewCore(encoder, writer, level)), nil
}

// New оборачивает произвольное zapcore.Core (используется в тестах с observer).
func New(core zapcore.Core) *HTTPLogger {
	return &HTTPLogger{Logger: zap.New(core, zap.AddCaller())}
}

// NewNop возвращает логгер, который ничего не пишет.
func NewNop() *HTTPLogger {
	return &HTTPLogger{Logger: zap.NewNop()}
}

// LogRequest записывает структурированный лог об HTTP-запросе.
//
// method и uri — параметры запроса,
// status — HTTP-статус ответа,
// responseSize — размер ответа в байтах,
// duration — длительность обработки запроса в миллисекундах.
func (logger *HTTPLogger) LogRequest(method, uri string, status, responseSize int, duration float64) {
	logger.Info("HTTP request",
		zap.String("method", method),
		zap.String("uri", uri),
		zap.Int("status", status),
		zap.Int("response_size", responseSize),
		zap.Float64("duration_ms", duration),
	)
}

// customTimeEncoder форматирует время для логов в виде "HH:MM:SS DD.MM.YYYY".
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05 02.01.2006"))
}
