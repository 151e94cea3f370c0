package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the default slog logger to write JSON records to stdout
// and to a size-rotated file at logFilePath.
func Init(logFilePath string) {
	rotator := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		Compress:   false,
	}
	writer := io.MultiWriter(os.Stdout, rotator)
	slog.SetDefault(slog.New(slog.NewJSONHandler(writer, nil)))
}
