package logging

import (
	"os"

	"storefront/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ローテーション設定（MB・世代数・日数）
const (
	fileMaxSizeMB  = 64
	fileMaxBackups = 7
	fileMaxAgeDays = 7
)

// 本番はJSON、それ以外はコンソール出力。
// LOG_FILEがあれば標準出力に加えてJSONでファイルにも書く。
func New(cfg config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProd() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = []string{"stdout"}

	if cfg.LogFile == "" {
		return zc.Build(zap.AddCaller())
	}

	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		MaxAge:     fileMaxAgeDays,
	}
	return zap.New(newTee(zc, zapcore.AddSync(file), zapcore.AddSync(os.Stdout)), zap.AddCaller()), nil
}

func newTee(zc zap.Config, file, stdout zapcore.WriteSyncer) zapcore.Core {
	stdoutEnc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if zc.Encoding == "json" {
		stdoutEnc = zapcore.NewJSONEncoder(zc.EncoderConfig)
	}
	return zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), file, zc.Level),
		zapcore.NewCore(stdoutEnc, stdout, zc.Level),
	)
}
