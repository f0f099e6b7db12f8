package server

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger；未初始化前丢弃所有输出
var Log = zap.NewNop().Sugar()

// fileSink 文件滚动策略：10MB 每文件，保留3个备份，最多7天
func fileSink(path string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	})
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.StacktraceKey = "stack"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// InitLogger 初始化全局日志
// filePath: 滚动日志文件，如 "app.log"（为空则只写 stderr）；level: debug/info/warn/error；console: 同时输出到 stderr
func InitLogger(filePath, level string, console bool) error {
	lvl := zapcore.DebugLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}

	enc := consoleEncoder()
	var cores []zapcore.Core
	if filePath != "" {
		cores = append(cores, zapcore.NewCore(enc, fileSink(filePath), lvl))
	}
	if console || filePath == "" {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl))
	}

	// 添加调用者信息（文件:行号）
	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Sugar()
	return nil
}

// SyncLogger 清理和同步缓冲
func SyncLogger() {
	_ = Log.Sync()
}
