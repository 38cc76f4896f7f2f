package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type options struct {
	file string
}

// Option ajusta a construção do logger
type Option func(*options)

// WithFile duplica a saída em um arquivo com rotação. Caminho vazio é ignorado.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

func New(serviceName string, env string, opts ...Option) (*zap.Logger, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := zap.NewProductionConfig()
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	}

	// sempre garantir que serviço e env entrem como campos padrão
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zopts []zap.Option
	if o.file != "" {
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   o.file,
			MaxSize:    100, // MB
			MaxBackups: 3,
			MaxAge:     28, // dias
			Compress:   true,
		})
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), sink, cfg.Level)
		zopts = append(zopts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}
	// campos depois do tee para valer nos dois destinos
	zopts = append(zopts, zap.Fields(
		zap.String("service", serviceName),
		zap.String("env", env),
	))

	l, err := cfg.Build(zopts...)
	if err != nil {
		return nil, err
	}
	return l, nil
}
