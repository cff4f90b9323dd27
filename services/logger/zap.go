package logsvc

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tulamba/mafunzo/core"
)

// ZapLogger is the local/dev logger: human-readable console output, no
// external error tracker.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

func NewZapLogger(conf *core.Config) (*ZapLogger, error) {
	var cfg zap.Config
	if conf.Debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: logger.Sugar()}, nil
}

func (l ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugw(msg, kvs(args)...) }
func (l ZapLogger) Info(msg string, args ...interface{})  { l.sugar.Infow(msg, kvs(args)...) }
func (l ZapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnw(msg, kvs(args)...) }
func (l ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorw(msg, kvs(args)...) }
func (l ZapLogger) Fatal(msg string, args ...interface{}) { l.sugar.Fatalw(msg, kvs(args)...) }

// kvs turns loosely-typed trailing args into zap key/value pairs; the shared
// Logger contract does not force callers to pass keys.
func kvs(args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(args)*2)
	for i, arg := range args {
		switch v := arg.(type) {
		case error:
			out = append(out, "error", v)
		case map[string]interface{}:
			for k, val := range v {
				out = append(out, k, val)
			}
		default:
			out = append(out, fmt.Sprintf("arg%d", i), v)
		}
	}
	return out
}
