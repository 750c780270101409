package logger

import (
	"github.com/littlewanderers/frontdesk/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Production emits JSON at info level; every
// other env uses the development encoder so local runs stay readable.
func New(cfg *config.Config) (*zap.SugaredLogger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProd() {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.TimeKey = "time"
	l, err := zcfg.Build(zap.Fields(zap.String("service", "frontdesk"), zap.String("env", string(cfg.Env))))
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

var Module = fx.Options(
	fx.Provide(New),
)
