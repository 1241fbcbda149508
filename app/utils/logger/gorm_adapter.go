package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter routes GORM's SQL logging through the injected zap logger.
type GormAdapter struct {
	logger        *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewGormAdapter(logger *zap.Logger, logLevel gormlogger.LogLevel) *GormAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormAdapter{
		logger:        logger,
		logLevel:      logLevel,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (a *GormAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &GormAdapter{logger: a.logger, logLevel: level, slowThreshold: a.slowThreshold}
}

func (a *GormAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if a.logLevel >= gormlogger.Info {
		a.logger.Sugar().Infof(msg, args...)
	}
}

func (a *GormAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if a.logLevel >= gormlogger.Warn {
		a.logger.Sugar().Warnf(msg, args...)
	}
}

func (a *GormAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if a.logLevel >= gormlogger.Error {
		a.logger.Sugar().Errorf(msg, args...)
	}
}

func (a *GormAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && a.logLevel >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		a.logger.Error("sql error", append(fields, zap.Error(err))...)
	case elapsed > a.slowThreshold && a.logLevel >= gormlogger.Warn:
		a.logger.Warn("slow sql", fields...)
	case a.logLevel >= gormlogger.Info:
		a.logger.Debug("sql", fields...)
	}
}
