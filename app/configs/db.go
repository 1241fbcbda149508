package configs

import (
	"fmt"
	"time"

	applogger "github.com/danuarta/go-marketplace/app/utils/logger"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	dbMaxRetries = 10
	dbRetryDelay = 5 * time.Second
)

// OpenConnection dials MySQL with retries so the app survives the database
// coming up after it in a compose environment. TranslateError turns driver
// duplicate-key errors into gorm.ErrDuplicatedKey, which the repositories
// rely on.
func OpenConnection(env ENV, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.DBUser,
		env.DBPassword,
		env.DBHost,
		env.DBPort,
		env.DBName,
	)

	cfg := &gorm.Config{
		Logger:         applogger.NewGormAdapter(log, gormlogger.Warn),
		TranslateError: true,
	}

	var lastErr error
	for attempt := 1; attempt <= dbMaxRetries; attempt++ {
		db, err := gorm.Open(mysql.Open(dsn), cfg)
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
			}
			if pingErr == nil {
				log.Info("database connection established",
					zap.String("host", env.DBHost),
					zap.String("database", env.DBName))
				return db, nil
			}
			err = pingErr
		}

		lastErr = err
		log.Warn("database connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", dbMaxRetries),
			zap.Error(err))
		time.Sleep(dbRetryDelay)
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dbMaxRetries, lastErr)
}
