package db

import (
	"fmt"
	"time"

	"nextrole/internal/application"
	"nextrole/internal/auth"
	"nextrole/internal/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the postgres pool. Statements run outside an implicit
// transaction; each store call is a single statement.
func Connect(opts config.DatabaseOptions, log logrus.FieldLogger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(opts.URL), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB, uniqueIndex bool) error {
	if err := gdb.AutoMigrate(
		&application.Application{},
		&auth.User{},
	); err != nil {
		return err
	}

	for _, s := range indexStatements(uniqueIndex) {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}

func indexStatements(unique bool) []string {
	stmts := []string{
		`create index if not exists idx_applications_user_applied on applications(user_id, applied_at desc, id desc);`,
		`create index if not exists idx_applications_user_company_role on applications(user_id, company, role);`,
	}
	if unique {
		return append(stmts, `create unique index if not exists uq_applications_user_company_role on applications(user_id, company, role);`)
	}
	return append(stmts, `drop index if exists uq_applications_user_company_role;`)
}
