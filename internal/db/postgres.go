package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/types"
	"github.com/anamul94/AITutor/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "aitutor", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	return Migrate(s.db)
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

// Migrate is shared with the test harness so integration tests run against
// the same schema as the server, cascade constraints included.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
	}

	if err := gdb.AutoMigrate(
		&types.User{},
		&types.Course{},
		&types.CourseModule{},
		&types.Lesson{},
		&types.UserProgress{},
		&types.TokenUsageLog{},
		&types.AppSetting{},
	); err != nil {
		return fmt.Errorf("Auto migration failed: %w", err)
	}

	// AutoMigrate runs with FK creation disabled; cascades are applied
	// explicitly so course deletion removes modules, lessons and progress
	// at the database level.
	fks := []struct {
		table      string
		constraint string
		ddl        string
	}{
		{"course", "fk_course_user_id",
			`FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"course_module", "fk_course_module_course_id",
			`FOREIGN KEY ("course_id") REFERENCES "course"("id") ON DELETE CASCADE`},
		{"lesson", "fk_lesson_module_id",
			`FOREIGN KEY ("module_id") REFERENCES "course_module"("id") ON DELETE CASCADE`},
		{"user_progress", "fk_user_progress_user_id",
			`FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"user_progress", "fk_user_progress_lesson_id",
			`FOREIGN KEY ("lesson_id") REFERENCES "lesson"("id") ON DELETE CASCADE`},
		{"token_usage_log", "fk_token_usage_log_user_id",
			`FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE SET NULL`},
	}
	for _, fk := range fks {
		drop := fmt.Sprintf(`ALTER TABLE %q DROP CONSTRAINT IF EXISTS %q`, fk.table, fk.constraint)
		if err := gdb.Exec(drop).Error; err != nil {
			return fmt.Errorf("Failed to drop %s: %w", fk.constraint, err)
		}
		add := fmt.Sprintf(`ALTER TABLE %q ADD CONSTRAINT %q %s`, fk.table, fk.constraint, fk.ddl)
		if err := gdb.Exec(add).Error; err != nil {
			return fmt.Errorf("Failed to add %s: %w", fk.constraint, err)
		}
	}
	return nil
}
