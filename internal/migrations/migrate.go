package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const migrationsTable = "schema_migrations_migrate"

// RunMigrations opens databaseURL with driver and applies ./migrations.
func RunMigrations(driver, databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is empty")
	}
	if driver == "" {
		driver = "postgres"
	}

	sqlDB, err := sql.Open(driver, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open DB: %w", err)
	}
	defer sqlDB.Close()

	return Apply(sqlDB, driver, "migrations")
}

// Apply runs every pending migration in dir against an open database.
// If the schema already exists but migrate's metadata table does not, the
// database is baselined to the newest migration first.
func Apply(sqlDB *sql.DB, driver, dir string) error {
	var (
		drv database.Driver
		err error
	)
	switch driver {
	case "postgres":
		drv, err = pg.WithInstance(sqlDB, &pg.Config{MigrationsTable: migrationsTable})
	case "sqlite":
		drv, err = sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: migrationsTable})
	default:
		return fmt.Errorf("unsupported migration driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL(dir), driver, drv)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if driver == "postgres" {
		baseline(sqlDB, m, dir)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	log.Info().Str("driver", driver).Msg("migrations applied")
	return nil
}

func baseline(sqlDB *sql.DB, m *migrate.Migrate, dir string) {
	var matchesExist bool
	row := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name='matches')")
	if err := row.Scan(&matchesExist); err != nil || !matchesExist {
		return
	}
	var migrateTableExist bool
	row = sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", migrationsTable)
	if err := row.Scan(&migrateTableExist); err != nil || migrateTableExist {
		return
	}
	latest := findLatestMigrationVersion(dir)
	if latest <= 0 {
		return
	}
	log.Warn().Int64("version", latest).Msg("baselining existing schema")
	if err := m.Force(int(latest)); err != nil {
		log.Error().Err(err).Int64("version", latest).Msg("force baseline failed")
	}
}

func sourceURL(dir string) string {
	if strings.HasPrefix(dir, "file://") {
		return dir
	}
	return "file://" + dir
}

// findLatestMigrationVersion scans dir for files with a numeric version
// prefix (e.g. 000001_) and returns the highest version number.
func findLatestMigrationVersion(dir string) int64 {
	files, err := os.ReadDir(strings.TrimPrefix(dir, "file://"))
	if err != nil {
		return 0
	}

	re := regexp.MustCompile(`^0*([0-9]+)_`)
	var max int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(f.Name())
		if len(m) < 2 {
			continue
		}
		v, _ := strconv.ParseInt(m[1], 10, 64)
		if v > max {
			max = v
		}
	}

	return max
}
