package db

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	embeddedmigrations "github.com/terraincognita07/goaltrack/migrations"
	"gorm.io/gorm"
)

// ALTER TABLE ... ADD COLUMN is skipped when the column already exists, so
// databases created before schema_migrations existed can still upgrade.
var addColumnPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)

type sqlMigration struct {
	Version    string
	Sequence   int
	File       string
	Statements []string
}

type migrator struct {
	database *gorm.DB
	dialect  string
	logger   zerolog.Logger
}

func applyEmbeddedMigrations(database *gorm.DB, logger zerolog.Logger) error {
	runner := migrator{
		database: database,
		dialect:  database.Dialector.Name(),
		logger:   logger.With().Str("component", "migrations").Logger(),
	}
	return runner.run()
}

func (runner migrator) run() error {
	pending, err := loadEmbeddedMigrations(runner.dialect)
	if err != nil {
		return err
	}
	if err := runner.ensureLedger(); err != nil {
		return err
	}

	var applied []string
	if err := runner.database.Raw(`SELECT version FROM schema_migrations`).Scan(&applied).Error; err != nil {
		return fmt.Errorf("load applied migration versions: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, version := range applied {
		done[version] = true
	}

	for _, migration := range pending {
		if done[migration.Version] {
			continue
		}
		if err := runner.apply(migration); err != nil {
			return err
		}
		runner.logger.Info().Str("version", migration.Version).Str("file", migration.File).Msg("migration applied")
	}
	return nil
}

func (runner migrator) ensureLedger() error {
	appliedAtType := "DATETIME"
	if runner.dialect == DriverPostgres {
		appliedAtType = "TIMESTAMPTZ"
	}
	statement := `CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at ` + appliedAtType + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if err := runner.database.Exec(statement).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func (runner migrator) apply(migration sqlMigration) error {
	return runner.database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range migration.Statements {
			if table, column, ok := parseAddColumn(statement); ok && tx.Migrator().HasColumn(table, column) {
				runner.logger.Debug().Str("table", table).Str("column", column).Msg("column exists, skipping")
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("migration %s: %w", migration.File, err)
			}
		}

		return tx.Exec(
			`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`,
			migration.Version,
			migration.File,
		).Error
	})
}

func migrationFilesFor(dialect string) (fs.FS, error) {
	if dialect != DriverSQLite && dialect != DriverPostgres {
		return nil, fmt.Errorf("no embedded migrations for dialect %q", dialect)
	}
	return fs.Sub(embeddedmigrations.Files, dialect)
}

// loadEmbeddedMigrations returns the dialect's NNN_name.sql files ordered by
// their numeric prefix.
func loadEmbeddedMigrations(dialect string) ([]sqlMigration, error) {
	files, err := migrationFilesFor(dialect)
	if err != nil {
		return nil, err
	}
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list embedded migrations: %w", err)
	}

	migrations := make([]sqlMigration, 0, len(names))
	byVersion := make(map[string]string, len(names))
	for _, name := range names {
		version, _, found := strings.Cut(name, "_")
		if !found {
			continue
		}
		sequence, err := strconv.Atoi(version)
		if err != nil {
			continue
		}
		if previous, ok := byVersion[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, previous, name)
		}
		byVersion[version] = name

		content, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		statements := splitSQLStatements(string(content))
		if len(statements) == 0 {
			return nil, fmt.Errorf("migration %s has no statements", name)
		}
		migrations = append(migrations, sqlMigration{
			Version:    version,
			Sequence:   sequence,
			File:       name,
			Statements: statements,
		})
	}

	sort.SliceStable(migrations, func(left, right int) bool {
		return migrations[left].Sequence < migrations[right].Sequence
	})
	return migrations, nil
}

// splitSQLStatements splits on semicolons. Migration files must not put
// semicolons inside string literals or trigger bodies.
func splitSQLStatements(text string) []string {
	var statements []string
	for _, part := range strings.Split(text, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

func parseAddColumn(statement string) (string, string, bool) {
	match := addColumnPattern.FindStringSubmatch(statement)
	if match == nil {
		return "", "", false
	}
	return unquoteIdentifier(match[1]), unquoteIdentifier(match[2]), true
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(strings.TrimSpace(identifier), "\"`[]")
}
