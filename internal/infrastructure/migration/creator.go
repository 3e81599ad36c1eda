package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// MigrationFile describes a freshly created up/down pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down migration pair into migrationsDir.
// Versions are second-resolution timestamps so files sort in creation order
// next to the existing expense_claims and payment ledger migrations.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	base := version + "_" + sanitizeName(name)

	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		UpPath:      filepath.Join(migrationsDir, base+upSuffix),
		DownPath:    filepath.Join(migrationsDir, base+downSuffix),
	}

	up := migrationHeader(name, description, now) + "-- Write the UP migration here\n"
	if err := os.WriteFile(mf.UpPath, []byte(up), 0644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}

	down := migrationHeader(name+" (rollback)", description, now) + "-- Write the DOWN migration here\n"
	if err := os.WriteFile(mf.DownPath, []byte(down), 0644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return mf, nil
}

// ListMigrations returns the base names of every migration pair in the
// directory, sorted by version. A missing directory lists as empty.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	migrations := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), upSuffix) {
			continue
		}
		migrations = append(migrations, strings.TrimSuffix(entry.Name(), upSuffix))
	}
	sort.Strings(migrations)
	return migrations, nil
}

func migrationHeader(name, description string, createdAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Migration: %s\n", name)
	fmt.Fprintf(&b, "-- Created: %s\n", createdAt.Format(time.RFC3339))
	if description != "" {
		fmt.Fprintf(&b, "-- Description: %s\n", description)
	}
	b.WriteString("\n")
	return b.String()
}

// sanitizeName lowercases a migration name and joins words with underscores
// so it is safe as part of a file name.
func sanitizeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, name)
	return strings.Join(strings.Fields(mapped), "_")
}
