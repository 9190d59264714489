package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// mysqlSubdir holds the MySQL rendition of every migration in the parent dir.
const mysqlSubdir = "mysql"

var (
	fileNameRe    = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	nameCleanupRe = regexp.MustCompile(`[^a-z0-9_]+`)
)

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s (%[2]s)
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s (%[2]s)
-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration for each dialect, sharing
// one version, and returns the created paths.
func CreateSQLMigration(dir, name string, now time.Time) ([]string, error) {
	if dir == "" {
		return nil, errors.New("dir is required")
	}
	safe := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	safe = strings.Trim(nameCleanupRe.ReplaceAllString(safe, "_"), "_")
	if safe == "" {
		return nil, fmt.Errorf("name %q has no usable characters", name)
	}
	filename := fmt.Sprintf("%s_%s.sql", now.UTC().Format("20060102150405"), safe)

	targets := []struct{ dir, dialect string }{
		{dir, "postgres"},
		{filepath.Join(dir, mysqlSubdir), "mysql"},
	}
	for _, target := range targets {
		if _, err := os.Stat(filepath.Join(target.dir, filename)); err == nil {
			return nil, fmt.Errorf("migration already exists: %s", filepath.Join(target.dir, filename))
		}
	}

	paths := make([]string, 0, len(targets))
	for _, target := range targets {
		if err := os.MkdirAll(target.dir, 0o755); err != nil {
			return paths, fmt.Errorf("mkdir %q: %w", target.dir, err)
		}
		path := filepath.Join(target.dir, filename)
		body := fmt.Sprintf(migrationTemplate, safe, target.dialect)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return paths, fmt.Errorf("write migration %q: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ValidateDir checks file names and goose markers in dir and, when present,
// its mysql subdirectory. Both dialects must carry the same versions. Every
// problem found is reported, not just the first.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	base, err := scanDir(dir)
	if err != nil {
		return err
	}

	mysqlDir := filepath.Join(dir, mysqlSubdir)
	if info, statErr := os.Stat(mysqlDir); statErr != nil || !info.IsDir() {
		return nil
	}
	variant, mysqlErr := scanDir(mysqlDir)
	if mysqlErr != nil {
		return mysqlErr
	}

	var errs error
	for _, version := range sortedKeys(base) {
		if _, ok := variant[version]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("version %s (%s) has no mysql counterpart", version, base[version]))
		}
	}
	for _, version := range sortedKeys(variant) {
		if _, ok := base[version]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("mysql version %s (%s) has no postgres counterpart", version, variant[version]))
		}
	}
	return errs
}

// scanDir maps version to file name for the .sql files directly in dir.
func scanDir(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	versions := map[string]string{}
	var errs error
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := fileNameRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: invalid file name %q (want YYYYMMDDHHMMSS_name.sql)", dir, name))
			continue
		}
		if prev, dup := versions[m[1]]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s used by %q and %q", dir, m[1], prev, name))
			continue
		}
		versions[m[1]] = name

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %q: %w", name, err))
			continue
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(content), marker) {
				errs = multierr.Append(errs, fmt.Errorf("%s: %q missing %q", dir, name, marker))
			}
		}
	}
	return versions, errs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
