package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeNameRe = regexp.MustCompile(`[^a-z0-9]+`)

// versionClock stamps new migrations; tests swap it for a fixed time.
var versionClock = func() time.Time { return time.Now().UTC() }

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<slug>.sql. Names starting with
// "create_" are scaffolded as a table with an id and created_at column.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	slug := strings.Trim(unsafeNameRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", versionClock().Format("20060102150405"), slug))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(scaffold(slug)); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

func scaffold(slug string) string {
	up, down := "-- "+slug, "-- rollback "+slug
	if table, ok := strings.CutPrefix(slug, "create_"); ok && table != "" {
		up = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id uuid PRIMARY KEY,
  created_at timestamptz NOT NULL DEFAULT now()
);`, table)
		down = fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s\n\n%s\n%s\n%s\n%s\n",
		upMarker, statementBegin, up, statementFinish,
		downMarker, statementBegin, down, statementFinish)
}
