package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
)

const migrationUpTemplate = `-- Migration: {{.Name}}
-- Description: {{.Description}}

`

const migrationDownTemplate = `-- Migration: {{.Name}} (Rollback)

`

// versionWidth is the zero padded width of sequential versions (000001)
const versionWidth = 6

// MigrationFile represents a migration file pair
type MigrationFile struct {
	Version     uint
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// CreateMigration creates the next sequential migration file pair in migrationsDir
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	safe := sanitizeName(name)
	if safe == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(migrationsDir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	baseName := fmt.Sprintf("%0*d_%s", versionWidth, next, safe)
	mf := &MigrationFile{
		Version:     next,
		Name:        name,
		Description: description,
		UpPath:      filepath.Join(migrationsDir, baseName+".up.sql"),
		DownPath:    filepath.Join(migrationsDir, baseName+".down.sql"),
	}

	if err := createMigrationFile(mf.UpPath, migrationUpTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := createMigrationFile(mf.DownPath, migrationDownTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func createMigrationFile(path, tmplContent string, data *MigrationFile) error {
	tmpl, err := template.New("migration").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

// sanitizeName converts a migration name to a safe file name format
func sanitizeName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastUnderscore = false
		case c == ' ' || c == '-' || c == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// MigrationInfo describes one migration found in a source
type MigrationInfo struct {
	Version uint
	Name    string
	HasDown bool
}

// ListMigrations returns the migrations in fsys ordered by version.
// A missing directory yields an empty list.
func ListMigrations(fsys fs.FS) ([]MigrationInfo, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []MigrationInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*MigrationInfo)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, name, direction, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}
		info, seen := byVersion[version]
		if !seen {
			info = &MigrationInfo{Version: version, Name: name}
			byVersion[version] = info
		}
		if direction == "down" {
			info.HasDown = true
		}
	}

	out := make([]MigrationInfo, 0, len(byVersion))
	for _, info := range byVersion {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// parseFileName splits "000001_name.up.sql" into its parts
func parseFileName(file string) (version uint, name, direction string, ok bool) {
	var rest string
	switch {
	case strings.HasSuffix(file, ".up.sql"):
		rest, direction = strings.TrimSuffix(file, ".up.sql"), "up"
	case strings.HasSuffix(file, ".down.sql"):
		rest, direction = strings.TrimSuffix(file, ".down.sql"), "down"
	default:
		return 0, "", "", false
	}
	prefix, name, found := strings.Cut(rest, "_")
	if !found {
		return 0, "", "", false
	}
	v, err := strconv.ParseUint(prefix, 10, 32)
	if err != nil {
		return 0, "", "", false
	}
	return uint(v), name, direction, true
}
