// Package project reads the on-disk state of the backend project directory.
// Nothing here writes to the project.
package project

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Project is a backend project rooted at Dir.
type Project struct {
	Dir           string
	LinkMarker    string // relative to Dir
	MigrationsDir string // relative to Dir
}

// New creates a Project view of dir.
func New(dir, linkMarker, migrationsDir string) Project {
	return Project{Dir: dir, LinkMarker: linkMarker, MigrationsDir: migrationsDir}
}

// LinkedRef returns the remote project reference when the link marker exists
// and is non-empty.
func (p Project) LinkedRef() (string, bool) {
	if p.LinkMarker == "" {
		return "", false
	}
	data, err := os.ReadFile(p.path(p.LinkMarker))
	if err != nil {
		return "", false
	}
	ref := strings.TrimSpace(string(data))
	return ref, ref != ""
}

// IsLinked reports whether the project is linked to a remote project.
func (p Project) IsLinked() bool {
	_, ok := p.LinkedRef()
	return ok
}

// Migrations lists the .sql files in the migrations directory, sorted by name.
// A missing directory is not an error.
func (p Project) Migrations() ([]string, error) {
	if p.MigrationsDir == "" {
		return nil, nil
	}
	dir := p.path(p.MigrationsDir)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names, nil
}

// createTablePattern matches the table name of a CREATE TABLE statement,
// optionally schema-qualified and quoted.
var createTablePattern = regexp.MustCompile(`(?i)\bcreate\s+(?:unlogged\s+)?table\s+(?:if\s+not\s+exists\s+)?((?:"[^"]+"|[a-z_][a-z0-9_$]*)(?:\.(?:"[^"]+"|[a-z_][a-z0-9_$]*))?)`)

// ReadinessTable returns a table the migrations create in the public schema:
// the first one in the newest migration that creates any. An empty name means
// no migration creates a public table.
func (p Project) ReadinessTable() (string, error) {
	names, err := p.Migrations()
	if err != nil {
		return "", err
	}
	for i := len(names) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(p.path(p.MigrationsDir), names[i]))
		if err != nil {
			return "", err
		}
		for _, m := range createTablePattern.FindAllStringSubmatch(string(data), -1) {
			if table, ok := publicTable(m[1]); ok {
				return table, nil
			}
		}
	}
	return "", nil
}

// publicTable strips quotes and the schema; tables outside public are not
// served by the REST gateway.
func publicTable(ident string) (string, bool) {
	parts := strings.SplitN(ident, ".", 2)
	for i := range parts {
		parts[i] = strings.Trim(parts[i], `"`)
	}
	if len(parts) == 2 {
		if !strings.EqualFold(parts[0], "public") {
			return "", false
		}
		return parts[1], true
	}
	return parts[0], true
}

func (p Project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Dir, rel)
}
