package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// Entry is one versioned migration pair
type Entry struct {
	Version uint   `json:"version"`
	Name    string `json:"name"`
}

// File returns the base file name shared by the up and down scripts
func (e Entry) File() string {
	return fmt.Sprintf("%06d_%s", e.Version, e.Name)
}

// Created describes a freshly written migration pair
type Created struct {
	Entry
	UpPath   string
	DownPath string
}

var (
	scriptPattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.up\.sql$`)
	unsafeChars   = regexp.MustCompile(`[^a-z0-9]+`)
)

var scriptTemplate = template.Must(template.New("migration").Parse(`-- Migration: {{.Name}}{{if .Rollback}} (rollback){{end}}
-- Created: {{.Created}}
{{if .Description}}-- Description: {{.Description}}
{{end}}
`))

// Create writes the next numbered up/down pair into dir
func Create(dir, name, description string, now time.Time) (*Created, error) {
	slug := Slug(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	next := Entry{Version: 1, Name: slug}
	if n := len(existing); n > 0 {
		next.Version = existing[n-1].Version + 1
	}

	c := &Created{
		Entry:    next,
		UpPath:   filepath.Join(dir, next.File()+".up.sql"),
		DownPath: filepath.Join(dir, next.File()+".down.sql"),
	}
	data := struct {
		Name, Description, Created string
		Rollback                   bool
	}{Name: slug, Description: description, Created: now.UTC().Format(time.RFC3339)}

	if err := writeScript(c.UpPath, data); err != nil {
		return nil, err
	}
	data.Rollback = true
	if err := writeScript(c.DownPath, data); err != nil {
		_ = os.Remove(c.UpPath)
		return nil, err
	}
	return c, nil
}

func writeScript(path string, data any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return scriptTemplate.Execute(f, data)
}

// List returns the migrations found in fsys ordered by version.
// Only up scripts count; a missing directory yields no entries.
func List(fsys fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var out []Entry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := scriptPattern.FindStringSubmatch(f.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}
		out = append(out, Entry{Version: uint(v), Name: m[2]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Slug lowercases name and collapses everything else into single underscores
func Slug(name string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
