package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
	"unicode"
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Name}}{{if .Down}} (rollback){{end}}
-- Created: {{.Created}}
{{if .Description}}-- {{.Description}}
{{end}}
`))

// Pair is a newly created up/down migration
type Pair struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// Create writes an empty up/down pair named after the current time
func Create(dir, name, description string) (*Pair, error) {
	slug := Slug(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := time.Now().UTC()
	version := now.Format("20060102150405")
	base := filepath.Join(dir, version+"_"+slug)
	p := &Pair{Version: version, Name: slug, UpPath: base + ".up.sql", DownPath: base + ".down.sql"}

	data := struct {
		Name, Description, Created string
		Down                       bool
	}{Name: name, Description: description, Created: now.Format(time.RFC3339)}

	if err := writeTemplate(p.UpPath, data); err != nil {
		return nil, err
	}
	data.Down = true
	if err := writeTemplate(p.DownPath, data); err != nil {
		_ = os.Remove(p.UpPath)
		return nil, err
	}
	return p, nil
}

func writeTemplate(path string, data any) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := fileTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return nil
}

// Slug lowercases name and collapses separators to single underscores
func Slug(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// List returns migration base names found in dir, sorted by version
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if base, ok := strings.CutSuffix(e.Name(), ".up.sql"); ok && !e.IsDir() {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}
