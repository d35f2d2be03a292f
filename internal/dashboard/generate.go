package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"towerdefense-sim/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

// tables names the GreptimeDB tables the dashboard queries.
type tables struct {
	StateTable  string
	EventTable  string
	EntityTable string
}

// Render parses dashboard templates and writes rendered dashboards to outDir.
// Datasource UIDs come from the environment; table names follow the telemetry settings.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}
	data := tables{
		StateTable:  telemetry.StateTableName,
		EventTable:  telemetry.EventTableName,
		EntityTable: telemetry.EntityTableName,
	}

	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, entry := range names {
		name := entry.Name()
		t, err := template.New(name).Funcs(funcMap).ParseFS(templates, "templates/"+name)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(name, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
