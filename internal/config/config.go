// Package config assembles the analyzer settings. Environment variables
// provide the base values; an optional YAML file overrides any key it sets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/animus-labs/expense-tracker/internal/analyzer"
	"github.com/animus-labs/expense-tracker/internal/diagnostics"
	"github.com/animus-labs/expense-tracker/internal/platform/env"
	"github.com/animus-labs/expense-tracker/internal/platform/logging"
)

const defaultRunLog = "analysis-runs.ndjson"

type Config struct {
	Layout       analyzer.Layout
	AutoOpen     bool
	NoiseMarkers []string

	// DelegateOpen lets the analyzer open the report itself via --open.
	DelegateOpen bool

	// RunLog is the run ledger file, relative to the analyzer dir. Empty
	// disables the ledger.
	RunLog string

	LogLevel  string
	LogFormat string
}

func FromEnv() (Config, error) {
	autoOpen, err := env.Bool("EXPENSE_ANALYZER_AUTO_OPEN", true)
	if err != nil {
		return Config{}, err
	}
	delegateOpen, err := env.Bool("EXPENSE_ANALYZER_DELEGATE_OPEN", false)
	if err != nil {
		return Config{}, err
	}
	defaults := analyzer.DefaultLayout("ML")
	cfg := Config{
		Layout: analyzer.Layout{
			Dir:          env.String("EXPENSE_ANALYZER_DIR", defaults.Dir),
			SnapshotFile: env.String("EXPENSE_ANALYZER_SNAPSHOT_FILE", defaults.SnapshotFile),
			ReportFile:   env.String("EXPENSE_ANALYZER_REPORT_FILE", defaults.ReportFile),
			Executable:   env.String("EXPENSE_ANALYZER_EXECUTABLE", defaults.Executable),
			Script:       env.String("EXPENSE_ANALYZER_SCRIPT", defaults.Script),
			Interpreters: env.Strings("EXPENSE_ANALYZER_INTERPRETERS", defaults.Interpreters),
		},
		AutoOpen:     autoOpen,
		DelegateOpen: delegateOpen,
		NoiseMarkers: env.Strings("EXPENSE_ANALYZER_NOISE_MARKERS", []string{diagnostics.DefaultNoiseMarker}),
		RunLog:       env.String("EXPENSE_ANALYZER_RUN_LOG", defaultRunLog),
		LogLevel:     env.String("EXPENSE_LOG_LEVEL", "info"),
		LogFormat:    env.String("EXPENSE_LOG_FORMAT", logging.FormatText),
	}
	if cfg.Layout.Dir, err = absDir(cfg.Layout.Dir, ""); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the environment and then applies the YAML file at path. An empty
// path falls back to EXPENSE_ANALYZER_CONFIG; if that is unset too, only the
// environment is used.
func Load(path string) (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(path) == "" {
		path = env.String("EXPENSE_ANALYZER_CONFIG", "")
	}
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.apply(raw, filepath.Dir(path)); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if !filepath.IsAbs(c.Layout.Dir) {
		return fmt.Errorf("analyzer dir must be absolute: %q", c.Layout.Dir)
	}
	for _, marker := range c.NoiseMarkers {
		if strings.TrimSpace(marker) == "" {
			return errors.New("noise markers must not be blank")
		}
	}
	return logging.CheckFormat(c.LogFormat)
}

// RunLogPath is the absolute ledger path, or "" when the ledger is disabled.
func (c Config) RunLogPath() string {
	name := strings.TrimSpace(c.RunLog)
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Layout.Dir, name)
}

type fileConfig struct {
	Analyzer struct {
		Dir          *string  `yaml:"dir"`
		SnapshotFile *string  `yaml:"snapshot_file"`
		ReportFile   *string  `yaml:"report_file"`
		Executable   *string  `yaml:"executable"`
		Script       *string  `yaml:"script"`
		Interpreters []string `yaml:"interpreters"`
		AutoOpen     *bool    `yaml:"auto_open"`
		DelegateOpen *bool    `yaml:"delegate_open"`
		NoiseMarkers []string `yaml:"noise_markers"`
		RunLog       *string  `yaml:"run_log"`
	} `yaml:"analyzer"`
	Log struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
}

// apply overlays a YAML document. A relative analyzer dir in the file is
// taken relative to the file's own directory.
func (c *Config) apply(raw []byte, baseDir string) error {
	var doc fileConfig
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	a := doc.Analyzer
	if a.Dir != nil {
		dir, err := absDir(*a.Dir, baseDir)
		if err != nil {
			return err
		}
		c.Layout.Dir = dir
	}
	setString(&c.Layout.SnapshotFile, a.SnapshotFile)
	setString(&c.Layout.ReportFile, a.ReportFile)
	setString(&c.Layout.Executable, a.Executable)
	setString(&c.Layout.Script, a.Script)
	if a.Interpreters != nil {
		c.Layout.Interpreters = a.Interpreters
	}
	if a.AutoOpen != nil {
		c.AutoOpen = *a.AutoOpen
	}
	if a.DelegateOpen != nil {
		c.DelegateOpen = *a.DelegateOpen
	}
	if a.NoiseMarkers != nil {
		c.NoiseMarkers = a.NoiseMarkers
	}
	setString(&c.RunLog, a.RunLog)
	setString(&c.LogLevel, doc.Log.Level)
	setString(&c.LogFormat, doc.Log.Format)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func absDir(dir, base string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("analyzer dir is required")
	}
	if !filepath.IsAbs(dir) && base != "" {
		dir = filepath.Join(base, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve analyzer dir: %w", err)
	}
	return abs, nil
}
