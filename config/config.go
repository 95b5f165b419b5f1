// Package config holds the narrow phase settings and their YAML loading.
package config

import (
	"math"

	"github.com/akmonengine/polysoup/contact"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Config holds all collision settings.
type Config struct {
	Query   QueryConfig   `yaml:"query"`
	Grid    GridConfig    `yaml:"grid"`
	Workers int           `yaml:"workers"`
	Logging LoggingConfig `yaml:"logging"`
}

// QueryConfig holds the per-pair query settings.
type QueryConfig struct {
	SkinThickness      float64 `yaml:"skin_thickness"`
	Continuous         bool    `yaml:"continuous"`
	SortThreshold      int     `yaml:"sort_threshold"`
	MaxContactsPerFace int     `yaml:"max_contacts_per_face"`
}

// GridConfig sizes the face grid built for each static mesh.
type GridConfig struct {
	CellSize float64 `yaml:"cell_size"`
	NumCells int     `yaml:"num_cells"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Query: QueryConfig{
			SkinThickness:      0.01,
			Continuous:         false,
			SortThreshold:      8,
			MaxContactsPerFace: contact.DefaultMaxPoints,
		},
		Grid: GridConfig{
			CellSize: 2.0,
			NumCells: 4096,
		},
		Workers: 1,
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	q := c.Query
	if q.SkinThickness < 0 || math.IsNaN(q.SkinThickness) || math.IsInf(q.SkinThickness, 0) {
		err = multierr.Append(err, errors.Errorf("query.skin_thickness must be a non-negative number, got %v", q.SkinThickness))
	}
	if q.SortThreshold < 1 {
		err = multierr.Append(err, errors.Errorf("query.sort_threshold must be at least 1, got %d", q.SortThreshold))
	}
	if q.MaxContactsPerFace < 1 || q.MaxContactsPerFace > contact.MaxReducedPoints {
		err = multierr.Append(err, errors.Errorf("query.max_contacts_per_face must be in [1, %d], got %d", contact.MaxReducedPoints, q.MaxContactsPerFace))
	}

	if !(c.Grid.CellSize > 0) || math.IsInf(c.Grid.CellSize, 0) {
		err = multierr.Append(err, errors.Errorf("grid.cell_size must be positive, got %v", c.Grid.CellSize))
	}
	if c.Grid.NumCells < 1 {
		err = multierr.Append(err, errors.Errorf("grid.num_cells must be at least 1, got %d", c.Grid.NumCells))
	}

	if c.Workers < 1 {
		err = multierr.Append(err, errors.Errorf("workers must be at least 1, got %d", c.Workers))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, errors.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	return err
}
