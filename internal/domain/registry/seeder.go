package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// appsFile is the on-disk shape shared by every supported format
type appsFile struct {
	Apps []types.AppDefinition `json:"apps" yaml:"apps" toml:"apps"`
}

// Seeder loads application definitions from a file on disk
type Seeder struct {
	manager *Manager
	logger  *zap.Logger
}

// NewSeeder creates a new app seeder
func NewSeeder(manager *Manager, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{manager: manager, logger: logger}
}

// Seed loads path if it exists. A missing file is not an error; invalid
// entries are skipped and logged. Returns the number registered.
func (s *Seeder) Seed(path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Apps file not found", zap.String("path", path))
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read apps file: %w", err)
	}

	apps, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	var loaded, failed int
	for _, app := range apps {
		if err := s.manager.Register(app); err != nil {
			s.logger.Warn("Skipping app definition", zap.String("id", app.ID), zap.Error(err))
			failed++
			continue
		}
		loaded++
	}

	s.logger.Info("Seeded apps",
		zap.String("path", path),
		zap.Int("loaded", loaded),
		zap.Int("failed", failed))
	return loaded, nil
}

// Decode parses an apps file by extension: .yaml/.yml, .toml or .json
func Decode(ext string, data []byte) ([]types.AppDefinition, error) {
	var file appsFile

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case ".json":
		if err := sonic.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported apps file extension %q", ext)
	}

	return file.Apps, nil
}
