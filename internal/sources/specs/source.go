package specs

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
)

// Source reads the spec directory and the YAML catalog and merges them,
// YAML entries last so they override spec files.
type Source struct {
	json   *JSONLoader
	yaml   *YAMLLoader
	mapper *Mapper
	logger logger.Logger
}

// NewSource creates a source. Either location may be empty.
func NewSource(specDir, catalogFile string, log logger.Logger) *Source {
	s := &Source{mapper: NewMapper(), logger: log}
	if specDir != "" {
		s.json = NewJSONLoader(specDir)
	}
	if catalogFile != "" {
		s.yaml = NewYAMLLoader(catalogFile)
	}
	return s
}

// Load returns the merged services. Partially broken spec trees are logged
// and tolerated; it fails only when nothing usable was found.
func (s *Source) Load() ([]*domain.Service, error) {
	var sets [][]Definition

	if s.json != nil {
		defs, err := s.json.Load()
		switch {
		case err != nil && len(defs) == 0:
			return nil, fmt.Errorf("failed to load spec directory: %w", err)
		case err != nil:
			s.logger.Warn("some service definitions were skipped", logger.Error(err))
		}
		sets = append(sets, defs)
	}

	if s.yaml != nil {
		defs, err := s.yaml.Load()
		switch {
		case err != nil && s.json != nil && errors.Is(err, fs.ErrNotExist):
			// the YAML catalog is an optional overlay
			s.logger.Debug("no catalog file, using spec directory only", logger.Error(err))
		case err != nil:
			return nil, err
		default:
			sets = append(sets, defs)
		}
	}

	if len(sets) == 0 {
		return nil, errors.New("no service definition source configured")
	}

	return s.mapper.MapServices(sets...)
}
