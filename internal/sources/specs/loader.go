package specs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const (
	specFilePrefix = "service-2"
	specFileExt    = ".json"
)

// YAMLLoader handles loading and parsing of the compact services.yaml
type YAMLLoader struct {
	filePath string
}

// NewYAMLLoader creates a new YAML catalog loader
func NewYAMLLoader(filePath string) *YAMLLoader {
	return &YAMLLoader{
		filePath: filePath,
	}
}

// Load reads and parses the services.yaml file
func (l *YAMLLoader) Load() ([]Definition, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	for i := range file.Services {
		file.Services[i].Source = SourceYAML
	}
	return file.Services, nil
}

// JSONLoader reads a botocore-style tree of service definitions:
//
//	<dir>/<service>/<api-version>/service-2.json
//	<dir>/<service>/<api-version>/service-2.<protocol>.json
//
// Only the latest api version of each service is read. Files are only
// partially decoded: the operation shapes are never looked at.
type JSONLoader struct {
	dir string
}

// NewJSONLoader creates a new loader for a spec directory
func NewJSONLoader(dir string) *JSONLoader {
	return &JSONLoader{dir: dir}
}

// Load returns every definition it could read. Broken files are skipped and
// reported in the returned error, which may be non-nil alongside results.
func (l *JSONLoader) Load() ([]Definition, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec directory: %w", err)
	}

	var (
		defs []Definition
		errs []error
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		serviceDefs, err := l.loadService(entry.Name())
		if err != nil {
			errs = append(errs, err)
		}
		defs = append(defs, serviceDefs...)
	}

	return defs, errors.Join(errs...)
}

func (l *JSONLoader) loadService(name string) ([]Definition, error) {
	versionDir, err := latestVersionDir(filepath.Join(l.dir, name))
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", name, err)
	}

	files, err := os.ReadDir(versionDir)
	if err != nil {
		return nil, fmt.Errorf("service %s: failed to read %s: %w", name, versionDir, err)
	}

	var (
		defs []Definition
		errs []error
	)
	for _, f := range files {
		variant, ok := specVariant(f.Name())
		if f.IsDir() || !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(versionDir, f.Name()))
		if err != nil {
			errs = append(errs, fmt.Errorf("service %s: %w", name, err))
			continue
		}
		def, err := ParseServiceJSON(name, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("service %s (%s): %w", name, f.Name(), err))
			continue
		}
		def.Variant = variant
		defs = append(defs, def)
	}
	return defs, errors.Join(errs...)
}

// latestVersionDir returns the lexicographically greatest sub-directory.
// Api versions are dates, so this is the newest one.
func latestVersionDir(serviceDir string) (string, error) {
	entries, err := os.ReadDir(serviceDir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", serviceDir, err)
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("no api version directory in %s", serviceDir)
	}
	return filepath.Join(serviceDir, slices.Max(versions)), nil
}

// specVariant maps "service-2.json" to the primary variant and
// "service-2.query.json" to the "query" variant.
func specVariant(fileName string) (string, bool) {
	base, ok := strings.CutSuffix(fileName, specFileExt)
	if !ok {
		return "", false
	}
	rest, ok := strings.CutPrefix(base, specFilePrefix)
	if !ok {
		return "", false
	}
	if rest == "" {
		return "", true
	}
	variant, ok := strings.CutPrefix(rest, ".")
	if !ok || variant == "" || strings.Contains(variant, ".") {
		return "", false
	}
	return variant, true
}

// ParseServiceJSON extracts a definition from a service-2.json document.
func ParseServiceJSON(name string, data []byte) (Definition, error) {
	if !gjson.ValidBytes(data) {
		return Definition{}, errors.New("invalid json")
	}

	doc := gjson.ParseBytes(data)
	meta := doc.Get("metadata")
	if !meta.Exists() {
		return Definition{}, errors.New("missing metadata")
	}

	def := Definition{
		Name:           name,
		Protocol:       meta.Get("protocol").String(),
		SigningName:    meta.Get("signingName").String(),
		TargetPrefix:   meta.Get("targetPrefix").String(),
		EndpointPrefix: meta.Get("endpointPrefix").String(),
		APIVersion:     meta.Get("apiVersion").String(),
		Source:         SourceSpecs,
	}
	if def.Protocol == "" {
		def.Protocol = meta.Get("protocols.0").String()
	}
	if def.SigningName == "" {
		def.SigningName = def.EndpointPrefix
	}
	if def.SigningName == "" {
		def.SigningName = name
	}

	doc.Get("operations").ForEach(func(key, _ gjson.Result) bool {
		def.Operations = append(def.Operations, key.String())
		return true
	})

	return def, nil
}
