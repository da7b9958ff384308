package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidYAML      = errors.New("invalid YAML")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// FileError reports a config file that could not be applied.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// LoadFile reads a YAML config file and applies the keys it sets onto cfg.
// Keys absent from the file keep their current value. Unknown keys are
// rejected.
func LoadFile(cfg *Config, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := Apply(cfg, data); err != nil {
		return &FileError{Path: path, Err: err}
	}
	return nil
}

// Apply decodes YAML data onto cfg and marks every key it sets as coming
// from SourceFile.
func Apply(cfg *Config, data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return ErrEmptyFile
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: top level must be a mapping", ErrInvalidYAML)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}

	for _, key := range mappingKeys(root, "") {
		cfg.Mark(key, SourceFile)
	}
	return nil
}

// mappingKeys lists the dotted paths of the scalar and sequence values set
// in a mapping node.
func mappingKeys(node *yaml.Node, prefix string) []string {
	var keys []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := prefix + node.Content[i].Value
		value := node.Content[i+1]
		if value.Kind == yaml.MappingNode {
			keys = append(keys, mappingKeys(value, name+".")...)
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

// Load resolves defaults, the optional config file at path and the
// environment. Flags are applied by the caller afterwards, followed by
// Validate.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg := NewDefault()
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}
