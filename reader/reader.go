// Package reader reads address specifiers from files.
package reader

import (
	"path/filepath"
	"strings"
)

// A Reader yields the specifiers of one file. Every call to Each reads
// the file again from the start.
type Reader interface {
	Name() string
	Each(fn func(specifier string) error) error
}

// DefaultPaths are looked up in JSON and YAML documents when no paths are given.
var DefaultPaths = []string{"ipv4", "ipv6"}

// ForFile picks a reader by file extension, defaulting to plain text.
// paths only apply to JSON and YAML files.
func ForFile(path string, paths []string) Reader {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &JSONReader{Path: path, Paths: paths}
	case ".yaml", ".yml":
		return &YAMLReader{Path: path, Paths: paths}
	case ".csv":
		return &CSVReader{Path: path}
	}
	return &TextReader{Path: path}
}

// All collects every specifier of r.
func All(r Reader) ([]string, error) {
	var result []string
	err := r.Each(func(s string) error {
		result = append(result, s)
		return nil
	})
	return result, err
}
