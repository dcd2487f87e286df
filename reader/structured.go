package reader

import (
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReader reads the string lists found at dotted lookup paths, e.g.
//
//	{"ipv4": ["10.0.0.0/8", "172.16.0.0*128"], "site": {"v6": ["2001:db8::/32"]}}
//
// with paths "ipv4" and "site.v6".
type JSONReader struct {
	Path  string
	Paths []string
}

func (r *JSONReader) Name() string { return r.Path }

func (r *JSONReader) Each(fn func(string) error) error {
	return decodeEach(r.Path, r.Paths, fn, func(in io.Reader, doc *interface{}) error {
		return json.NewDecoder(in).Decode(doc)
	})
}

// YAMLReader is the YAML flavour of JSONReader.
type YAMLReader struct {
	Path  string
	Paths []string
}

func (r *YAMLReader) Name() string { return r.Path }

func (r *YAMLReader) Each(fn func(string) error) error {
	return decodeEach(r.Path, r.Paths, fn, func(in io.Reader, doc *interface{}) error {
		if err := yaml.NewDecoder(in).Decode(doc); err != io.EOF {
			return err
		}
		return nil
	})
}

func decodeEach(path string, paths []string, fn func(string) error, decode func(io.Reader, *interface{}) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var doc interface{}
	if err := decode(f, &doc); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	for _, p := range paths {
		items, err := lookup(doc, p)
		if err != nil {
			return errors.Wrapf(err, "%s: path %q", path, p)
		}
		for _, item := range items {
			if err := fn(strings.TrimSpace(item)); err != nil {
				return err
			}
		}
	}
	return nil
}

// lookup walks a dotted path through nested objects. A missing path yields nothing.
func lookup(doc interface{}, path string) ([]string, error) {
	for _, key := range strings.Split(path, ".") {
		var ok bool
		switch m := doc.(type) {
		case map[string]interface{}:
			doc, ok = m[key]
		case map[interface{}]interface{}:
			doc, ok = m[key]
		}
		if !ok {
			return nil, nil
		}
	}

	switch v := doc.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []interface{}:
		items := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("item %d is %T, not a string", i, item)
			}
			items = append(items, s)
		}
		return items, nil
	}
	return nil, errors.Errorf("found %T, not a list of strings", doc)
}
