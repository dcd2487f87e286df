package output

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/weaveworks/iplist/net/address"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Format string

const (
	Text Format = "txt"
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

var Formats = []Format{Text, CSV, JSON, YAML}

// ParseFormat accepts a format name; the empty name is returned as is.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "":
		return "", nil
	case "txt", "text":
		return Text, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", errors.Errorf("unknown output format %q", name)
}

// FormatForFile infers the format from the file extension, defaulting to text.
func FormatForFile(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil && f != "" {
		return f
	}
	return Text
}

// document is laid out so that it reads back with the default lookup paths.
type document struct {
	IPv4 []string `json:"ipv4" yaml:"ipv4"`
	IPv6 []string `json:"ipv6" yaml:"ipv6"`
}

func newDocument(cidrs []address.CIDR) document {
	doc := document{IPv4: []string{}, IPv6: []string{}}
	for _, c := range cidrs {
		if c.Family() == address.IPv4 {
			doc.IPv4 = append(doc.IPv4, c.String())
		} else {
			doc.IPv6 = append(doc.IPv6, c.String())
		}
	}
	return doc
}

func Write(w io.Writer, f Format, cidrs []address.CIDR) error {
	switch f {
	case Text, "":
		for _, c := range cidrs {
			if _, err := io.WriteString(w, c.String()+"\n"); err != nil {
				return err
			}
		}
		return nil
	case CSV:
		cw := csv.NewWriter(w)
		for _, c := range cidrs {
			if err := cw.Write([]string{c.String()}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case JSON:
		data, err := json.MarshalIndent(newDocument(cidrs), "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case YAML:
		data, err := yaml.Marshal(newDocument(cidrs))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return errors.Errorf("unknown output format %q", f)
}

// WriteFile writes cidrs to path; an empty format is inferred from the extension.
func WriteFile(path string, f Format, cidrs []address.CIDR) error {
	if f == "" {
		f = FormatForFile(path)
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, cidrs); err != nil {
		return errors.Wrapf(err, "formatting %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "writing %s", path)
}
