package reader

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// TextReader reads one specifier per line. Blank lines and lines
// starting with '#' are skipped.
type TextReader struct {
	Path string
}

func (r *TextReader) Name() string { return r.Path }

func (r *TextReader) Each(fn func(string) error) error {
	f, err := os.Open(r.Path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", r.Path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return errors.Wrapf(scanner.Err(), "reading %s", r.Path)
}
