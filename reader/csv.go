package reader

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/weaveworks/iplist/net/address"
)

// CSVReader reads one specifier per row:
//
//	10.0.0.0/8                  network, or any other single specifier
//	172.16.0.0,128              start address and count
//	192.168.12.0,192.168.12.255 first and last address
type CSVReader struct {
	Path string
}

func (r *CSVReader) Name() string { return r.Path }

func (r *CSVReader) Each(fn func(string) error) error {
	f, err := os.Open(r.Path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", r.Path)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "reading %s", r.Path)
		}
		if spec := rowSpecifier(row); spec != "" {
			if err := fn(spec); err != nil {
				return err
			}
		}
	}
}

func rowSpecifier(row []string) string {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
	switch {
	case len(row) == 0 || row[0] == "":
		return ""
	case len(row) == 1 || row[1] == "":
		return row[0]
	case strings.Trim(row[1], "0123456789") == "":
		return row[0] + "*" + row[1]
	}
	if _, err := address.ParseIP(row[1]); err == nil {
		return row[0] + "-" + row[1]
	}
	return row[0]
}
