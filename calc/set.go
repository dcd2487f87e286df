package calc

import (
	"github.com/sirupsen/logrus"

	"github.com/weaveworks/iplist/common"
	"github.com/weaveworks/iplist/metrics"
	"github.com/weaveworks/iplist/net/address"
	"github.com/weaveworks/iplist/net/specifier"
	"github.com/weaveworks/iplist/reader"
)

// Set collects the blocks of one side of a calculation.
// Specifiers that fail to parse are logged and kept in Errors;
// they add no blocks and do not stop the rest of a batch.
type Set struct {
	name   string
	blocks []address.CIDR
	errs   []error
	log    *logrus.Entry
}

func NewSet(name string) *Set {
	return &Set{name: name, log: common.Log.WithField("set", name)}
}

func (s *Set) Name() string           { return s.name }
func (s *Set) Blocks() []address.CIDR { return s.blocks }
func (s *Set) Errors() []error        { return s.errs }

// AddSpecifier reports whether text was understood.
func (s *Set) AddSpecifier(text string) bool {
	spec := specifier.Classify(text)
	metrics.Specifiers.WithLabelValues(s.name, spec.Kind.String()).Inc()

	cidrs, err := spec.CIDRs()
	if err != nil {
		metrics.SpecifierErrors.WithLabelValues(s.name, spec.Kind.String()).Inc()
		s.errs = append(s.errs, err)
		s.log.WithField("specifier", spec.Text).Warn(err)
		return false
	}

	s.log.WithField("specifier", spec.Text).Debugf("%s: %v", spec.Kind, cidrs)
	metrics.Blocks.WithLabelValues(s.name).Add(float64(len(cidrs)))
	s.blocks = append(s.blocks, cidrs...)
	return true
}

// AddSpecifiers returns how many of texts were understood.
func (s *Set) AddSpecifiers(texts ...string) int {
	n := 0
	for _, text := range texts {
		if s.AddSpecifier(text) {
			n++
		}
	}
	return n
}

// AddFrom adds every specifier of r. Only failures to read r are returned.
func (s *Set) AddFrom(r reader.Reader) error {
	s.log.WithField("file", r.Name()).Debug("reading specifiers")
	return r.Each(func(text string) error {
		s.AddSpecifier(text)
		return nil
	})
}
