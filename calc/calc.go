// Package calc subtracts one set of network blocks from another.
package calc

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/weaveworks/iplist/common"
	"github.com/weaveworks/iplist/metrics"
	"github.com/weaveworks/iplist/net/address"
)

type Options struct {
	// Merge collapses the result to the fewest blocks covering it.
	Merge bool
	// Sort orders the result by family, address and prefix length.
	Sort bool
	// Workers > 1 excludes that many added blocks concurrently.
	Workers int
}

type Calculator struct {
	opts Options
}

func New(opts Options) *Calculator {
	return &Calculator{opts: opts}
}

// Calculate returns disjoint blocks covering the addresses of add that are not in sub.
// Added blocks inside other added blocks are dropped first. Without Sort the result
// keeps the order of add, each added block replaced by what is left of it.
func (c *Calculator) Calculate(add, sub []address.CIDR) ([]address.CIDR, error) {
	for _, cidrs := range [][]address.CIDR{add, sub} {
		for _, cidr := range cidrs {
			if !cidr.Valid() {
				return nil, errors.Wrapf(address.ErrNotCanonical, "block %s/%d", cidr.Start, cidr.PrefixLen)
			}
		}
	}

	add = address.Outermost(add)
	sub = address.Overlapping(sub, add)
	common.Log.WithField("add", len(add)).WithField("sub", len(sub)).Debug("excluding overlapping blocks")

	pieces := make([][]address.CIDR, len(add))
	exclude := func(i int) error {
		rest, err := address.ExcludeFrom(add[i], sub)
		if err != nil {
			return err
		}
		metrics.ExcludeSplits.Observe(float64(len(rest)))
		pieces[i] = rest
		return nil
	}

	if c.opts.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(c.opts.Workers)
		for i := range add {
			i := i
			g.Go(func() error { return exclude(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range add {
			if err := exclude(i); err != nil {
				return nil, err
			}
		}
	}

	var result []address.CIDR
	for _, rest := range pieces {
		result = append(result, rest...)
	}
	metrics.Blocks.WithLabelValues("excluded").Add(float64(len(result)))

	if c.opts.Merge {
		result = address.Collapse(result)
	}
	if c.opts.Sort {
		address.Sort(result)
	}
	metrics.Blocks.WithLabelValues("result").Add(float64(len(result)))
	return result, nil
}
