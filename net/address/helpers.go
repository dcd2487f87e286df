package address

import (
	"sort"

	"github.com/pkg/errors"
)

// Exclude returns blocks covering cidr minus remove, pairwise disjoint.
// When remove is strictly inside cidr the result has one block per prefix
// bit between the two, found by walking down towards remove and keeping
// the sibling half at every level.
func Exclude(cidr, remove CIDR) ([]CIDR, error) {
	if cidr.Family() != remove.Family() {
		return nil, errors.Wrapf(ErrFamilyMismatch, "exclude %s from %s", remove, cidr)
	}
	for _, c := range []CIDR{cidr, remove} {
		if !c.Valid() {
			return nil, errors.Wrapf(ErrNotCanonical, "%s", c)
		}
	}
	switch {
	case remove.ContainsCIDR(cidr):
		return nil, nil
	case !cidr.Overlaps(remove):
		return []CIDR{cidr}, nil
	}

	result := make([]CIDR, 0, remove.PrefixLen-cidr.PrefixLen)
	for cur := cidr; cur != remove; {
		lo, hi := cur.Halves()
		if hi.ContainsCIDR(remove) {
			result = append(result, lo)
			cur = hi
		} else {
			result = append(result, hi)
			cur = lo
		}
	}
	return result, nil
}

// ExcludeFrom removes every block of sub from cidr, one after the other.
// Blocks of the other family are ignored.
func ExcludeFrom(cidr CIDR, sub []CIDR) ([]CIDR, error) {
	pieces := []CIDR{cidr}
	for _, remove := range sub {
		if len(pieces) == 0 {
			break
		}
		if remove.Family() != cidr.Family() {
			continue
		}
		next := make([]CIDR, 0, len(pieces)+1)
		for _, piece := range pieces {
			rest, err := Exclude(piece, remove)
			if err != nil {
				return nil, err
			}
			next = append(next, rest...)
		}
		pieces = next
	}
	return pieces, nil
}

// Overlapping filters sub down to the blocks that overlap at least one block of add.
func Overlapping(sub, add []CIDR) []CIDR {
	var result []CIDR
	for _, s := range sub {
		for _, a := range add {
			if a.Overlaps(s) {
				result = append(result, s)
				break
			}
		}
	}
	return result
}

// Outermost drops every block of cidrs that lies inside another one, keeping
// the first of identical blocks. What is left is pairwise disjoint and in
// the original order.
func Outermost(cidrs []CIDR) []CIDR {
	sorted := append([]CIDR(nil), cidrs...)
	Sort(sorted)

	// a block sorts right after the blocks containing it
	keep := make(map[CIDR]bool, len(sorted))
	var top CIDR
	for i, cidr := range sorted {
		if i > 0 && top.ContainsCIDR(cidr) {
			continue
		}
		top = cidr
		keep[cidr] = true
	}

	result := make([]CIDR, 0, len(keep))
	for _, cidr := range cidrs {
		if keep[cidr] {
			result = append(result, cidr)
			delete(keep, cidr)
		}
	}
	return result
}

// ExcludeAll returns disjoint blocks covering the addresses of add that are not in sub.
func ExcludeAll(add, sub []CIDR) ([]CIDR, error) {
	add = Outermost(add)
	sub = Overlapping(sub, add)
	var result []CIDR
	for _, cidr := range add {
		pieces, err := ExcludeFrom(cidr, sub)
		if err != nil {
			return nil, err
		}
		result = append(result, pieces...)
	}
	return result, nil
}

// Collapse returns the minimal list of blocks covering the same addresses
// as cidrs, sorted. The argument is left untouched.
func Collapse(cidrs []CIDR) []CIDR {
	sorted := append([]CIDR(nil), cidrs...)
	Sort(sorted)

	var stack []CIDR
	for _, cidr := range sorted {
		if n := len(stack); n > 0 && stack[n-1].ContainsCIDR(cidr) {
			continue
		}
		stack = append(stack, cidr)
		for n := len(stack); n >= 2; n = len(stack) {
			parent, ok := siblings(stack[n-2], stack[n-1])
			if !ok {
				break
			}
			stack = append(stack[:n-2], parent)
		}
	}
	return stack
}

// siblings returns the common parent of a and b when they are the two halves of it.
func siblings(a, b CIDR) (CIDR, bool) {
	if a.PrefixLen != b.PrefixLen || a == b || a.Family() != b.Family() {
		return CIDR{}, false
	}
	pa, ok := a.Parent()
	if !ok {
		return CIDR{}, false
	}
	if pb, _ := b.Parent(); pa != pb {
		return CIDR{}, false
	}
	return pa, true
}

// Sort orders cidrs in place by family, start address and prefix length.
func Sort(cidrs []CIDR) {
	sort.Slice(cidrs, func(i, j int) bool { return cidrs[i].Compare(cidrs[j]) < 0 })
}

// Merge merges adjacent and overlapping range entries.
// The given slice has to be sorted in increasing order.
func Merge(r []Range) []Range {
	var merged []Range

	for i := range r {
		if prev := len(merged) - 1; prev >= 0 && merged[prev].adjoins(r[i]) {
			if r[i].End.Compare(merged[prev].End) > 0 {
				merged[prev].End = r[i].End
			}
		} else {
			merged = append(merged, r[i])
		}
	}

	return merged
}

// Union returns the addresses covered by cidrs as sorted, disjoint ranges.
func Union(cidrs []CIDR) []Range {
	sorted := append([]CIDR(nil), cidrs...)
	Sort(sorted)
	ranges := make([]Range, len(sorted))
	for i, cidr := range sorted {
		ranges[i] = cidr.Range()
	}
	return Merge(ranges)
}
