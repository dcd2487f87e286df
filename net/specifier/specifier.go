// Package specifier turns textual address specifiers into network blocks.
//
// Three forms are understood:
//
//	192.168.1.0-192.168.1.255     inclusive range
//	172.16.0.0*128                start address and address count
//	10.0.0.0/8, 10.0.0.0/255.0.0.0, 10.0.0.1
//	                              single network; a bare address is a /32 or /128
package specifier

import (
	"fmt"
	"math/big"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"lukechampine.com/uint128"

	"github.com/weaveworks/iplist/net/address"
)

type Kind int

const (
	Unrecognized Kind = iota
	Range
	Count
	Network
)

func (k Kind) String() string {
	switch k {
	case Range:
		return "range"
	case Count:
		return "count"
	case Network:
		return "network"
	}
	return "unrecognized"
}

var (
	ErrInvalidRange   = errors.New("invalid range")
	ErrInvalidCount   = errors.New("invalid count")
	ErrInvalidNetwork = errors.New("invalid network")
	ErrUnrecognized   = errors.New("unrecognized specifier")
)

// Error reports a specifier that could not be turned into blocks.
// errors.Is matches it against the sentinel for its Kind.
type Error struct {
	Kind Kind
	Text string
	Err  error
}

func (e *Error) reason() error {
	switch e.Kind {
	case Range:
		return ErrInvalidRange
	case Count:
		return ErrInvalidCount
	case Network:
		return ErrInvalidNetwork
	}
	return ErrUnrecognized
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", e.reason(), e.Text, e.Err)
	}
	return fmt.Sprintf("%s %q", e.reason(), e.Text)
}

func (e *Error) Is(target error) bool { return target == e.reason() }
func (e *Error) Unwrap() error        { return e.Err }

// Specifier is a classified token. Which of the string fields are set
// depends on Kind.
type Specifier struct {
	Kind    Kind
	Text    string
	First   string // range start, count base or network address
	Last    string // range end
	Count   string
	Mask    string // prefix length or dotted mask, without the slash
	HasMask bool
}

const networkChars = "0123456789abcdefABCDEF.:/"

// Classify decides which grammar s belongs to. A '-' makes it a range and
// a '*' a count; anything else made only of address characters is a network.
func Classify(s string) Specifier {
	s = strings.TrimSpace(s)
	spec := Specifier{Text: s}
	switch {
	case s == "":
	case strings.Contains(s, "-"):
		first, last, _ := strings.Cut(s, "-")
		spec.Kind, spec.First, spec.Last = Range, strings.TrimSpace(first), strings.TrimSpace(last)
	case strings.Contains(s, "*"):
		first, count, _ := strings.Cut(s, "*")
		spec.Kind, spec.First, spec.Count = Count, strings.TrimSpace(first), strings.TrimSpace(count)
	case strings.Trim(s, networkChars) == "":
		spec.Kind = Network
		spec.First, spec.Mask, spec.HasMask = strings.Cut(s, "/")
	}
	return spec
}

// Parse returns the blocks described by s.
func Parse(s string) ([]address.CIDR, error) {
	return Classify(s).CIDRs()
}

func (spec Specifier) CIDRs() ([]address.CIDR, error) {
	switch spec.Kind {
	case Range:
		return spec.rangeCIDRs()
	case Count:
		return spec.countCIDRs()
	case Network:
		return spec.networkCIDRs()
	}
	return nil, spec.fail(nil)
}

func (spec Specifier) fail(err error) error {
	return &Error{Kind: spec.Kind, Text: spec.Text, Err: err}
}

func (spec Specifier) rangeCIDRs() ([]address.CIDR, error) {
	first, err := address.ParseIP(spec.First)
	if err != nil {
		return nil, spec.fail(err)
	}
	last, err := address.ParseIP(spec.Last)
	if err != nil {
		return nil, spec.fail(err)
	}
	r, err := address.NewRange(first, last)
	if err != nil {
		return nil, spec.fail(err)
	}
	cidrs, err := r.CIDRs()
	if err != nil {
		return nil, spec.fail(err)
	}
	return cidrs, nil
}

func (spec Specifier) countCIDRs() ([]address.CIDR, error) {
	first, err := address.ParseIP(spec.First)
	if err != nil {
		return nil, spec.fail(err)
	}
	n, err := parseCount(spec.Count)
	if err != nil {
		return nil, spec.fail(err)
	}
	if n.Sign() == 0 {
		return nil, nil
	}
	// the last address is first+n-1, and n itself may be 2^128
	if n.Sub(n, big.NewInt(1)).BitLen() > 128 {
		return nil, spec.fail(errors.Wrapf(address.ErrOverflow, "count %s", spec.Count))
	}
	last, err := first.Add(uint128.FromBig(n))
	if err != nil {
		return nil, spec.fail(err)
	}
	cidrs, err := address.Range{Start: first, End: last}.CIDRs()
	if err != nil {
		return nil, spec.fail(err)
	}
	return cidrs, nil
}

func parseCount(s string) (*big.Int, error) {
	if s == "" || strings.Trim(s, "0123456789") != "" {
		return nil, errors.Errorf("count %q is not a non-negative integer", s)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("count %q is not a non-negative integer", s)
	}
	return n, nil
}

func (spec Specifier) networkCIDRs() ([]address.CIDR, error) {
	addr, err := address.ParseIP(spec.First)
	if err != nil {
		return nil, spec.fail(err)
	}
	prefixLen := addr.Family().Width()
	if spec.HasMask {
		if prefixLen, err = parseMask(addr.Family(), spec.Mask); err != nil {
			return nil, spec.fail(err)
		}
	}
	cidr, err := address.NewCIDR(addr, prefixLen)
	if err != nil {
		return nil, spec.fail(err)
	}
	return []address.CIDR{cidr}, nil
}

// parseMask accepts a prefix length or, for IPv4, a dotted netmask or hostmask.
func parseMask(f address.Family, s string) (int, error) {
	if s != "" && strings.Trim(s, "0123456789") == "" {
		n, err := strconv.Atoi(s)
		if err != nil || n > f.Width() {
			return 0, errors.Errorf("prefix length %s out of range for %s", s, f)
		}
		return n, nil
	}
	m, err := address.ParseIP(s)
	if err != nil || f != address.IPv4 || m.Family() != address.IPv4 {
		return 0, errors.Errorf("bad mask %q for %s", s, f)
	}
	mask := net.IPMask(m.IP())
	if ones, bits := mask.Size(); bits != 0 {
		return ones, nil
	}
	for i := range mask {
		mask[i] = ^mask[i]
	}
	if ones, bits := mask.Size(); bits != 0 {
		return ones, nil
	}
	return 0, errors.Errorf("non-contiguous mask %s", s)
}
