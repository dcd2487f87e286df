package address

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/pkg/errors"
	"lukechampine.com/uint128"
)

// CIDR is a network block. Blocks built with NewCIDR or ParseCIDR are
// canonical: every bit of Start past PrefixLen is zero.
type CIDR struct {
	Start     Address
	PrefixLen int
}

// NewCIDR returns the block of the given prefix length containing addr.
func NewCIDR(addr Address, prefixLen int) (CIDR, error) {
	if !addr.IsValid() {
		return CIDR{}, errors.New("invalid address")
	}
	if prefixLen < 0 || prefixLen > addr.family.Width() {
		return CIDR{}, errors.Errorf("prefix length %d out of range for %s", prefixLen, addr.family)
	}
	return CIDR{Start: addr.mask(prefixLen), PrefixLen: prefixLen}, nil
}

// ParseCIDR parses "addr/len", masking any host bits.
func ParseCIDR(s string) (CIDR, error) {
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return CIDR{}, &net.ParseError{Type: "CIDR address", Text: s}
	}
	return NewCIDR(FromNetIP(prefix.Addr()), prefix.Bits())
}

func (cidr CIDR) Family() Family { return cidr.Start.family }

// Valid reports whether the block has a known family, an in-range prefix
// length and no host bits set.
func (cidr CIDR) Valid() bool {
	f := cidr.Family()
	return cidr.Start.IsValid() && cidr.PrefixLen >= 0 && cidr.PrefixLen <= f.Width() &&
		cidr.Start.value.And(hostMask(f, cidr.PrefixLen)).IsZero()
}

// Last is the highest address in the block.
func (cidr CIDR) Last() Address {
	return Address{family: cidr.Family(), value: cidr.Start.value.Or(hostMask(cidr.Family(), cidr.PrefixLen))}
}

func (cidr CIDR) Range() Range {
	return Range{Start: cidr.Start, End: cidr.Last()}
}

func (cidr CIDR) Contains(addr Address) bool {
	return addr.family == cidr.Family() && addr.mask(cidr.PrefixLen) == cidr.Start
}

// ContainsCIDR reports whether other lies entirely within cidr.
func (cidr CIDR) ContainsCIDR(other CIDR) bool {
	return other.PrefixLen >= cidr.PrefixLen && cidr.Contains(other.Start)
}

// Two blocks either nest or are disjoint, so overlap is containment one way or the other.
func (cidr CIDR) Overlaps(other CIDR) bool {
	return cidr.ContainsCIDR(other) || other.ContainsCIDR(cidr)
}

// Halves splits the block into its two sub-blocks one bit longer.
// The block must not be a single address.
func (cidr CIDR) Halves() (lo, hi CIDR) {
	f := cidr.Family()
	bit := uint128.From64(1).Lsh(uint(f.Width() - cidr.PrefixLen - 1))
	lo = CIDR{Start: cidr.Start, PrefixLen: cidr.PrefixLen + 1}
	hi = CIDR{Start: Address{family: f, value: cidr.Start.value.Or(bit)}, PrefixLen: cidr.PrefixLen + 1}
	return
}

// Parent is the block one bit shorter containing cidr; false for /0.
func (cidr CIDR) Parent() (CIDR, bool) {
	if cidr.PrefixLen == 0 {
		return cidr, false
	}
	return CIDR{Start: cidr.Start.mask(cidr.PrefixLen - 1), PrefixLen: cidr.PrefixLen - 1}, true
}

func (cidr CIDR) IPNet() net.IPNet {
	return net.IPNet{IP: cidr.Start.IP(), Mask: net.CIDRMask(cidr.PrefixLen, cidr.Family().Width())}
}

func (cidr CIDR) Prefix() netip.Prefix {
	return netip.PrefixFrom(cidr.Start.NetIP(), cidr.PrefixLen)
}

func (cidr CIDR) String() string {
	return fmt.Sprintf("%s/%d", cidr.Start.String(), cidr.PrefixLen)
}

// Compare orders by family, start address, then prefix length.
func (cidr CIDR) Compare(other CIDR) int {
	if c := cidr.Start.Compare(other.Start); c != 0 {
		return c
	}
	switch {
	case cidr.PrefixLen < other.PrefixLen:
		return -1
	case cidr.PrefixLen > other.PrefixLen:
		return 1
	}
	return 0
}
