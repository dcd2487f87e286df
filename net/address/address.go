package address

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"net"
	"net/netip"

	"github.com/pkg/errors"
	"lukechampine.com/uint128"
)

type Family int

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

// Width is the number of bits in an address of the family.
func (f Family) Width() int {
	if f == IPv4 {
		return 32
	}
	return 128
}

func (f Family) String() string { return fmt.Sprintf("IPv%d", int(f)) }

var (
	ErrFamilyMismatch = errors.New("address family mismatch")
	ErrInvalidRange   = errors.New("range start is after range end")
	ErrNotCanonical   = errors.New("host bits set in network address")
	ErrOverflow       = errors.New("address overflows its family")
)

// Using a 128-bit integer to represent both IPv4 and IPv6 addresses;
// IPv4 only uses the low 32 bits.
type Address struct {
	family Family
	value  uint128.Uint128
}

// Range is an inclusive address range. The end is inclusive because the
// whole IPv6 space has one address more than a 128-bit end could express.
type Range struct {
	Start, End Address // [Start, End]; Start <= End
}

func NewRange(start, end Address) (Range, error) {
	r := Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks what NewRange guarantees, for ranges built as literals.
func (r Range) Validate() error {
	switch {
	case !r.Start.IsValid() || !r.End.IsValid():
		return errors.Errorf("range %s-%s: invalid address", r.Start, r.End)
	case r.Start.family != r.End.family:
		return errors.Wrapf(ErrFamilyMismatch, "range %s-%s", r.Start, r.End)
	case r.Start.Compare(r.End) > 0:
		return errors.Wrapf(ErrInvalidRange, "range %s-%s", r.Start, r.End)
	}
	return nil
}

func (r Range) Family() Family { return r.Start.family }
func (r Range) String() string { return fmt.Sprintf("%s-%s", r.Start, r.End) }

func (r Range) Contains(addr Address) bool {
	return addr.Compare(r.Start) >= 0 && addr.Compare(r.End) <= 0
}

func (r Range) Overlaps(or Range) bool {
	return r.Family() == or.Family() && !(r.Start.Compare(or.End) > 0 || r.End.Compare(or.Start) < 0)
}

// Size is the number of addresses in the range, which can be 2^128.
func (r Range) Size() *big.Int {
	n := r.End.value.Sub(r.Start.value).Big()
	return n.Add(n, big.NewInt(1))
}

// adjoins reports whether or starts inside r or right after its end.
func (r Range) adjoins(or Range) bool {
	if r.Family() != or.Family() {
		return false
	}
	if or.Start.Compare(r.End) <= 0 {
		return true
	}
	return !r.End.value.Equals(maxValue(r.Family())) && r.End.value.Add64(1).Equals(or.Start.value)
}

// BiggestCIDR returns the largest aligned block that starts at r.Start
// and does not extend past r.End.
// r must be valid.
func (r Range) BiggestCIDR() CIDR {
	width := r.Family().Width()
	size := width
	if span := r.End.value.Sub(r.Start.value); !span.Equals(uint128.Max) {
		size = span.Add64(1).Len() - 1
	}
	if tz := r.Start.trailingZeros(); tz < size {
		size = tz
	}
	return CIDR{Start: r.Start, PrefixLen: width - size}
}

// CIDRs returns the minimal list of blocks that exactly cover the range,
// in ascending address order.
func (r Range) CIDRs() ([]CIDR, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var cidrs []CIDR
	for rest := r; ; {
		cidr := rest.BiggestCIDR()
		cidrs = append(cidrs, cidr)
		last := cidr.Last()
		if last.Compare(rest.End) == 0 {
			return cidrs, nil
		}
		rest.Start = Address{family: last.family, value: last.value.Add64(1)}
	}
}

func ParseIP(s string) (Address, error) {
	if ip, err := netip.ParseAddr(s); err == nil && ip.Zone() == "" {
		return FromNetIP(ip), nil
	}
	return Address{}, &net.ParseError{Type: "IP address", Text: s}
}

// FromNetIP converts a netip address to our integer address type
func FromNetIP(ip netip.Addr) Address {
	if ip.Is4() {
		b := ip.As4()
		return FromUint32(binary.BigEndian.Uint32(b[:]))
	}
	b := ip.As16()
	return Address{family: IPv6, value: uint128.FromBytesBE(b[:])}
}

func FromUint32(v uint32) Address {
	return Address{family: IPv4, value: uint128.From64(uint64(v))}
}

func FromUint128(f Family, v uint128.Uint128) (Address, error) {
	if v.Cmp(maxValue(f)) > 0 {
		return Address{}, errors.Wrapf(ErrOverflow, "%s value %s", f, v)
	}
	return Address{family: f, value: v}, nil
}

func (addr Address) Family() Family           { return addr.family }
func (addr Address) Uint128() uint128.Uint128 { return addr.value }
func (addr Address) IsValid() bool            { return addr.family == IPv4 || addr.family == IPv6 }

// NetIP converts our integer address type to a netip address
func (addr Address) NetIP() netip.Addr {
	if addr.family == IPv4 {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(addr.value.Lo))
		return netip.AddrFrom4(b)
	}
	var b [16]byte
	addr.value.PutBytesBE(b[:])
	return netip.AddrFrom16(b)
}

func (addr Address) IP() net.IP {
	return net.IP(addr.NetIP().AsSlice())
}

func (addr Address) String() string {
	if !addr.IsValid() {
		return "invalid IP"
	}
	return addr.NetIP().String()
}

// Compare orders IPv4 before IPv6, then by numeric value.
func (addr Address) Compare(other Address) int {
	switch {
	case addr.family < other.family:
		return -1
	case addr.family > other.family:
		return 1
	}
	return addr.value.Cmp(other.value)
}

// Add returns addr+n, failing if the result leaves the family's address space.
func (addr Address) Add(n uint128.Uint128) (Address, error) {
	sum := addr.value.AddWrap(n)
	if sum.Cmp(addr.value) < 0 || sum.Cmp(maxValue(addr.family)) > 0 {
		return Address{}, errors.Wrapf(ErrOverflow, "%s + %s", addr, n)
	}
	return Address{family: addr.family, value: sum}, nil
}

func (addr Address) Next() (Address, error) {
	return addr.Add(uint128.From64(1))
}

func (addr Address) mask(prefixLen int) Address {
	return Address{family: addr.family, value: addr.value.And(netMask(addr.family, prefixLen))}
}

func (addr Address) trailingZeros() int {
	if tz, w := addr.value.TrailingZeros(), addr.family.Width(); tz < w {
		return tz
	}
	return addr.family.Width()
}

func maxValue(f Family) uint128.Uint128 {
	if f == IPv4 {
		return uint128.From64(0xffffffff)
	}
	return uint128.Max
}

// hostMask has the low width-prefixLen bits set.
func hostMask(f Family, prefixLen int) uint128.Uint128 {
	switch bits := f.Width() - prefixLen; {
	case bits <= 0:
		return uint128.Zero
	case bits >= 128:
		return uint128.Max
	default:
		return uint128.From64(1).Lsh(uint(bits)).Sub64(1)
	}
}

func netMask(f Family, prefixLen int) uint128.Uint128 {
	return hostMask(f, prefixLen).Xor(maxValue(f))
}
