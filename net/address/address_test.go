package address

import (
	"math/big"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func isPower2(x *big.Int) bool {
	return x.Sign() > 0 && new(big.Int).And(x, new(big.Int).Sub(x, big.NewInt(1))).Sign() == 0
}

func TestParseIP(t *testing.T) {
	a, err := ParseIP("192.168.1.10")
	require.NoError(t, err)
	require.Equal(t, IPv4, a.Family())
	require.Equal(t, FromUint32(0xc0a8010a), a)
	require.Equal(t, "192.168.1.10", a.String())

	a, err = ParseIP("2001:db8::1")
	require.NoError(t, err)
	require.Equal(t, IPv6, a.Family())
	require.Equal(t, "2001:db8::1", a.String())

	for _, bad := range []string{"", "999.1.1.1", "1.2.3", "010.1.1.1", "fe80::1%eth0", "2001:db8::/32", "abc"} {
		_, err := ParseIP(bad)
		require.Error(t, err, bad)
	}
}

func TestAddressAdd(t *testing.T) {
	a := ip("10.0.0.255")
	b, err := a.Add(uint128.From64(1))
	require.NoError(t, err)
	require.Equal(t, ip("10.0.1.0"), b)

	_, err = ip("255.255.255.255").Add(uint128.From64(1))
	require.ErrorIs(t, err, ErrOverflow)
	_, err = ip("ffff:ffff:ffff:ffff:ffff:ffff:ffff:fffe").Add(uint128.From64(2))
	require.ErrorIs(t, err, ErrOverflow)
	_, err = ip("0.0.0.1").Add(uint128.Max)
	require.ErrorIs(t, err, ErrOverflow)

	next, err := ip("10.0.0.255").Next()
	require.NoError(t, err)
	require.Equal(t, ip("10.0.1.0"), next)
	_, err = ip("255.255.255.255").Next()
	require.ErrorIs(t, err, ErrOverflow)

	last, err := ip("::").Add(uint128.Max)
	require.NoError(t, err)
	require.Equal(t, "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff", last.String())
}

func TestCompare(t *testing.T) {
	require.Equal(t, -1, ip("255.255.255.255").Compare(ip("::")))
	require.Equal(t, 1, ip("10.0.0.2").Compare(ip("10.0.0.1")))
	require.Equal(t, 0, ip("::1").Compare(ip("0::1")))
}

func TestNewRange(t *testing.T) {
	_, err := NewRange(ip("10.0.0.2"), ip("10.0.0.1"))
	require.ErrorIs(t, err, ErrInvalidRange)
	_, err = NewRange(ip("10.0.0.1"), ip("::1"))
	require.ErrorIs(t, err, ErrFamilyMismatch)
	r, err := NewRange(ip("10.0.0.1"), ip("10.0.0.1"))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1), r.Size())
	require.Equal(t, "10.0.0.1-10.0.0.1", r.String())
}

func TestRangeSize(t *testing.T) {
	all := Range{Start: ip("::"), End: ip("ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff")}
	require.Equal(t, new(big.Int).Lsh(big.NewInt(1), 128), all.Size())
	require.Equal(t, big.NewInt(256), cidr("192.168.1.0/24").Range().Size())
}

func TestBiggestCIDR(t *testing.T) {
	require.Equal(t, cidr("0.0.0.0/32"), rng("0.0.0.0", "0.0.0.0").BiggestCIDR())
	require.Equal(t, cidr("0.0.0.1/32"), rng("0.0.0.1", "0.0.0.2").BiggestCIDR())
	require.Equal(t, cidr("0.0.0.2/31"), rng("0.0.0.2", "0.0.0.4").BiggestCIDR())
	require.Equal(t, cidr("0.0.0.0/2"), rng("0.0.0.0", "127.255.255.254").BiggestCIDR())
	require.Equal(t, cidr("0.0.0.0/0"), rng("0.0.0.0", "255.255.255.255").BiggestCIDR())
	require.Equal(t, cidr("::/0"), rng("::", "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff").BiggestCIDR())
	require.Equal(t, cidr("255.255.255.254/31"), rng("255.255.255.254", "255.255.255.255").BiggestCIDR())

	prop := func(start, size uint32) bool {
		if size == 0 || uint64(start)+uint64(size)-1 > 0xffffffff {
			return true
		}
		r := Range{Start: FromUint32(start), End: FromUint32(start + size - 1)}
		result := r.BiggestCIDR()
		return result.Valid() &&
			r.Contains(result.Start) &&
			r.Contains(result.Last()) &&
			isPower2(result.Range().Size())
	}
	require.NoError(t, quick.Check(prop, &quick.Config{MaxCount: 100000}))
}

func TestCIDRMethods(t *testing.T) {
	c, err := ParseCIDR("10.1.2.3/8")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.0/8", c.String())
	require.True(t, c.Valid())
	require.Equal(t, ip("10.255.255.255"), c.Last())
	require.True(t, c.Contains(ip("10.9.9.9")))
	require.False(t, c.Contains(ip("11.0.0.0")))
	require.False(t, c.Contains(ip("::a00:0")))
	require.True(t, c.ContainsCIDR(cidr("10.1.0.0/16")))
	require.False(t, cidr("10.1.0.0/16").ContainsCIDR(c))
	require.True(t, cidr("10.1.0.0/16").Overlaps(c))
	require.False(t, cidr("11.0.0.0/8").Overlaps(c))

	lo, hi := c.Halves()
	require.Equal(t, cidr("10.0.0.0/9"), lo)
	require.Equal(t, cidr("10.128.0.0/9"), hi)

	p, ok := hi.Parent()
	require.True(t, ok)
	require.Equal(t, c, p)
	_, ok = cidr("::/0").Parent()
	require.False(t, ok)

	require.False(t, CIDR{Start: ip("10.0.0.1"), PrefixLen: 24}.Valid())
	require.False(t, CIDR{Start: ip("10.0.0.0"), PrefixLen: 33}.Valid())
	require.False(t, CIDR{}.Valid())

	_, err = NewCIDR(ip("10.0.0.0"), 33)
	require.Error(t, err)
	_, err = ParseCIDR("10.0.0.0/33")
	require.Error(t, err)

	n := cidr("192.168.0.0/16").IPNet()
	require.Equal(t, "192.168.0.0/16", n.String())
	require.Equal(t, "2001:db8::/32", cidr("2001:db8::/32").Prefix().String())
}

// Helpers

func ip(s string) Address {
	a, err := ParseIP(s)
	if err != nil {
		panic(err)
	}
	return a
}

func cidr(s string) CIDR {
	c, err := ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return c
}

func cidrs(ss ...string) []CIDR {
	result := make([]CIDR, len(ss))
	for i, s := range ss {
		result[i] = cidr(s)
	}
	return result
}

// [start; end]
func rng(start, end string) Range {
	return Range{Start: ip(start), End: ip(end)}
}
