package output

import (
	"net"

	"github.com/yl2chen/cidranger"

	"github.com/weaveworks/iplist/net/address"
)

type Class string

const (
	LinkLocal   Class = "Link Local"
	SiteLocal   Class = "Site Local"
	Private     Class = "Private"
	Global      Class = "Global"
	Loopback    Class = "Loopback"
	Multicast   Class = "Multicast"
	Reserved    Class = "Reserved"
	Unspecified Class = "Unspecified"
)

// Listing order of the classes of each family.
var (
	IPv4Classes = []Class{LinkLocal, Private, Global, Loopback, Multicast, Reserved, Unspecified}
	IPv6Classes = []Class{LinkLocal, SiteLocal, Private, Global, Loopback, Multicast, Reserved, Unspecified}
)

// Special-purpose registry networks; Global is derived from Private.
var registry = map[Class][]string{
	Loopback:    {"127.0.0.0/8", "::1/128"},
	LinkLocal:   {"169.254.0.0/16", "fe80::/10"},
	SiteLocal:   {"fec0::/10"},
	Multicast:   {"224.0.0.0/4", "ff00::/8"},
	Unspecified: {"0.0.0.0/32", "::/128"},
	Reserved: {
		"240.0.0.0/4",
		"::/8", "100::/8", "200::/7", "400::/6", "800::/5", "1000::/4", "4000::/3", "6000::/3",
		"8000::/3", "a000::/3", "c000::/3", "e000::/4", "f000::/5", "f800::/6", "fe00::/9",
	},
	Private: {
		"0.0.0.0/8", "10.0.0.0/8", "127.0.0.0/8", "169.254.0.0/16", "172.16.0.0/12", "192.0.0.0/29",
		"192.0.0.170/31", "192.0.2.0/24", "192.168.0.0/16", "198.18.0.0/15", "198.51.100.0/24",
		"203.0.113.0/24", "240.0.0.0/4", "255.255.255.255/32",
		"::1/128", "::/128", "100::/64", "2001::/23", "2001:db8::/32", "2001:10::/28",
		"fc00::/7", "fe80::/10",
	},
}

// Shared address space is neither private nor global.
var sharedAddressSpace = mustCIDR("100.64.0.0/10")

// The trie files IPv4-mapped addresses under IPv4, so these are answered directly.
var mappedIPv4 = mustCIDR("::ffff:0:0/96")

// One entry per network: the trie keeps only the last entry inserted for a network.
type classEntry struct {
	network net.IPNet
	classes []Class
}

func (e classEntry) Network() net.IPNet { return e.network }

// Classifier tells which special-purpose classes a block belongs to.
type Classifier struct {
	ranger cidranger.Ranger
}

func NewClassifier() *Classifier {
	byNetwork := map[string][]Class{}
	for class, networks := range registry {
		for _, n := range networks {
			byNetwork[n] = append(byNetwork[n], class)
		}
	}
	c := &Classifier{ranger: cidranger.NewPCTrieRanger()}
	for n, classes := range byNetwork {
		if err := c.ranger.Insert(classEntry{network: mustCIDR(n).IPNet(), classes: classes}); err != nil {
			panic(err)
		}
	}
	return c
}

// Classes returns the classes of cidr in listing order. A block belongs to a
// class when it lies entirely inside one of the class's networks.
func (c *Classifier) Classes(cidr address.CIDR) []Class {
	found := map[Class]bool{}
	if mappedIPv4.ContainsCIDR(cidr) {
		found[Private], found[Reserved] = true, true
	} else if entries, err := c.ranger.ContainingNetworks(cidr.Start.IP()); err == nil {
		for _, e := range entries {
			ones, _ := e.Network().Mask.Size()
			if entry, ok := e.(classEntry); ok && ones <= cidr.PrefixLen {
				for _, class := range entry.classes {
					found[class] = true
				}
			}
		}
	}
	found[Global] = !found[Private] && !(cidr.Family() == address.IPv4 && sharedAddressSpace.ContainsCIDR(cidr))

	order := IPv4Classes
	if cidr.Family() == address.IPv6 {
		order = IPv6Classes
	}
	var result []Class
	for _, class := range order {
		if found[class] {
			result = append(result, class)
		}
	}
	return result
}

func mustCIDR(s string) address.CIDR {
	c, err := address.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return c
}
