package output

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/weaveworks/iplist/net/address"
)

func Join(cidrs []address.CIDR) string {
	s := make([]string, len(cidrs))
	for i, c := range cidrs {
		s[i] = c.String()
	}
	return strings.Join(s, ",")
}

func byFamily(cidrs []address.CIDR, f address.Family) []address.CIDR {
	var result []address.CIDR
	for _, c := range cidrs {
		if c.Family() == f {
			result = append(result, c)
		}
	}
	return result
}

func PrintInputs(w io.Writer, add, sub []address.CIDR) {
	fmt.Fprintf(w, "Networks to add: %s\n", Join(add))
	fmt.Fprintf(w, "Networks to subtract: %s\n", Join(sub))
}

// PrintFlat lists the blocks of each family on one comma-separated line.
func PrintFlat(w io.Writer, cidrs []address.CIDR) {
	fmt.Fprintf(w, "IPv4 Networks: %s\n", Join(byFamily(cidrs, address.IPv4)))
	fmt.Fprintf(w, "IPv6 Networks: %s\n", Join(byFamily(cidrs, address.IPv6)))
}

// PrintGrouped lists the blocks of each family by class. A block appears
// under every class it belongs to; empty families and classes are left out.
func PrintGrouped(w io.Writer, cidrs []address.CIDR, classifier *Classifier) {
	for _, group := range []struct {
		family  address.Family
		classes []Class
	}{
		{address.IPv4, IPv4Classes},
		{address.IPv6, IPv6Classes},
	} {
		nets := byFamily(cidrs, group.family)
		if len(nets) == 0 {
			continue
		}
		members := map[Class][]address.CIDR{}
		for _, c := range nets {
			for _, class := range classifier.Classes(c) {
				members[class] = append(members[class], c)
			}
		}
		fmt.Fprintf(w, "%s Networks:\n", group.family)
		for _, class := range group.classes {
			if len(members[class]) > 0 {
				fmt.Fprintf(w, "  * %s: %s\n", class, Join(members[class]))
			}
		}
	}
}

// PrintSummary counts the blocks and distinct addresses of each family.
func PrintSummary(w io.Writer, cidrs []address.CIDR) {
	for _, f := range []address.Family{address.IPv4, address.IPv6} {
		nets := byFamily(cidrs, f)
		total := new(big.Int)
		for _, r := range address.Union(nets) {
			total.Add(total, r.Size())
		}
		fmt.Fprintf(w, "%s: %d blocks, %s addresses\n", f, len(nets), total)
	}
}
