package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/iplist/net/address"
	"github.com/weaveworks/iplist/reader"
)

func cidrs(ss ...string) []address.CIDR {
	result := make([]address.CIDR, len(ss))
	for i, s := range ss {
		result[i] = mustCIDR(s)
	}
	return result
}

func TestClasses(t *testing.T) {
	c := NewClassifier()
	for _, tc := range []struct {
		cidr string
		want []Class
	}{
		{"10.1.0.0/16", []Class{Private}},
		{"8.8.8.0/24", []Class{Global}},
		{"127.0.0.1/32", []Class{Private, Loopback}},
		{"169.254.1.0/24", []Class{LinkLocal, Private}},
		{"224.0.0.0/24", []Class{Global, Multicast}},
		{"240.0.0.0/8", []Class{Private, Reserved}},
		{"0.0.0.0/32", []Class{Private, Unspecified}},
		{"100.64.0.0/16", nil},
		{"10.0.0.0/7", []Class{Global}},
		{"::1/128", []Class{Private, Loopback, Reserved}},
		{"fe80::/64", []Class{LinkLocal, Private}},
		{"fec0::/16", []Class{SiteLocal, Global}},
		{"2001:db8::/48", []Class{Private}},
		{"2a00:1450::/32", []Class{Global}},
		{"ff02::/16", []Class{Global, Multicast}},
		{"::ffff:10.0.0.0/104", []Class{Private, Reserved}},
	} {
		assert.Equal(t, tc.want, c.Classes(mustCIDR(tc.cidr)), tc.cidr)
	}
}

func TestPrintFlat(t *testing.T) {
	var buf bytes.Buffer
	PrintFlat(&buf, cidrs("10.0.0.0/8", "2001:db8::/32", "192.168.0.0/16"))
	require.Equal(t, "IPv4 Networks: 10.0.0.0/8,192.168.0.0/16\nIPv6 Networks: 2001:db8::/32\n", buf.String())

	buf.Reset()
	PrintInputs(&buf, cidrs("10.0.0.0/8"), nil)
	require.Equal(t, "Networks to add: 10.0.0.0/8\nNetworks to subtract: \n", buf.String())
}

func TestPrintGrouped(t *testing.T) {
	var buf bytes.Buffer
	PrintGrouped(&buf, cidrs("10.0.0.0/8", "8.8.8.0/24", "127.0.0.0/8"), NewClassifier())
	require.Equal(t, `IPv4 Networks:
  * Private: 10.0.0.0/8,127.0.0.0/8
  * Global: 8.8.8.0/24
  * Loopback: 127.0.0.0/8
`, buf.String())

	buf.Reset()
	PrintGrouped(&buf, cidrs("2a00:1450::/32"), NewClassifier())
	require.Equal(t, "IPv6 Networks:\n  * Global: 2a00:1450::/32\n", buf.String())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, cidrs("10.0.0.0/24", "10.0.0.0/25", "::/0"))
	require.Equal(t, "IPv4: 2 blocks, 256 addresses\nIPv6: 1 blocks, 340282366920938463463374607431768211456 addresses\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{"": "", "TXT": Text, "text": Text, "csv": CSV, "json": JSON, "yml": YAML, "yaml": YAML} {
		f, err := ParseFormat(name)
		require.NoError(t, err, name)
		require.Equal(t, want, f, name)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)

	require.Equal(t, JSON, FormatForFile("out.JSON"))
	require.Equal(t, YAML, FormatForFile("out.yml"))
	require.Equal(t, Text, FormatForFile("out.list"))
	require.Equal(t, Text, FormatForFile("out"))
}

func TestWrite(t *testing.T) {
	result := cidrs("10.0.0.0/8", "2001:db8::/32")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Text, result))
	require.Equal(t, "10.0.0.0/8\n2001:db8::/32\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, CSV, result))
	require.Equal(t, "10.0.0.0/8\n2001:db8::/32\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, JSON, result))
	require.JSONEq(t, `{"ipv4": ["10.0.0.0/8"], "ipv6": ["2001:db8::/32"]}`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, YAML, cidrs("10.0.0.0/8")))
	require.YAMLEq(t, "ipv4: [10.0.0.0/8]\nipv6: []\n", buf.String())

	require.Error(t, Write(&buf, Format("xml"), result))
}

// Every document format reads back into the same specifiers.
func TestWriteFileRoundTrip(t *testing.T) {
	result := cidrs("10.0.0.0/8", "192.168.1.0/24", "2001:db8::/32")
	for _, f := range Formats {
		path := filepath.Join(t.TempDir(), "result."+string(f))
		require.NoError(t, WriteFile(path, "", result))

		specs, err := reader.All(reader.ForFile(path, nil))
		require.NoError(t, err, f)
		require.Equal(t, []string{"10.0.0.0/8", "192.168.1.0/24", "2001:db8::/32"}, specs, f)
	}
}

func TestWriteFileError(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.txt"), Text, nil)
	require.Error(t, err)
	require.True(t, os.IsNotExist(errors.Cause(err)))
}
