package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	Specifiers.WithLabelValues("test", "network").Add(3)
	SpecifierErrors.WithLabelValues("test", "range").Inc()
	Blocks.WithLabelValues("result").Inc()
	ExcludeSplits.Observe(4)

	require.Equal(t, 3.0, testutil.ToFloat64(Specifiers.WithLabelValues("test", "network")))

	path := filepath.Join(t.TempDir(), "iplist.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `iplist_specifiers_total{kind="network",set="test"} 3`)
	require.Contains(t, string(data), `iplist_specifier_errors_total{kind="range",set="test"} 1`)
	require.Contains(t, string(data), "# TYPE iplist_exclude_splits histogram")
}

func TestWriteTextfileError(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "iplist.prom"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "writing metrics to")
}
