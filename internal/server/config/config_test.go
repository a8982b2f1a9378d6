package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, "s3", c.BlobStoreKind)
	assert.Equal(t, int64(10<<20), c.MaxUploadSize)
	assert.Equal(t, uint64(3), c.PublishRetries)
	assert.NotEmpty(t, c.DatabaseDSN)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"server", "-a", ":9999", "-k", "memory", "-m", "1048576"}

	c := LoadConfig()

	assert.Equal(t, ":9999", c.EndpointAddrHTTP)
	assert.Equal(t, "memory", c.BlobStoreKind)
	assert.Equal(t, int64(1048576), c.MaxUploadSize)
	// untouched fields keep defaults
	assert.Equal(t, uint64(3), c.PublishRetries)
}

func TestLoadConfig_UnknownFlagsIgnored(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"server", "-z", "whatever", "-a", ":7070"}

	c := LoadConfig()
	assert.Equal(t, ":7070", c.EndpointAddrHTTP)
}

func TestParseJson_PartialOverlay(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	f, err := os.CreateTemp(t.TempDir(), "conf*.json")
	require.NoError(t, err)
	_, err = f.WriteString(`{"database_dsn":"postgres://json/db","shutdown_timeout":"30s","publish_retries":5}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	os.Args = []string{"server", "-c", f.Name()}

	c := LoadConfig()

	assert.Equal(t, "postgres://json/db", c.DatabaseDSN)
	assert.Equal(t, uint64(5), c.PublishRetries)
	assert.Equal(t, "30s", c.ShutdownTimeout.String())
	// non-overlaid fields keep defaults
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
}
