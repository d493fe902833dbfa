package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080", c.ServerURL)
	assert.Equal(t, ".", c.OutputDir)
	assert.False(t, c.Mobile)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:8080", c.ServerURL)
}

func Test_parseFlags_OverridesDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin",
		"-a", "https://photos.example.com",
		"-o", "/tmp/exports",
		"-m",
	}

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	assert.Equal(t, "https://photos.example.com", c.ServerURL)
	assert.Equal(t, "/tmp/exports", c.OutputDir)
	assert.True(t, c.Mobile)
}

func Test_parseJson_OverlaysFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"server_url":"https://photos.example.com","mobile":true}`), 0o600))

	os.Args = []string{"testbin", "-c", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "https://photos.example.com", c.ServerURL)
	assert.True(t, c.Mobile)
	// fields absent from the file keep their defaults
	assert.Equal(t, ".", c.OutputDir)
}

func Test_parseJson_NoFileIsNoop(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "http://localhost:8080", c.ServerURL)
}
