package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "tinydsa.db", cfg.DBPath)
	assert.Equal(t, 65536, cfg.MaxAttempts)
	assert.Equal(t, uint64(2097152), cfg.PrimeBound)
	assert.Equal(t, 4, cfg.Workers)
	assert.Empty(t, cfg.Seed)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TINYDSA_LOG_LEVEL", "3")
	t.Setenv("TINYDSA_LOG_FORMAT", "json")
	t.Setenv("TINYDSA_SEED", "abc")
	t.Setenv("TINYDSA_PRIME_BOUND", "50000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "abc", cfg.Seed)
	assert.Equal(t, uint64(50000), cfg.PrimeBound)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tinydsa.json")
	data := `{"log_level": 2, "log_format": "json", "max_attempts": 100, "db_path": "x.db"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 100, cfg.MaxAttempts)
	assert.Equal(t, "x.db", cfg.DBPath)
	assert.Equal(t, uint64(2097152), cfg.PrimeBound)

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("TINYDSA_MAX_ATTEMPTS", "7")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.MaxAttempts)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.json"))
		require.ErrorContains(t, err, "failed to read config file")
	})
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		return Config{
			LogLevel:    1,
			LogFormat:   "console",
			MaxAttempts: 10,
			PrimeBound:  5000,
		}
	}

	cfg := valid()
	require.NoError(t, validateConfig(&cfg))
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "tinydsa.db", cfg.DBPath)

	cases := map[string]func(*Config){
		"log level":   func(c *Config) { c.LogLevel = 6 },
		"log format":  func(c *Config) { c.LogFormat = "xml" },
		"attempts":    func(c *Config) { c.MaxAttempts = 0 },
		"prime bound": func(c *Config) { c.PrimeBound = 999 },
		"indices":     func(c *Config) { c.MinIndex, c.MaxIndex = 10, 5 },
		"negative":    func(c *Config) { c.MinIndex = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			require.Error(t, validateConfig(&cfg))
		})
	}

	t.Run("env error surfaces", func(t *testing.T) {
		t.Setenv("TINYDSA_LOG_FORMAT", "xml")
		_, err := Load("")
		require.ErrorContains(t, err, "invalid config")
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TINYDSA_WORKERS=9\n"), 0o600))
	t.Setenv("TINYDSA_WORKERS", "")
	os.Unsetenv("TINYDSA_WORKERS")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Workers)
}

func TestTiny(t *testing.T) {
	cfg := Config{MaxAttempts: 12}
	tc := cfg.Tiny(nil, "keygen")
	assert.Equal(t, 12, tc.MaxAttempts)
	assert.Nil(t, tc.Rand)

	cfg.Seed = "s"
	a := cfg.Tiny(nil, "keygen")
	b := cfg.Tiny(nil, "keygen")
	require.NotNil(t, a.Rand)
	var ba, bb [32]byte
	_, _ = a.Rand.Read(ba[:])
	_, _ = b.Rand.Read(bb[:])
	assert.Equal(t, ba, bb)
}
