package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags_OverridesSelectedFields(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin",
		"-a", ":9999",
		"-r", "sqlite",
		"-d", "file.db",
		"-s", "flag_secret",
		"-i", "45s",
		"-b", "flag_bucket",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "file.db", cfg.DatabaseDSN)
	assert.Equal(t, "flag_secret", cfg.SecretKey)
	assert.Equal(t, 45*time.Second, cfg.SweepInterval)
	assert.Equal(t, "flag_bucket", cfg.S3Bucket)

	// untouched flags keep their defaults
	assert.Equal(t, "admin", cfg.S3RootUser)
	assert.Equal(t, "us-east-1", cfg.S3Region)
}

func Test_parseFlags_NoFlagsKeepDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin"}

	cfg := &Config{}
	cfg.LoadDefaults()
	before := *cfg
	parseFlags(cfg)

	assert.Equal(t, before, *cfg)
}
