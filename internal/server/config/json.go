package config

import (
	"encoding/json"
	"os"

	"github.com/vkraskov/contactsync/internal/flagx"
	"github.com/vkraskov/contactsync/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. It uses timex.Duration for interval fields, which
// parses both string values such as "30s" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDriver   string         `json:"database_driver"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	SweepInterval    timex.Duration `json:"sweep_interval"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When no flag is given, nothing
// is loaded. An unreadable or malformed file panics: the process cannot run
// with a half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SweepInterval = c.SweepInterval.Duration
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
