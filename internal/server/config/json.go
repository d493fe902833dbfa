package config

import (
	"encoding/json"
	"os"

	"github.com/docsnap/docsnap/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct.
type JsonConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	DatabaseDSN      string `json:"database_dsn"`
	S3RootUser       string `json:"s3_root_user"`
	S3RootPassword   string `json:"s3_root_password"`
	S3Bucket         string `json:"s3_bucket"`
	S3Region         string `json:"s3_region"`
	S3BaseEndpoint   string `json:"s3_base_endpoint"`
	PublicBaseURL    string `json:"public_base_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path is taken from the -c or -config command-line flags.
// If neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics: a config file that was asked
// for but cannot be used is a startup error.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.PublicBaseURL != "" {
		config.PublicBaseURL = c.PublicBaseURL
	}
}
