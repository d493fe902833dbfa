package config

import (
	"encoding/json"
	"os"

	"github.com/docsnap/docsnap/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Values are
// copied into the runtime Config afterwards.
type JsonConfig struct {
	ServerURL string `json:"server_url"`
	OutputDir string `json:"output_dir"`
	Mobile    *bool  `json:"mobile"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; with neither present nothing is
// loaded. Read or unmarshal errors panic, config problems should stop the
// binary before it does anything.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.OutputDir != "" {
		cfg.OutputDir = jc.OutputDir
	}
	if jc.Mobile != nil {
		cfg.Mobile = *jc.Mobile
	}
}
