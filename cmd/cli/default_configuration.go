package cli

import (
	"bytes"
	_ "embed"
)

//go:embed default_config.yaml
var guardianDefaultsYAML []byte

// EmbeddedDefaultConfiguration returns a private copy of the built-in guardian
// defaults together with the viper configuration type used to decode them.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(guardianDefaultsYAML), configurationTypeConstant
}
