package naming

const (
	// DefaultFallbackPrefix is applied when no prefix rule matches a record type.
	DefaultFallbackPrefix = "A_"
)

// PrefixRule maps a type tag to the prefix records of that type must carry.
type PrefixRule struct {
	TypeTag string `mapstructure:"type" yaml:"type"`
	Prefix  string `mapstructure:"prefix" yaml:"prefix"`
}

// Configuration describes the naming convention.
type Configuration struct {
	DefaultPrefix     string       `mapstructure:"default_prefix"`
	PlaceholderTokens []string     `mapstructure:"placeholder_tokens"`
	Prefixes          []PrefixRule `mapstructure:"prefixes"`
}

// DefaultConfiguration returns the stock prefix table and placeholder tokens.
func DefaultConfiguration() Configuration {
	return Configuration{
		DefaultPrefix:     DefaultFallbackPrefix,
		PlaceholderTokens: []string{"New", "Untitled"},
		Prefixes: []PrefixRule{
			{TypeTag: "StaticMesh", Prefix: "SM_"},
			{TypeTag: "MaterialInstance", Prefix: "MI_"},
			{TypeTag: "Material", Prefix: "M_"},
			{TypeTag: "Texture", Prefix: "T_"},
			{TypeTag: "Blueprint", Prefix: "BP_"},
			{TypeTag: "Sound", Prefix: "S_"},
		},
	}
}
