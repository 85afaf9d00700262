package session

// Generation parameter defaults, applied when the caller does not supply
// a value.
const (
	DefaultMaxOutputTokens = 2048
	DefaultTemperature     = 0.7
)

// GenerationConfig is the tuple of model output controls recorded with a
// session and applied per invocation: maximum output tokens, sampling
// temperature, and stop sequences.
type GenerationConfig struct {
	MaxOutputTokens int      `json:"max_output_tokens" mapstructure:"max_output_tokens"`
	Temperature     float64  `json:"temperature" mapstructure:"temperature"`
	StopSequences   []string `json:"stop_sequences" mapstructure:"stop_sequences"`
}

// DefaultGenerationConfig returns the generation parameter defaults.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MaxOutputTokens: DefaultMaxOutputTokens,
		Temperature:     DefaultTemperature,
		StopSequences:   []string{},
	}
}

// Merge applies non-zero values from source into c. A zero temperature or
// token budget means "not supplied"; callers who need an explicit zero
// must use stop sequences or instructions to shape output instead.
func (c *GenerationConfig) Merge(source *GenerationConfig) {
	if source == nil {
		return
	}
	if source.MaxOutputTokens > 0 {
		c.MaxOutputTokens = source.MaxOutputTokens
	}
	if source.Temperature > 0 {
		c.Temperature = source.Temperature
	}
	if len(source.StopSequences) > 0 {
		c.StopSequences = source.StopSequences
	}
}
