package session_test

import (
	"testing"

	"github.com/parley-ai/parley/session"
)

func TestDefaultGenerationConfig(t *testing.T) {
	cfg := session.DefaultGenerationConfig()

	if cfg.MaxOutputTokens != 2048 {
		t.Errorf("MaxOutputTokens = %d, want 2048", cfg.MaxOutputTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.StopSequences == nil || len(cfg.StopSequences) != 0 {
		t.Errorf("StopSequences = %v, want empty non-nil list", cfg.StopSequences)
	}
}

func TestGenerationConfig_Merge(t *testing.T) {
	tests := []struct {
		name   string
		source session.GenerationConfig
		want   session.GenerationConfig
	}{
		{
			name:   "zero source keeps defaults",
			source: session.GenerationConfig{},
			want:   session.DefaultGenerationConfig(),
		},
		{
			name:   "tokens only",
			source: session.GenerationConfig{MaxOutputTokens: 100},
			want:   session.GenerationConfig{MaxOutputTokens: 100, Temperature: 0.7, StopSequences: []string{}},
		},
		{
			name:   "all fields",
			source: session.GenerationConfig{MaxOutputTokens: 100, Temperature: 1.2, StopSequences: []string{"STOP"}},
			want:   session.GenerationConfig{MaxOutputTokens: 100, Temperature: 1.2, StopSequences: []string{"STOP"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := session.DefaultGenerationConfig()
			cfg.Merge(&tt.source)

			if cfg.MaxOutputTokens != tt.want.MaxOutputTokens {
				t.Errorf("MaxOutputTokens = %d, want %d", cfg.MaxOutputTokens, tt.want.MaxOutputTokens)
			}
			if cfg.Temperature != tt.want.Temperature {
				t.Errorf("Temperature = %v, want %v", cfg.Temperature, tt.want.Temperature)
			}
			if len(cfg.StopSequences) != len(tt.want.StopSequences) {
				t.Errorf("StopSequences = %v, want %v", cfg.StopSequences, tt.want.StopSequences)
			}
		})
	}
}

func TestGenerationConfig_MergeNil(t *testing.T) {
	cfg := session.DefaultGenerationConfig()
	cfg.Merge(nil)

	if cfg.MaxOutputTokens != 2048 || cfg.Temperature != 0.7 {
		t.Errorf("Merge(nil) changed config: %+v", cfg)
	}
}
