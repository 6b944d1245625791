package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    map[FeatureFlag]bool
		wantErr bool
	}{
		{
			name: "empty file uses defaults",
			yaml: "",
			want: map[FeatureFlag]bool{FlagFailingCI: true, FlagNetlifyPlaceholder: false},
		},
		{
			name: "overrides one flag",
			yaml: "featureFlags:\n  enableFailingCI: false\n",
			want: map[FeatureFlag]bool{FlagFailingCI: false, FlagNetlifyPlaceholder: false},
		},
		{
			name: "enables placeholder",
			yaml: "featureFlags:\n  enableNetlifyPlaceholder: true\n",
			want: map[FeatureFlag]bool{FlagFailingCI: true, FlagNetlifyPlaceholder: true},
		},
		{
			name: "unknown flag is dropped and known flags kept",
			yaml: "featureFlags:\n  enableFailingCI: false\n  enableVRT: true\n",
			want: map[FeatureFlag]bool{FlagFailingCI: false, FlagNetlifyPlaceholder: false},
		},
		{
			name:    "invalid yaml",
			yaml:    "featureFlags: [",
			wantErr: true,
		},
	}

	loader := NewLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loader.ParseRepoConfig([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.FeatureFlags)
		})
	}
}

func TestPruneUnknownFlags(t *testing.T) {
	cfg := &RepoConfig{FeatureFlags: map[FeatureFlag]bool{
		FlagFailingCI: false,
		"enableVRT":   true,
		"enableAlpha": true,
	}}

	unknown := NewLoader().PruneUnknownFlags(cfg)

	assert.Equal(t, []FeatureFlag{"enableAlpha", "enableVRT"}, unknown)
	assert.Equal(t, map[FeatureFlag]bool{FlagFailingCI: false}, cfg.FeatureFlags)
}

func TestRepoConfig_Enabled(t *testing.T) {
	var nilConfig *RepoConfig
	assert.True(t, nilConfig.Enabled(FlagFailingCI))
	assert.False(t, nilConfig.Enabled(FlagNetlifyPlaceholder))

	cfg := &RepoConfig{FeatureFlags: map[FeatureFlag]bool{FlagFailingCI: false}}
	assert.False(t, cfg.Enabled(FlagFailingCI))
	assert.False(t, cfg.Enabled("unknown"))
}

func TestDefaultRepoConfig_IsACopy(t *testing.T) {
	cfg := DefaultRepoConfig()
	cfg.FeatureFlags[FlagFailingCI] = false

	assert.True(t, DefaultRepoConfig().Enabled(FlagFailingCI))
}
