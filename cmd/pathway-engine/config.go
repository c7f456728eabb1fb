package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/pathway-engine/pkg/types"
)

// setConfigDefaults registers every configuration key so that config files
// and PATHWAY_ENGINE_* environment variables can override it.
func setConfigDefaults(v *viper.Viper) {
	d := types.DefaultPipelineConfig()

	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.user_agent", d.Search.UserAgent)
	v.SetDefault("search.search_depth", d.Search.SearchDepth)
	v.SetDefault("search.max_retries", d.Search.MaxRetries)

	v.SetDefault("generation.model", d.Generation.Model)
	v.SetDefault("generation.timeout", d.Generation.Timeout)
	v.SetDefault("generation.max_retries", d.Generation.MaxRetries)

	v.SetDefault("enhancement.model", d.Enhancement.Model)
	v.SetDefault("enhancement.timeout", d.Enhancement.Timeout)
	v.SetDefault("enhancement.max_retries", d.Enhancement.MaxRetries)
	v.SetDefault("enhancement.disabled", d.Enhancement.Disabled)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.environment", d.Server.Environment)
}

// loadConfig decodes the merged configuration.
func loadConfig(v *viper.Viper) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}
