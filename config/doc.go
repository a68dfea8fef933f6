// Package config loads seqkit configuration with Viper.
//
// Values come from, in increasing precedence: defaults, a YAML config file,
// a .env file and the process environment, and command-line flags. Only
// environment variables carrying the prefix (SEQKIT_ by default) are
// considered; SEQKIT_SAMPLE_STEP sets sample.step.
//
// # Usage
//
//	var cfg Config
//	err := config.LoadConfig("seqctl", &cfg,
//	    config.WithFlags(flags, map[string]string{"sample.step": "step"}))
package config
