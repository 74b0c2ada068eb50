// Package config provides configuration types and loading for dynfields.
//
// Configuration is read from a YAML file with environment variable
// substitution (${VAR} and ${VAR:-default}; $$ escapes a dollar sign),
// merged over DefaultConfig and checked with Validate.
//
//	cfg, err := config.LoadConfig("dynfields.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    log.Fatal(err)
//	}
//
//	sel, err := cfg.Profile("public")
//
// Named profiles are field selections reused across invocations.
package config
