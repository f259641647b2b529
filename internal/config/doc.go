// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// The partner API key may also come from ACENTA_API_KEY when the file leaves it empty.
package config
