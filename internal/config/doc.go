// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Every section is optional; a missing database host runs the service with
// in-memory preferences and no decision journal.
package config
