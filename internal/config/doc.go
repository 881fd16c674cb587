// Package config defines the configuration of the desktop integration
// procedure and its YAML persistence.
//
// Every path and launcher attribute lives in an explicit Config struct
// populated once at startup and passed to each step. All fields default
// sensibly, so a configuration file is optional.
package config
