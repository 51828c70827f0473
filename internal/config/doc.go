// Package config provides configuration defaults, the optional YAML
// configuration file and validation for onepage.
package config
