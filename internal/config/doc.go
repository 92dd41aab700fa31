// Package config defines the immutable configuration for a claim run.
//
// A [Config] is loaded once at startup from, in increasing precedence, the
// built-in defaults, an optional YAML file and the process environment
// (after a local .env file has been applied). It is validated with
// [Config.Validate] and then passed explicitly to every component.
//
// The wizard subpackage collects the same settings interactively and writes
// them back as YAML.
package config
