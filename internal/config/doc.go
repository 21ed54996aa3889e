// Package config builds the immutable run configuration of the registry
// adapter. Values are resolved once, in order of precedence, from command-line
// flags, environment variables named by branding.EnvVar, an optional YAML config file and
// built-in defaults. The resulting Config is passed by value into the pipeline;
// nothing in this package holds process-wide state.
package config
