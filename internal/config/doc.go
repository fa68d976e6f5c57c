// Package config holds docpipe's runtime configuration: built-in defaults,
// the optional YAML .docpipe file, and validation.
package config
