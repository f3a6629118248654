// Package config centralizes configuration and path resolution for the ETL
// tools. Configuration is loaded from environment variables (ETL_ prefix)
// merged with an optional YAML file; paths all hang off a single data root.
package config
