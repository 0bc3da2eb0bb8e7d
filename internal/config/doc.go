// Package config loads and stores the YAML configuration file for the
// wayopenfan tooling, following platform conventions for its location.
package config
