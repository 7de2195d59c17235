// Package config loads, normalizes, and validates milelog configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MILELOG_STORE. The Config type centralizes every knob the engine, the CLI,
// and the HTTP server need: where the record store lives, the trend and
// clustering parameters, the vehicle registry, and the residual label groups.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical class names, and clear validation errors.
package config
