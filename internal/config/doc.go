// Package config loads, normalizes, and validates fileq configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the knobs
// the worker pool and CLI need: where pending tasks live, where finished
// tasks are archived, which shell runs task commands, and how diagnostics
// are written.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
