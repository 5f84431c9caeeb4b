// Package config defines the synthesizer chip profile used by the planner and
// provides helpers to load, validate and save it in YAML format.
//
// The Profile type holds the operating limits (VCO range, divider windows,
// fractional denominator bound). Default returns the Si5351 limits; a YAML
// file can override individual fields for experiments.
package config
