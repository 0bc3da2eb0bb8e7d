// Package tui implements the interactive watch screen: a live view of
// every discovered fan with keyboard control of speed and power.
package tui
