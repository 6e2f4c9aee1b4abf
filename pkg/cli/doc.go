// Package cli contains shared helpers for the command-line interface:
// typed command errors, output formatting, and signal handling.
package cli
