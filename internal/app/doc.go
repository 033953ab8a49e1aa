// Package app wires configuration, adapters, panels and the terminal into a
// running dashboard.
package app
