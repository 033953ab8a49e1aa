// Package state holds the latest result of each data fetch for the panels.
package state
