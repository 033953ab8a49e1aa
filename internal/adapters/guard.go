// Package adapters fetches data from, and runs actions against, the Laravel
// application the dashboard watches. Every call returns plain records or an
// error; panics are converted to errors by Guard before they reach the UI.
package adapters

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the data source is not configured or missing.
	ErrUnavailable = errors.New("source unavailable")
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// Guard runs fn and turns a panic inside it into an error.
func Guard[T any](op string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = fmt.Errorf("%s: panic: %v", op, r)
		}
	}()
	result, err = fn()
	if err != nil {
		err = fmt.Errorf("%s: %w", op, err)
	}
	return result, err
}

// GuardErr is Guard for calls that only return an error.
func GuardErr(op string, fn func() error) error {
	_, err := Guard(op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
