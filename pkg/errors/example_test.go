// Package errors provides examples of structured error handling in recycler.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/ajitpratap0/recycler/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeConflict, "pool already registered").
		WithDetail("pool", "Bullet")

	fmt.Println(err.Error())
	fmt.Println(err.Details["pool"])

	// Output:
	// conflict: pool already registered
	// Bullet
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	err := errors.Wrap(io.EOF, errors.ErrorTypeConfig, "failed to read pool config")

	if errors.IsType(err, errors.ErrorTypeConfig) {
		fmt.Println("This is a config error")
	}
	if stderrors.Is(err, io.EOF) {
		fmt.Println("Original error was EOF")
	}

	// Output:
	// This is a config error
	// Original error was EOF
}

// ExampleGetType demonstrates classifying lookup failures.
func ExampleGetType() {
	missing := errors.Newf(errors.ErrorTypeNotFound, "pool %s not found", "Spark")
	foreign := io.ErrUnexpectedEOF

	fmt.Println(errors.GetType(missing))
	fmt.Println(errors.GetType(foreign))

	// Output:
	// not_found
	// internal
}
