package main

import (
	"io"
	"net"
	"os"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	// Listen opens the HTTP listener; tests bind to 127.0.0.1:0.
	Listen func(addr string) (net.Listener, error)
	// Ready is called with the bound address once the server accepts
	// connections.
	Ready func(addr string)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Listen: func(addr string) (net.Listener, error) { return net.Listen("tcp", addr) },
		Ready:  func(string) {},
	}
}
