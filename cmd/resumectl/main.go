package main

// Command-line client for the resume API:
//   go run ./cmd/resumectl --server http://localhost:8080 login -u ada -p secret
//   go run ./cmd/resumectl list

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
