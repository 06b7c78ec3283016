// Package main is the entry point for the urlcoupons CLI.
package main

import "github.com/mesh-intelligence/urlcoupons/internal/cli"

func main() {
	cli.Execute()
}
