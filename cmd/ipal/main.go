// Package main is the entry point for the IPAL water quality monitor.
package main

import "ipal-monitor/cmd/ipal/cmd"

func main() {
	cmd.Execute()
}
