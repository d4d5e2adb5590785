// Command sensorctl talks to the sensor relay.
//
// Usage:
//
//	sensorctl listen [--url ws://localhost:8081/ws] [--count N]
//	sensorctl emit '<json payload>' [--url ws://localhost:8081/ws]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
