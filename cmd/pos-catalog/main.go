// Command pos-catalog inspects and prepares catalog seed files for
// pos-server.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("pos-catalog failed", "error", err)
		os.Exit(1)
	}
}
