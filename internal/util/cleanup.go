package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// InterruptContext returns a context canceled on SIGINT/SIGTERM. Callers
// clean up with CleanupUnfinishedTempFolders once their workers stopped.
func InterruptContext(parent context.Context, log io.Writer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sig)
		select {
		case <-sig:
			fmt.Fprintln(log, "\nInterrupt received. Cleaning up...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func CleanupUnfinishedTempFolders(outputDir string, log io.Writer) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return
	}

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || !strings.HasSuffix(name, "_tmp") {
			continue
		}

		full := filepath.Join(outputDir, name)
		if err := os.RemoveAll(full); err != nil {
			fmt.Fprintf(log, "Error cleaning up %s: %v\n", full, err)
		} else {
			fmt.Fprintf(log, "Removed %s\n", full)
		}
	}
}

func RemoveIfEmpty(dir string, log io.Writer) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}

	if err := os.Remove(dir); err == nil {
		fmt.Fprintf(log, "Removed empty output folder: %s\n", dir)
	}
}

func CleanupFolder(folder string) {
	_ = os.RemoveAll(folder)
}
