package main

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
)

// version is stamped at build time.
var version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes one CLI invocation through fang, which prints any returned error.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli := newCLI(streams{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		getenv: os.Getenv,
		now:    time.Now,
	})
	defer cli.close()

	root := cli.command()
	root.SetArgs(args)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// streams carries the process I/O and environment a command runs against.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	now    func() time.Time
}

// parseBoolEnv parses a boolean environment value and reports whether it was set.
func parseBoolEnv(getenv func(string) string, name string) (bool, bool) {
	raw := strings.TrimSpace(getenv(name))
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}

// isTerminal reports whether w is an interactive character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
