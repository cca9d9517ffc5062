package command

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	return executeCommandWithInput(cmd, strings.NewReader(""), args...)
}

func executeCommandWithInput(cmd *cobra.Command, input io.Reader, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(input)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// isolate keeps user config files and environment out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

func TestRootCommandVersion(t *testing.T) {
	isolate(t)
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd, "--version")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(output, "imsgexport version test") {
		t.Fatalf("expected version output, got %q", output)
	}
}

func TestRootCommandWithoutPathsShowsHelpAndFails(t *testing.T) {
	isolate(t)
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd)
	if err == nil {
		t.Fatal("expected error when no paths are given")
	}

	if !strings.Contains(output, "one JSON document per") {
		t.Fatalf("expected help output, got %q", output)
	}
	if !strings.Contains(output, "please supply both --input and --output") {
		t.Fatalf("expected usage error, got %q", output)
	}
}

func TestRootCommandRejectsBadLogLevel(t *testing.T) {
	isolate(t)
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd, "--log-level", "loud", "threads", "--input", "x.db")
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if !strings.Contains(output, `invalid log level "loud"`) {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestRootCommandMissingConfigFile(t *testing.T) {
	isolate(t)
	cmd := NewRootCmd("test")

	output, err := executeCommand(cmd, "--config", "nope.toml", "threads", "--input", "x.db")
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !strings.HasPrefix(output, "Error: ") {
		t.Fatalf("expected error prefix, got %q", output)
	}
}
