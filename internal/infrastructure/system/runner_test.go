package system

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	runner := NewLocalRunner("/bin/sh")
	ctx := context.Background()

	out, err := runner.Shell(ctx, "echo hello; echo oops >&2")
	require.NoError(t, err)
	assert.Equal(t, "hello\noops\n", out)

	_, err = runner.Shell(ctx, "echo broken >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit code 3: broken")

	out, err = runner.Run(ctx, "echo", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a b\n", out)

	assert.True(t, runner.LookPath("sh"))
	assert.False(t, runner.LookPath("definitely-not-a-real-program"))
}

func TestLocalRunner_ContextDeadline(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewLocalRunner("/bin/sh").Shell(ctx, "sleep 5")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestLocalRunner_ShellArgs(t *testing.T) {
	assert.Equal(t, []string{"-c", "ls"}, (&LocalRunner{shell: "/bin/bash"}).shellArgs("ls"))
	assert.Equal(t, []string{"/C", "dir"}, (&LocalRunner{shell: "cmd.exe"}).shellArgs("dir"))
	assert.Equal(t, []string{"-NoProfile", "-Command", "Get-Date"}, (&LocalRunner{shell: "pwsh"}).shellArgs("Get-Date"))
}
