package proc_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minishell/minish/core/proc"
	"github.com/minishell/minish/core/proc/proctest"
)

func newTestSupervisor(launcher *proctest.FakeLauncher, executables ...string) (*proc.Supervisor, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	return &proc.Supervisor{
		Launcher: launcher,
		Fs:       proctest.NewFsWithExecutables(executables...),
		Stdin:    strings.NewReader(""),
		Stdout:   stdout,
		Stderr:   stderr,
	}, stdout, stderr
}

func TestSpawnRunsLiteralPath(t *testing.T) {
	launcher := &proctest.FakeLauncher{
		Children: []*proctest.FakeChild{{ExitStatus: 3, Output: "child output\n"}},
	}
	supervisor, stdout, stderr := newTestSupervisor(launcher, "/bin/true")

	outcome, err := supervisor.Spawn("/bin/true")
	require.NoError(t, err)

	assert.Equal(t, 3, outcome.ExitStatus)
	assert.Equal(t, []string{"/bin/true"}, launcher.Calls)
	assert.Equal(t, "child output\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestSpawnExecFailures(t *testing.T) {
	cases := map[string]struct {
		command string
	}{
		// A delimiter makes the whole line an unresolvable path.
		"delimiter":      {command: "/bin/echo hello"},
		"missing":        {command: "/bin/nope"},
		"directory":      {command: "/bin"},
		"not executable": {command: "/etc/passwd"},
		"empty":          {command: ""},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			launcher := &proctest.FakeLauncher{}
			supervisor, _, stderr := newTestSupervisor(launcher, "/bin/echo", "/bin/true")
			require.NoError(t, supervisor.Fs.MkdirAll("/bin", 0755))
			require.NoError(t, afero.WriteFile(supervisor.Fs, "/etc/passwd", []byte("root:x:0:0"), 0644))

			outcome, err := supervisor.Spawn(tc.command)

			var spawnErr *proc.SpawnError
			require.ErrorAs(t, err, &spawnErr)
			assert.Equal(t, proc.StageExec, spawnErr.Stage)
			assert.Equal(t, tc.command, spawnErr.Command)

			// The child "ran" only far enough to fail its exec.
			assert.Equal(t, 1, outcome.ExitStatus)
			assert.Contains(t, stderr.String(), "exec failed: ")
			assert.Empty(t, launcher.Calls, "no child may be started")
		})
	}
}

func TestSpawnCreateFailure(t *testing.T) {
	launcher := &proctest.FakeLauncher{StartErr: errors.New("resource temporarily unavailable")}
	supervisor, _, stderr := newTestSupervisor(launcher, "/bin/true")

	outcome, err := supervisor.Spawn("/bin/true")

	var spawnErr *proc.SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, proc.StageCreate, spawnErr.Stage)
	assert.Equal(t, -1, outcome.ExitStatus)
	assert.Contains(t, stderr.String(), "fork failed: resource temporarily unavailable")
}

func TestSpawnWaitFailure(t *testing.T) {
	launcher := &proctest.FakeLauncher{
		Children: []*proctest.FakeChild{{WaitErr: errors.New("no child processes")}},
	}
	supervisor, _, stderr := newTestSupervisor(launcher, "/bin/true")

	outcome, err := supervisor.Spawn("/bin/true")

	var spawnErr *proc.SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, proc.StageWait, spawnErr.Stage)
	assert.Equal(t, -1, outcome.ExitStatus)
	assert.Contains(t, stderr.String(), "wait failed: no child processes")
}

func TestSpawnError(t *testing.T) {
	wrapped := errors.New("boom")
	err := &proc.SpawnError{Stage: proc.StageCreate, Command: "/bin/true", Err: wrapped}

	assert.Equal(t, `spawn "/bin/true": create: boom`, err.Error())
	assert.True(t, errors.Is(err, wrapped))
}
