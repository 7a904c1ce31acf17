package commands_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/retest/cmd/retest/commands"
	"go.trai.ch/retest/internal/app"
)

// fakeApp captures the options the CLI hands to the application layer.
type fakeApp struct {
	runOpts  *app.RunOptions
	cleanDir *string
	runErr   error
}

func (f *fakeApp) Run(_ context.Context, opts app.RunOptions) error {
	f.runOpts = &opts
	return f.runErr
}

func (f *fakeApp) Clean(_ context.Context, workDir string) error {
	f.cleanDir = &workDir
	return nil
}

func execute(t *testing.T, fake *fakeApp, args ...string) error {
	t.Helper()
	cli := commands.New(fake)
	cli.SetArgs(args)
	cli.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	return cli.Execute(context.Background())
}

func TestRunCmd_Defaults(t *testing.T) {
	fake := &fakeApp{}
	require.NoError(t, execute(t, fake, "run", "tests"))

	require.NotNil(t, fake.runOpts)
	assert.Equal(t, "tests", fake.runOpts.RootDir)
	assert.Equal(t, "./tmp", fake.runOpts.WorkDir)
	assert.Equal(t, int64(1), fake.runOpts.Permits)
	assert.False(t, fake.runOpts.Debug)
	assert.False(t, fake.runOpts.Watch)
}

func TestRunCmd_AllFlags(t *testing.T) {
	fake := &fakeApp{}
	require.NoError(t, execute(t, fake, "run", "tests",
		"--work-dir", "/scratch",
		"--extensions", "sh,py",
		"--exe-path", "/bin/sh",
		"--args", "-e",
		"--args", "{{name}}.sh",
		"--permits", "4",
		"--include", "cases/**",
		"--exclude", "cases/broken/**",
		"--debug",
		"--print-errs",
		"--watch",
	))

	opts := fake.runOpts
	require.NotNil(t, opts)
	assert.Equal(t, "/scratch", opts.WorkDir)
	assert.Equal(t, []string{"sh", "py"}, opts.Extensions)
	assert.Equal(t, "/bin/sh", opts.ExePath)
	assert.Equal(t, []string{"-e", "{{name}}.sh"}, opts.Args)
	assert.Equal(t, int64(4), opts.Permits)
	assert.Equal(t, []string{"cases/**"}, opts.Include)
	assert.Equal(t, []string{"cases/broken/**"}, opts.Exclude)
	assert.True(t, opts.Debug)
	assert.True(t, opts.PrintErrs)
	assert.True(t, opts.Watch)
}

func TestRunCmd_RequiresRoot(t *testing.T) {
	fake := &fakeApp{}
	err := execute(t, fake, "run")
	require.Error(t, err)
	assert.Nil(t, fake.runOpts)
}

func TestCleanCmd(t *testing.T) {
	fake := &fakeApp{}
	require.NoError(t, execute(t, fake, "clean", "--work-dir", "/scratch"))
	require.NotNil(t, fake.cleanDir)
	assert.Equal(t, "/scratch", *fake.cleanDir)
}

func TestVersionCmd(t *testing.T) {
	fake := &fakeApp{}
	cli := commands.New(fake)
	out := &bytes.Buffer{}
	cli.SetArgs([]string{"version"})
	cli.SetOutput(out, &bytes.Buffer{})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), "retest version")
}
