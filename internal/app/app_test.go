package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/retest/internal/app"
	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/retest/internal/core/ports"
	"go.trai.ch/retest/internal/core/ports/mocks"
	"go.trai.ch/retest/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type appTestMocks struct {
	discoverer *mocks.MockDiscoverer
	executor   *mocks.MockExecutor
	asserter   *mocks.MockAsserter
	logger     *mocks.MockLogger
}

func setupApp(t *testing.T) (*app.App, appTestMocks, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	ctrl := gomock.NewController(t)

	m := appTestMocks{
		discoverer: mocks.NewMockDiscoverer(ctrl),
		executor:   mocks.NewMockExecutor(ctrl),
		asserter:   mocks.NewMockAsserter(ctrl),
		logger:     mocks.NewMockLogger(ctrl),
	}

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()

	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	sched := scheduler.NewScheduler(m.executor, m.asserter, tracer, m.logger)

	stdout := &bytes.Buffer{}
	application := app.New(m.discoverer, sched, m.logger).WithOutput(stdout, &bytes.Buffer{})
	return application, m, stdout
}

func taskIn(root, rel string) *domain.Task {
	return &domain.Task{
		Path:      filepath.Join(root, rel),
		RelPath:   rel,
		Name:      "case",
		Extension: "sh",
		Config:    domain.Config{ExePath: "sh"},
	}
}

func TestRun_AllPassing(t *testing.T) {
	application, m, stdout := setupApp(t)
	root := t.TempDir()

	m.discoverer.EXPECT().Discover(gomock.Any(), gomock.Any()).
		Return([]*domain.Task{taskIn(root, "case.sh")}, nil)
	m.executor.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.Outcome{}, nil)
	m.asserter.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(nil)

	err := application.Run(context.Background(), app.RunOptions{RootDir: root, Permits: 1})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "test result: ok. 1 passed")
}

func TestRun_FailureMapsToTasksFailed(t *testing.T) {
	application, m, stdout := setupApp(t)
	root := t.TempDir()

	m.discoverer.EXPECT().Discover(gomock.Any(), gomock.Any()).
		Return([]*domain.Task{taskIn(root, "case.sh")}, nil)
	m.executor.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.Outcome{ExitCode: 1}, nil)
	m.asserter.EXPECT().Evaluate(gomock.Any(), gomock.Any()).
		Return([]domain.Failure{{Kind: domain.FailExitCode, Message: "expected 0, got 1"}})

	err := application.Run(context.Background(), app.RunOptions{RootDir: root, Permits: 1})
	require.ErrorIs(t, err, domain.ErrTasksFailed)
	assert.Contains(t, stdout.String(), "1 failed")
}

func TestRun_DiscoveryErrorIsSetupFailure(t *testing.T) {
	application, m, _ := setupApp(t)
	root := t.TempDir()

	m.discoverer.EXPECT().Discover(gomock.Any(), gomock.Any()).
		Return(nil, zerr.Wrap(domain.ErrConfigParse, "bad file"))

	err := application.Run(context.Background(), app.RunOptions{RootDir: root})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTasksFailed)
	assert.ErrorIs(t, err, domain.ErrConfigParse)
}

func TestRun_MissingRootIsSetupFailure(t *testing.T) {
	application, _, _ := setupApp(t)

	err := application.Run(context.Background(), app.RunOptions{RootDir: "/no/such/tree"})
	require.ErrorIs(t, err, domain.ErrSetupFailed)
}

// The permit pool honors a larger total configured by an __all__.toml.
func TestRun_PoolSizeFromConfig(t *testing.T) {
	application, m, stdout := setupApp(t)
	root := t.TempDir()

	big := taskIn(root, "case.sh")
	big.Config.Permits = 8
	big.Config.Permit = 5

	m.discoverer.EXPECT().Discover(gomock.Any(), gomock.Any()).
		Return([]*domain.Task{big}, nil)
	m.executor.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.Outcome{}, nil)
	m.asserter.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(nil)

	err := application.Run(context.Background(), app.RunOptions{RootDir: root, Permits: 1})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "1 passed")
}

func TestClean(t *testing.T) {
	application, _, _ := setupApp(t)

	workDir := filepath.Join(t.TempDir(), "work")
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "nested"), 0o750))

	require.NoError(t, application.Clean(context.Background(), workDir))
	assert.NoDirExists(t, workDir)
}
