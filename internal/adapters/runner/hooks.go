package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/zerr"
)

// runHooks executes the preprocess or postprocess commands in order,
// appending each command's outcome to the named log inside the work
// directory. A hook that cannot be launched fails the task; a hook that
// exits non-zero is recorded in the log and the run continues.
func runHooks(hooks []domain.Hook, env []string, workDir, logName string) error {
	if len(hooks) == 0 {
		return nil
	}

	logPath := filepath.Join(workDir, logName)
	logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, domain.FilePerm) // #nosec G304
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrHook.Error()), "log", logPath)
	}
	defer func() { _ = logFile.Close() }()

	for _, hook := range hooks {
		dir := hook.WorkDir
		if dir == "" {
			dir = workDir
		}

		cmd := exec.Command(hook.ExePath, hook.Args...) // #nosec G204 -- hooks are user configuration
		cmd.Dir = dir
		cmd.Env = env

		output, runErr := cmd.CombinedOutput()
		if runErr != nil {
			var exitErr *exec.ExitError
			if !errors.As(runErr, &exitErr) {
				err := zerr.Wrap(runErr, domain.ErrHook.Error())
				return zerr.With(err, "hook", hook.ExePath)
			}
			fmt.Fprintf(logFile, "[ERROR] %s %v (exit %d)\n", hook.ExePath, hook.Args, exitErr.ExitCode())
			_, _ = logFile.Write(output)
			fmt.Fprintln(logFile)
			continue
		}

		fmt.Fprintf(logFile, "[INFO] %s %v\n", hook.ExePath, hook.Args)
		_, _ = logFile.Write(output)
	}
	return nil
}
