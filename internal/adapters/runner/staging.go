package runner

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/zerr"
)

// stage materializes the task's work directory: a fresh directory holding
// a link to __golden__/, every {{name}}* companion except the sidecar
// config, and the extern-file matches. Symlinks are preferred; on
// filesystems that refuse them the file is copied and the fallback is
// recorded in the returned mode.
func stage(task *domain.Task, workDir string) (domain.LinkMode, error) {
	mode := domain.LinkSymlink

	if err := os.RemoveAll(workDir); err != nil {
		return mode, zerr.With(zerr.Wrap(err, "failed to clean work directory"), "dir", workDir)
	}
	if err := os.MkdirAll(workDir, domain.DirPerm); err != nil {
		return mode, zerr.With(zerr.Wrap(err, "failed to create work directory"), "dir", workDir)
	}

	srcDir := task.SourceDir()

	goldenDir := task.GoldenDir()
	if info, err := os.Stat(goldenDir); err == nil && info.IsDir() {
		if err := link(goldenDir, filepath.Join(workDir, domain.GoldenDirName), &mode); err != nil {
			return mode, err
		}
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return mode, zerr.With(zerr.Wrap(err, domain.ErrReadDir.Error()), "dir", srcDir)
	}
	configName := task.Name + ".toml"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, task.Name) || name == configName {
			continue
		}
		if err := link(filepath.Join(srcDir, name), filepath.Join(workDir, name), &mode); err != nil {
			return mode, err
		}
	}

	for _, pattern := range task.Config.ExternFiles {
		matches, err := doublestar.FilepathGlob(filepath.Join(srcDir, pattern))
		if err != nil {
			return mode, zerr.With(domain.ErrBadGlob, "pattern", pattern)
		}
		for _, match := range matches {
			if err := link(match, filepath.Join(workDir, filepath.Base(match)), &mode); err != nil {
				return mode, err
			}
		}
	}

	return mode, nil
}

// link symlinks src to dst, copying instead when the filesystem refuses
// symlinks.
func link(src, dst string, mode *domain.LinkMode) error {
	abs, err := filepath.Abs(src)
	if err == nil {
		src = abs
	}
	if err := os.Symlink(src, dst); err == nil {
		return nil
	}

	*mode = domain.LinkCopy
	info, err := os.Stat(src)
	if err != nil {
		return linkErr(src, dst, err)
	}
	if info.IsDir() {
		return copyTree(src, dst)
	}
	return copyFile(src, dst)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return linkErr(src, dst, err)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return linkErr(src, dst, err)
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, domain.DirPerm)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- staging within the task's source tree
	if err != nil {
		return linkErr(src, dst, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, domain.FilePerm) // #nosec G304
	if err != nil {
		return linkErr(src, dst, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return linkErr(src, dst, err)
	}
	return nil
}

func linkErr(src, dst string, err error) error {
	err = zerr.Wrap(err, "failed to stage file")
	err = zerr.With(err, "src", src)
	return zerr.With(err, "dst", dst)
}
