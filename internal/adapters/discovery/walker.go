// Package discovery walks the task tree, folds the hierarchical config
// along the way and pairs every matching file with its effective
// configuration.
package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/retest/internal/adapters/config"
	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/retest/internal/core/ports"
	"go.trai.ch/zerr"
)

// Stems ending in one of these segments are sidecars of another task, not
// tasks themselves (for example case.stdout.txt under a txt extension).
var sidecarStems = map[string]bool{
	".toml":   true,
	".stdout": true,
	".stderr": true,
	".status": true,
	".report": true,
}

// Walker implements ports.Discoverer over the local filesystem.
type Walker struct {
	Loader *config.Loader
	Logger ports.Logger
}

var _ ports.Discoverer = (*Walker)(nil)

// NewWalker creates a new Walker.
func NewWalker(loader *config.Loader, logger ports.Logger) *Walker {
	return &Walker{Loader: loader, Logger: logger}
}

// Discover performs the depth-first walk. Files of a directory are visited
// in name order before its subdirectories, so the result is stable across
// runs for a fixed tree. Every config or discovery error is collected; any
// error aborts the run before scheduling.
func (w *Walker) Discover(ctx context.Context, req ports.DiscoveryRequest) ([]*domain.Task, error) {
	for _, pattern := range slices.Concat(req.Include, req.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(domain.ErrBadGlob, "pattern", pattern)
		}
	}

	var workRoot string
	if req.WorkRoot != "" {
		workRoot, _ = filepath.Abs(req.WorkRoot)
	}

	s := &walkState{
		walker:   w,
		req:      req,
		workRoot: workRoot,
	}
	s.walk(ctx, req.Root, config.NewResolved(req.Base, "cli"))

	if len(s.errs) > 0 {
		return nil, errors.Join(s.errs...)
	}
	return s.tasks, nil
}

type walkState struct {
	walker   *Walker
	req      ports.DiscoveryRequest
	workRoot string
	tasks    []*domain.Task
	errs     []error
}

func (s *walkState) walk(ctx context.Context, dir string, res config.Resolved) {
	if ctx.Err() != nil {
		return
	}

	allPath := filepath.Join(dir, domain.AllConfigName)
	if _, err := os.Stat(allPath); err == nil {
		folded, err := s.walker.Loader.Apply(res, allPath, config.ScopeAll)
		if err != nil {
			s.errs = append(s.errs, err)
			return
		}
		res = folded
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.errs = append(s.errs, zerr.With(zerr.Wrap(err, domain.ErrReadDir.Error()), "dir", dir))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		s.visitFile(filepath.Join(dir, entry.Name()), res)
	}

	for _, entry := range entries {
		if !entry.IsDir() || s.skipDir(filepath.Join(dir, entry.Name()), entry.Name()) {
			continue
		}
		s.walk(ctx, filepath.Join(dir, entry.Name()), res)
	}
}

func (s *walkState) skipDir(path, name string) bool {
	if name == domain.GoldenDirName {
		return true
	}
	if s.workRoot == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	return err == nil && abs == s.workRoot
}

func (s *walkState) visitFile(path string, res config.Resolved) {
	name := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" || !slices.Contains(res.Config.Extensions, ext) {
		return
	}

	stem := strings.TrimSuffix(name, "."+ext)
	if sidecarStems[filepath.Ext(stem)] {
		return
	}

	rel, err := filepath.Rel(s.req.Root, path)
	if err != nil {
		s.errs = append(s.errs, zerr.With(zerr.Wrap(err, domain.ErrReadDir.Error()), "file", path))
		return
	}

	task := &domain.Task{
		Path:      path,
		RelPath:   rel,
		Name:      stem,
		Extension: ext,
	}

	keep, err := s.kept(rel)
	if err != nil {
		s.errs = append(s.errs, err)
		return
	}
	if !keep {
		task.Filtered = true
		s.tasks = append(s.tasks, task)
		return
	}

	taskRes := res
	sibling := filepath.Join(filepath.Dir(path), stem+".toml")
	if _, statErr := os.Stat(sibling); statErr == nil {
		if taskRes, err = s.walker.Loader.Apply(res, sibling, config.ScopeTask); err != nil {
			s.errs = append(s.errs, err)
			return
		}
	}

	cfg, err := config.Finalize(taskRes.Config, task.Vars(s.req.Root))
	if err != nil {
		s.errs = append(s.errs, zerr.With(err, "task", rel))
		return
	}
	task.Config = cfg

	if s.req.Debug {
		taskRes.Config = cfg
		task.ConfigDump = config.Dump(taskRes)
		s.walker.Logger.Debug("resolved config for " + rel + "\n" + string(task.ConfigDump))
	}

	s.tasks = append(s.tasks, task)
}

// kept applies the include/exclude globs against the root-relative path.
func (s *walkState) kept(rel string) (bool, error) {
	rel = filepath.ToSlash(rel)

	if len(s.req.Include) > 0 {
		matched := false
		for _, pattern := range s.req.Include {
			ok, err := doublestar.Match(pattern, rel)
			if err != nil {
				return false, zerr.With(domain.ErrBadGlob, "pattern", pattern)
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}

	for _, pattern := range s.req.Exclude {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, zerr.With(domain.ErrBadGlob, "pattern", pattern)
		}
		if ok {
			return false, nil
		}
	}
	return true, nil
}
