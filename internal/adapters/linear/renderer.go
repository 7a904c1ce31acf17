// Package linear provides the synchronous, line-oriented renderer used for
// CI and non-interactive runs: one line per verdict in completion order,
// then the failure list and summary in discovery order.
package linear

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/retest/internal/core/domain"
	"go.trai.ch/retest/internal/core/ports"
	"go.trai.ch/retest/internal/ui/output"
)

// Renderer implements ports.Renderer with plain line output.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	out    *termenv.Output

	mu sync.Mutex
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer creates a new Renderer. Verdict lines go to stdout, captured
// child output forwarded by print-errs goes to stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		out:    termenv.NewOutput(stdout, termenv.WithProfile(output.ColorProfileANSI())),
	}
}

// Start is a no-op; the renderer is synchronous.
func (r *Renderer) Start(_ context.Context) error { return nil }

// Stop is a no-op; every event is flushed as it arrives.
func (r *Renderer) Stop() error { return nil }

// Wait is a no-op; the renderer is synchronous.
func (r *Renderer) Wait() error { return nil }

// OnPlan prints the planned task count.
func (r *Renderer) OnPlan(total int, root string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.stdout, "running %d task(s) under %s\n", total, root)
}

// OnTaskStart is quiet in linear mode; admission is implicit in the
// verdict stream.
func (r *Renderer) OnTaskStart(string, time.Time) {}

// OnVerdict prints one verdict line.
func (r *Renderer) OnVerdict(v domain.Verdict) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.stdout, "test %s ... %s\n", v.RelPath, r.statusLabel(v.Status))
	if v.ReportPath != "" {
		fmt.Fprintf(r.stdout, "     report: %s\n", v.ReportPath)
	}
}

// OnTaskOutput forwards a failing task's captured streams to stderr.
func (r *Renderer) OnTaskOutput(relPath string, stdout, stderr []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.stderr, "---- %s stdout ----\n", relPath)
	_, _ = r.stderr.Write(stdout)
	fmt.Fprintf(r.stderr, "---- %s stderr ----\n", relPath)
	_, _ = r.stderr.Write(stderr)
}

// OnSummary prints the failure details in discovery order and the final
// summary line.
func (r *Renderer) OnSummary(s domain.Summary, verdicts []domain.Verdict) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var failed []domain.Verdict
	for _, v := range verdicts {
		switch v.Status {
		case domain.StatusPassed, domain.StatusIgnored, domain.StatusFiltered:
		default:
			failed = append(failed, v)
		}
	}

	if len(failed) > 0 {
		fmt.Fprintln(r.stdout, "\nfailures:")
		for _, v := range failed {
			fmt.Fprintf(r.stdout, "\n---- %s ----\n", v.RelPath)
			for _, f := range v.Failures {
				fmt.Fprintln(r.stdout, f.String())
			}
		}
		fmt.Fprintln(r.stdout)
	}
	fmt.Fprintln(r.stdout, r.colorSummary(s))
}

func (r *Renderer) statusLabel(status domain.Status) string {
	label := status.String()
	switch status {
	case domain.StatusPassed:
		return r.out.String(label).Foreground(termenv.ANSIGreen).String()
	case domain.StatusIgnored, domain.StatusFiltered:
		return r.out.String(label).Foreground(termenv.ANSIYellow).String()
	default:
		return r.out.String(label).Foreground(termenv.ANSIRed).String()
	}
}

func (r *Renderer) colorSummary(s domain.Summary) string {
	line := s.String()
	if s.Failed > 0 {
		return r.out.String(line).Foreground(termenv.ANSIRed).String()
	}
	return r.out.String(line).Foreground(termenv.ANSIGreen).String()
}
