package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/metrics"
)

const (
	// maxStdoutBytes caps scorer output to prevent memory exhaustion.
	maxStdoutBytes = 1 << 20 // 1 MB

	// maxStderrBytes caps captured diagnostics.
	maxStderrBytes = 64 * 1024

	// DefaultGracePeriod bounds how long to wait for the process to exit
	// after its output streams are closed.
	DefaultGracePeriod = 5 * time.Second
)

// Request is the payload written to the scorer's stdin. It is immutable
// once built; field names are the scorer wire contract.
type Request struct {
	Cards          []domain.CardSummary `json:"cards"`
	PrimaryColor   string               `json:"primary_color"`
	SecondaryColor string               `json:"secondary_color"`
}

// Process invokes the external scorer. Each call to Invoke spawns one
// subprocess, exchanges a JSON request/response over its standard streams,
// and guarantees the process is gone on every exit path.
type Process struct {
	path   string
	args   []string
	grace  time.Duration
	logger *zap.Logger
}

// NewProcess creates a scorer over the given command line, e.g.
// ("python3", "score_cards.py").
func NewProcess(path string, args []string, grace time.Duration, logger *zap.Logger) *Process {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Process{
		path:   path,
		args:   args,
		grace:  grace,
		logger: logger,
	}
}

// Invoke runs one scoring round and returns the recommended card names in
// the order the scorer ranked them. The deadline bounds the whole exchange;
// firing the parent context cancels it the same way.
func (p *Process) Invoke(ctx context.Context, req *Request, deadline time.Duration) ([]string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", domain.ErrScorer, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cmd := exec.CommandContext(runCtx, p.path, p.args...)

	// Run the scorer in its own process group so stray children die with it.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return nil
	}
	// Bounded wait for exit once the context fires or stdout closes.
	cmd.WaitDelay = p.grace

	// The payload is written to stdin and the pipe closed at EOF, which
	// signals end of input to the scorer. Stdout and stderr are drained
	// concurrently into capped buffers, so neither stream can fill its
	// pipe and deadlock the child.
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr limitedBuffer
	stdout.limit = maxStdoutBytes
	stderr.limit = maxStderrBytes
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)
	metrics.ScorerDuration.Observe(elapsed.Seconds())

	// Sweep any process-group stragglers. By now the scorer itself has
	// been reaped on every path, including timeout and cancellation.
	if cmd.Process != nil {
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	if diag := strings.TrimSpace(stderr.String()); diag != "" {
		p.logger.Debug("Scorer diagnostics",
			zap.String("stderr", diag),
			zap.Duration("elapsed", elapsed),
		)
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrJobCancelled, context.Cause(ctx))
	}
	if runCtx.Err() == context.DeadlineExceeded {
		p.logger.Warn("Scorer timed out, process killed",
			zap.Duration("deadline", deadline),
		)
		return nil, fmt.Errorf("%w: timed out after %s", domain.ErrScorer, deadline)
	}
	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("%w: %v", domain.ErrScorer, runErr)
		}
		// Non-zero exit is not a failure by itself; only the output decides.
	}

	names, err := parseOutput(stdout.String())
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Scorer completed",
		zap.Int("recommendations", len(names)),
		zap.Duration("elapsed", elapsed),
	)
	return names, nil
}

// parseOutput decodes stdout as a JSON array of card names. Empty or
// malformed output is a scorer failure regardless of the exit code.
func parseOutput(out string) ([]string, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, fmt.Errorf("%w: empty output", domain.ErrScorer)
	}
	var names []string
	if err := json.Unmarshal([]byte(out), &names); err != nil {
		return nil, fmt.Errorf("%w: malformed output: %v", domain.ErrScorer, err)
	}
	return names, nil
}

// limitedBuffer is a bytes.Buffer that stops accepting writes after a limit.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (lb *limitedBuffer) Write(p []byte) (n int, err error) {
	if lb.truncated {
		return len(p), nil // discard silently
	}

	remaining := lb.limit - lb.buf.Len()
	if remaining <= 0 {
		lb.truncated = true
		return len(p), nil
	}

	if len(p) > remaining {
		lb.truncated = true
		lb.buf.Write(p[:remaining])
		// Report the full length so the copier does not treat the cap as
		// a short write.
		return len(p), nil
	}

	return lb.buf.Write(p)
}

func (lb *limitedBuffer) String() string {
	return lb.buf.String()
}
