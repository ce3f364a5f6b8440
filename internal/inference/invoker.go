package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Sly695/GymEasIA/internal/config"
	"github.com/Sly695/GymEasIA/internal/models"
)

// Result is the structured output of one inference round trip.
// Contract with the external process: a single line of JSON on stdout,
// {ok, reps, confidence, notes, raw} on success or {ok:false, error} on
// logical failure.
type Result struct {
	OK         bool           `json:"ok"`
	Reps       int            `json:"reps"`
	Confidence float64        `json:"confidence"`
	Notes      string         `json:"notes"`
	Raw        models.JSONMap `json:"raw"`
	Error      string         `json:"error"`
}

// InvocationError reports a failed round trip to the inference process:
// the process could not be started, exited non-zero, produced unparseable
// output, or reported its own failure.
type InvocationError struct {
	Message  string
	ExitCode int
	Stderr   string
	Err      error
}

// Error formats invocation failures for logs.
func (e *InvocationError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("inference invocation failed: %s (exit=%d)", e.Message, e.ExitCode)
	}
	return fmt.Sprintf("inference invocation failed: %s", e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// Invoker performs one synchronous round trip to the external inference
// process per call. No retries are attempted at this layer.
type Invoker struct {
	pythonBin  string
	scriptPath string
	runner     commandRunner
}

// NewInvoker constructs the production invoker.
func NewInvoker(cfg config.InferenceConfig) *Invoker {
	return &Invoker{
		pythonBin:  cfg.PythonBin,
		scriptPath: cfg.ScriptPath,
		runner:     &execRunner{},
	}
}

// Invoke runs the inference process against a local video file and parses
// its stdout. The caller bounds the call with a context deadline; on expiry
// the subprocess is killed.
func (i *Invoker) Invoke(ctx context.Context, videoPath string) (*Result, error) {
	out, err := i.runner.Run(ctx, i.pythonBin, i.scriptPath, "--video", videoPath)
	if err != nil {
		return nil, &InvocationError{
			Message:  "process failed",
			ExitCode: out.ExitCode,
			Stderr:   out.Stderr,
			Err:      err,
		}
	}

	line := strings.TrimSpace(out.Stdout)
	if line == "" {
		return nil, &InvocationError{Message: "empty output"}
	}

	var result Result
	if err := json.Unmarshal([]byte(line), &result); err != nil {
		return nil, &InvocationError{Message: "unparseable output", Err: err}
	}

	if !result.OK {
		msg := result.Error
		if msg == "" {
			msg = "inference reported failure"
		}
		return nil, &InvocationError{Message: msg}
	}

	if result.Raw == nil {
		result.Raw = models.JSONMap{}
	}
	return &result, nil
}
