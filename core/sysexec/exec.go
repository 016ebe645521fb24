package sysexec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/npillmayer/swiftglyph/core"
)

// Result is the outcome of a finished program.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner starts external programs. Run returns an error only if the
// program could not be run to completion; a non-zero exit code is reported
// in the result.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs programs as sub-processes.
type ExecRunner struct {
	Dir string // working directory, current directory if empty
}

// Run starts a program and waits for it to terminate. Cancelling ctx kills
// the process.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	tracer().Debugf("exec %s %s", name, strings.Join(args, " "))
	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		tracer().Debugf("%s exited with code %d", name, res.ExitCode)
		return res, nil
	}
	if err != nil {
		res.ExitCode = -1
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return res, err
	}
	return res, nil
}

// Check converts the outcome of a run into an error with code
// core.EEXTERNALTOOL, if the program could not be run or exited with a
// non-zero code.
func Check(tool string, res Result, err error) error {
	if err != nil {
		return core.WrapError(err, core.EEXTERNALTOOL, "%s failed: %v", tool, err)
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(string(res.Stderr))
		if msg == "" {
			msg = "no message"
		}
		return core.Error(core.EEXTERNALTOOL, "%s exited with code %d: %s", tool, res.ExitCode, msg)
	}
	return nil
}

// RunChecked runs a program and checks the outcome.
func RunChecked(ctx context.Context, r Runner, name string, args ...string) (Result, error) {
	res, err := r.Run(ctx, name, args...)
	return res, Check(filepath.Base(name), res, err)
}

// LookPath locates an executable. An absolute path is checked for being an
// executable file, other names are searched for in $PATH.
func LookPath(name string) (string, error) {
	if name == "" {
		return "", core.Error(core.EEXTERNALTOOL, "no executable configured")
	}
	if !filepath.IsAbs(name) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", core.WrapError(err, core.EEXTERNALTOOL, "%s not found in PATH", name)
		}
		return path, nil
	}
	fi, err := os.Stat(name)
	if err != nil {
		return "", core.WrapError(err, core.EEXTERNALTOOL, "executable not found: %s", name)
	}
	if fi.IsDir() || fi.Mode().Perm()&0111 == 0 {
		return "", core.Error(core.EEXTERNALTOOL, "not an executable: %s", name)
	}
	return name, nil
}
