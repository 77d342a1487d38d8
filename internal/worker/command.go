package worker

import (
	"fmt"
	"os/exec"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/fremen-fi/audioshell/internal/config"
	"github.com/fremen-fi/audioshell/internal/operation"
)

// Command is the worker binary plus any fixed leading arguments, such as
// the script an interpreter should run.
type Command struct {
	Path   string
	Prefix []string
}

// Configured returns the development (interpreter + script) or packaged
// (standalone executable) worker as written in cfg, without looking it up.
func Configured(cfg config.Worker) Command {
	if cfg.DevMode {
		return Command{Path: cfg.Interpreter, Prefix: []string{cfg.Script}}
	}
	return Command{Path: cfg.Executable}
}

// Resolve is Configured plus a check that the binary can be found.
func Resolve(cfg config.Worker) (Command, error) {
	cmd := Configured(cfg)
	if strings.TrimSpace(cmd.Path) == "" {
		return Command{}, errors.New("worker command not configured")
	}
	resolved, err := exec.LookPath(cmd.Path)
	if err != nil {
		return Command{}, errors.Errorf("worker %q not found: %w", cmd.Path, err)
	}
	cmd.Path = resolved
	return cmd, nil
}

// Argv returns the full argument list for req, without the binary.
func (c Command) Argv(req operation.Request) []string {
	args := make([]string, 0, len(c.Prefix)+3)
	args = append(args, c.Prefix...)
	return append(args, req.Args()...)
}

func (c Command) String() string {
	if len(c.Prefix) == 0 {
		return c.Path
	}
	return c.Path + " " + strings.Join(c.Prefix, " ")
}

// Exit codes the bundled worker uses. Only zero versus nonzero decides
// success; the rest is for log messages.
const (
	ExitOK          = 0
	ExitFailed      = 1
	ExitBadOp       = 2
	ExitBadArgCount = 3
)

// ExitReason describes a worker exit code.
func ExitReason(code int) string {
	switch code {
	case ExitOK:
		return "success"
	case ExitFailed:
		return "operation failed"
	case ExitBadOp:
		return "unknown operation"
	case ExitBadArgCount:
		return "wrong number of arguments"
	default:
		return fmt.Sprintf("exited with code %d", code)
	}
}
