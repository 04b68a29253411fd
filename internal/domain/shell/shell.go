package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/retrodesk/internal/domain/vfs"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/retrodesk/internal/shared/paths"
)

// User is the name reported by whoami
const User = "guest"

// Filesystem is the part of the virtual filesystem the shell uses
type Filesystem interface {
	Resolve(expr string, cwd []string) ([]string, error)
	ReadFile(path []string) (string, error)
	IsDir(path []string) bool
	ListDir(path []string) ([]string, error)
	Mkdir(ctx context.Context, path []string) error
}

// Result is the outcome of one command line
type Result struct {
	Output []string `json:"output"`
	Cwd    []string `json:"cwd"`
	Clear  bool     `json:"clear,omitempty"`
}

type command struct {
	name string
	run  func(s *Shell, ctx context.Context, cwd, args []string) Result
}

// Shell executes command lines
type Shell struct {
	fs       Filesystem
	commands []command
	now      func() time.Time
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// New creates a shell over fs
func New(fs Filesystem, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shell{fs: fs, now: time.Now, logger: logger}
	s.commands = []command{
		{name: "help", run: (*Shell).help},
		{name: "whoami", run: (*Shell).whoami},
		{name: "date", run: (*Shell).date},
		{name: "ls", run: (*Shell).ls},
		{name: "cat", run: (*Shell).cat},
		{name: "clear", run: (*Shell).clear},
		{name: "pwd", run: (*Shell).pwd},
		{name: "cd", run: (*Shell).cd},
		{name: "mkdir", run: (*Shell).mkdir},
		{name: "echo", run: (*Shell).echo},
	}
	return s
}

// WithMetrics adds metrics tracking to the shell
func (s *Shell) WithMetrics(metrics *monitoring.Metrics) *Shell {
	s.metrics = metrics
	return s
}

// WithClock replaces the time source used by date
func (s *Shell) WithClock(now func() time.Time) *Shell {
	s.now = now
	return s
}

// Commands returns the command names in help order
func (s *Shell) Commands() []string {
	names := make([]string, len(s.commands))
	for i, c := range s.commands {
		names[i] = c.name
	}
	return names
}

// Exec runs one command line in cwd. An empty or invalid cwd means home.
func (s *Shell) Exec(ctx context.Context, cwd []string, line string) Result {
	if len(cwd) == 0 || cwd[0] != paths.Home {
		cwd = []string{paths.Home}
	}
	cwd = append([]string(nil), cwd...)

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{Cwd: cwd}
	}
	name, args := fields[0], fields[1:]

	for _, c := range s.commands {
		if c.name != name {
			continue
		}
		timer := monitoring.NewTimer(s.metrics, "shell", name)
		res := c.run(s, ctx, cwd, args)
		timer.Stop("ok")
		if res.Cwd == nil {
			res.Cwd = cwd
		}
		s.logger.Debug("Shell command",
			zap.String("command", name),
			zap.Int("args", len(args)),
			zap.String("cwd", paths.Join(res.Cwd)))
		return res
	}

	return Result{Output: []string{"command not found: " + name}, Cwd: cwd}
}

func (s *Shell) help(_ context.Context, _ []string, _ []string) Result {
	return lines("Available commands: " + strings.Join(s.Commands(), ", "))
}

func (s *Shell) whoami(_ context.Context, _ []string, _ []string) Result {
	return lines(User)
}

func (s *Shell) date(_ context.Context, _ []string, _ []string) Result {
	return lines(s.now().Format(time.UnixDate))
}

func (s *Shell) pwd(_ context.Context, cwd []string, _ []string) Result {
	return lines(paths.Join(cwd))
}

func (s *Shell) echo(_ context.Context, _ []string, args []string) Result {
	return lines(strings.Join(args, " "))
}

func (s *Shell) clear(_ context.Context, cwd []string, _ []string) Result {
	return Result{Cwd: cwd, Clear: true}
}

func (s *Shell) ls(_ context.Context, cwd []string, args []string) Result {
	target := cwd
	expr := "."
	if len(args) > 0 {
		expr = args[0]
		resolved, err := s.fs.Resolve(expr, cwd)
		if err != nil {
			return lines(fmt.Sprintf("ls: %s: No such file or directory", expr))
		}
		target = resolved
	}

	names, err := s.fs.ListDir(target)
	switch {
	case errors.Is(err, vfs.ErrNotDirectory):
		return lines(target[len(target)-1])
	case err != nil:
		return lines(fmt.Sprintf("ls: %s: No such file or directory", expr))
	}
	return lines(strings.Join(names, "  "))
}

func (s *Shell) cat(_ context.Context, cwd []string, args []string) Result {
	if len(args) == 0 {
		return lines("usage: cat [file]")
	}
	name := args[0]
	missing := lines(fmt.Sprintf("cat: %s: No such file or directory", name))

	target, err := s.fs.Resolve(name, cwd)
	if err != nil {
		return missing
	}
	if s.fs.IsDir(target) {
		return lines(name + ": is a directory")
	}
	content, err := s.fs.ReadFile(target)
	if err != nil {
		return missing
	}
	return lines(strings.Split(content, "\n")...)
}

func (s *Shell) cd(_ context.Context, cwd []string, args []string) Result {
	expr := paths.Home
	if len(args) > 0 {
		expr = args[0]
	}

	target, err := s.fs.Resolve(expr, cwd)
	if err != nil || !s.fs.IsDir(target) {
		return Result{Output: []string{"cd: no such file or directory: " + expr}, Cwd: cwd}
	}
	return Result{Cwd: target}
}

func (s *Shell) mkdir(ctx context.Context, cwd []string, args []string) Result {
	if len(args) == 0 {
		return lines("usage: mkdir [path]")
	}
	expr := args[0]

	target, err := Absolute(expr, cwd)
	if err != nil {
		return lines(fmt.Sprintf("mkdir: %s: invalid path", expr))
	}
	if err := s.fs.Mkdir(ctx, target); err != nil {
		if errors.Is(err, vfs.ErrNotDirectory) {
			return lines(fmt.Sprintf("mkdir: %s: Not a directory", expr))
		}
		s.logger.Warn("mkdir failed", zap.String("path", paths.Join(target)), zap.Error(err))
		return lines(fmt.Sprintf("mkdir: %s: %v", expr, err))
	}
	return Result{}
}

// Absolute normalizes expr against cwd without requiring any segment to
// exist, for commands that create paths.
func Absolute(expr string, cwd []string) ([]string, error) {
	var out []string
	parts := strings.Split(expr, paths.Separator)
	switch {
	case strings.HasPrefix(expr, paths.Separator):
		out = []string{paths.Home}
	case parts[0] == paths.Home:
		out = []string{paths.Home}
		parts = parts[1:]
	default:
		out = append(out, cwd...)
	}

	for _, part := range parts {
		switch part {
		case "", ".":
		case "..":
			if len(out) > 1 {
				out = out[:len(out)-1]
			}
		default:
			if err := paths.ValidateSegment(part); err != nil {
				return nil, err
			}
			if part == paths.Home {
				return nil, fmt.Errorf("%w: %q may only appear first", paths.ErrInvalidPath, paths.Home)
			}
			out = append(out, part)
		}
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("%w: %s", paths.ErrInvalidPath, expr)
	}
	return out, nil
}

func lines(out ...string) Result {
	return Result{Output: out}
}
