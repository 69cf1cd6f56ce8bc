package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"

	"github.com/leaderreps/testcenter/internal/config"
	"github.com/leaderreps/testcenter/internal/errors"
	"github.com/leaderreps/testcenter/internal/history"
	"github.com/leaderreps/testcenter/internal/output"
)

// out is the shared output writer for CLI commands.
var out = output.New()

// stdin is read when the input file is "-" or omitted.
var stdin io.Reader = os.Stdin

// Environment variables read by the CLI.
const (
	envVarEnv   = "TESTCENTER_ENV"
	envVarStore = "TESTCENTER_STORE"
	envNoColor  = "NO_COLOR"
)

// storeTimeout bounds how long a command waits for the store lock.
const storeTimeout = 10 * time.Second

// storeContext returns a context for one store operation.
func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// Help text alignment widths for consistent formatting.
const (
	helpFlagWidthShort  = 10 // Width for short flags like "-h, --help"
	helpFlagWidthGlobal = 22 // Width for flags like "--output=<format>"
)

// applyVerbosityToOutput configures the output writer based on verbosity settings.
func applyVerbosityToOutput(opts *GlobalOptions) {
	out.SetQuiet(opts.Quiet)
	out.SetVerbose(opts.Verbose)
	if opts.NoColor || os.Getenv(envNoColor) != "" {
		out.SetColor(false)
	}
}

// newLogger returns the diagnostic logger used by background operations.
func newLogger(opts *GlobalOptions) log.Logger {
	logger := log.NewLogger()
	logger.EnableDebugLog(opts.Verbose)
	return logger
}

// session is the resolved configuration a command runs with.
type session struct {
	opts       *GlobalOptions
	cfg        *config.Config
	configPath string // empty when no config file was found
	warnings   []string
	storeDir   string
	logger     log.Logger
}

// loadSession finds and validates the project config and resolves the
// store directory. Without a config file the defaults apply.
func loadSession(opts *GlobalOptions) (*session, error) {
	s := &session{opts: opts, logger: newLogger(opts)}

	path := opts.ConfigPath
	if path == "" {
		found, err := config.Find()
		switch {
		case err == nil:
			path = found
		case stderrors.Is(err, config.ErrNotFound):
		default:
			return nil, errors.WrapEnvironment(err, "locate config")
		}
	}

	if path == "" {
		s.cfg = config.Default()
	} else {
		cfg, warnings, err := config.LoadAndValidate(path)
		if err != nil {
			return nil, errors.WrapConfig(err, "invalid configuration "+path)
		}
		s.cfg, s.warnings, s.configPath = cfg, warnings, path
	}

	s.storeDir = s.cfg.Store.Dir
	if dir := os.Getenv(envVarStore); dir != "" {
		s.storeDir = dir
	}
	if opts.StoreDir != "" {
		s.storeDir = opts.StoreDir
	}
	return s, nil
}

// printWarnings prints config warnings once per command.
func (s *session) printWarnings() {
	for _, w := range s.warnings {
		out.Warning("%s", w)
	}
}

// resolveEnv picks the run environment: flag, TESTCENTER_ENV, the config
// file, the last used environment, then the default. An explicit choice
// must be a declared environment.
func (s *session) resolveEnv(command, flag string) (string, error) {
	env, source := flag, "--env"
	if env == "" {
		env, source = os.Getenv(envVarEnv), envVarEnv
	}
	if env == "" && s.cfg.EnvSet() {
		return s.cfg.Env, nil
	}
	if env == "" {
		if last := loadGlobalSettings().LastEnv; s.cfg.HasEnvironment(last) {
			return last, nil
		}
		return s.cfg.Env, nil
	}

	if !s.cfg.HasEnvironment(env) {
		return "", errors.Usagef(command, "%s: unknown environment %q (expected one of %s)",
			source, env, strings.Join(s.cfg.Environments, ", "))
	}
	return env, nil
}

// store returns the file store for the resolved directory.
func (s *session) store() *history.FileStore {
	return history.NewFileStore(s.storeDir)
}

// recorder returns a recorder over the file store.
func (s *session) recorder() *history.Recorder {
	return history.NewRecorder(s.store(), s.logger)
}

// storeError converts a persistence failure into a CLI error. Lock and
// permission problems are environment errors.
func storeError(err error, message string) error {
	if stderrors.Is(err, history.ErrLocked) || stderrors.Is(err, os.ErrPermission) {
		return errors.WrapEnvironment(err, message)
	}
	return errors.Wrap(err, message)
}

// fail prints err and returns its exit code.
func fail(err error) int {
	out.ErrorPrefix("%v", err)
	return errors.GetExitCode(err)
}

// readInput reads the file at path, or stdin when path is empty or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("read %s", filepath.Clean(path)))
	}
	return data, nil
}
