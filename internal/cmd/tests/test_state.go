package tests

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/internal/ui/console"
	"go.rxlab.dev/toolbox/lib/fsext"
)

// GlobalTestState is a wrapper around GlobalState for use in tests.
type GlobalTestState struct {
	*state.GlobalState
	Cancel func()

	Stdout, Stderr *bytes.Buffer
	LoggerHook     *logtest.Hook

	Cwd string

	ExpectedExitCode int
}

// NewGlobalTestState returns an initialized GlobalTestState, mocking all
// GlobalState fields for use in tests. The file system is in memory and the
// working directory is Cwd.
func NewGlobalTestState(tb testing.TB) *GlobalTestState {
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)

	fs := fsext.NewMemMapFs()
	cwd := "/test/"
	require.NoError(tb, fs.MkdirAll(cwd, 0o755))

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetOutput(io.Discard)
	hook := logtest.NewLocal(logger)

	ts := &GlobalTestState{
		Cwd:        cwd,
		Cancel:     cancel,
		LoggerHook: hook,
		Stdout:     new(bytes.Buffer),
		Stderr:     new(bytes.Buffer),
	}

	osExitCalled := false
	defaultOsExitHandle := func(exitCode int) {
		cancel()
		osExitCalled = true
		assert.Equal(tb, ts.ExpectedExitCode, exitCode)
	}

	tb.Cleanup(func() {
		if ts.ExpectedExitCode > 0 {
			// Ensure that, if we expected to receive an error, our `os.Exit()` mock
			// function was actually called.
			assert.Truef(tb,
				osExitCalled,
				"expected exit code %d, but the os.Exit() mock was not called",
				ts.ExpectedExitCode,
			)
		}
	})

	outMutex := &sync.Mutex{}
	defaultFlags := state.GetDefaultGlobalOptions("/home/test/.config")
	defaultFlags.NoColor = true // disable color for tests

	fallbackLogger := logrus.New()
	fallbackLogger.SetOutput(io.Discard)

	ts.GlobalState = &state.GlobalState{
		Ctx:             ctx,
		FS:              fs,
		Getwd:           func() (string, error) { return ts.Cwd, nil },
		BinaryName:      "rxtk",
		CmdArgs:         []string{},
		Env:             map[string]string{},
		DefaultFlags:    defaultFlags,
		Flags:           defaultFlags,
		OutMutex:        outMutex,
		Stdout:          &console.Writer{Mutex: outMutex, Writer: ts.Stdout, IsTTY: false},
		Stderr:          &console.Writer{Mutex: outMutex, Writer: ts.Stderr, IsTTY: false},
		Stdin:           new(bytes.Buffer),
		OSExit:          defaultOsExitHandle,
		UserOSConfigDir: "/home/test/.config",
		Logger:          logger,
		FallbackLogger:  fallbackLogger.WithField("fallback", true),
	}

	return ts
}
