package log

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rxlab.dev/toolbox/lib/fsext"
)

type nopCloser struct {
	io.Writer
	closed chan struct{}
}

func (nc *nopCloser) Close() error {
	close(nc.closed)
	return nil
}

func TestFileHookFromConfigLine(t *testing.T) {
	t.Parallel()

	tests := [...]struct {
		line       string
		err        bool
		errMessage string
		levels     []logrus.Level
	}{
		{
			line: "file",
			err:  true,
		},
		{
			line:   "file=/rxtk.log,level=info",
			levels: logrus.AllLevels[:5],
		},
		{
			line:   "file=rxtk.log",
			levels: logrus.AllLevels,
		},
		{
			line:       "file=/a/c/",
			err:        true,
			errMessage: "provided directory '/a/c' does not exist",
		},
		{
			line: "file=,level=info",
			err:  true,
		},
		{
			line:       "file=/tmp/rxtk.log,level=tea",
			err:        true,
			errMessage: "unknown log level tea",
		},
		{
			line: "file=/tmp/rxtk.log,unknown",
			err:  true,
		},
		{
			line: "file=/tmp/rxtk.log,level=",
			err:  true,
		},
		{
			line: "file=/tmp/rxtk.log,level=,",
			err:  true,
		},
		{
			line:       "file=/rxtk.log,unknown=something",
			err:        true,
			errMessage: "unknown logfile config key unknown",
		},
		{
			line:       "unknown=something",
			err:        true,
			errMessage: "logfile configuration should be in the form `file=path-to-local-file` but is `unknown=something`",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.line, func(t *testing.T) {
			t.Parallel()

			getCwd := func() (string, error) {
				return "/", nil
			}

			res, err := FileHookFromConfigLine(fsext.NewMemMapFs(), getCwd, logrus.New(), test.line)

			if test.err {
				require.Error(t, err)

				if test.errMessage != "" {
					require.Equal(t, test.errMessage, err.Error())
				}

				return
			}

			require.NoError(t, err)
			hook, ok := res.(*fileHook)
			require.True(t, ok)
			assert.NotNil(t, hook.w)
			assert.Equal(t, test.levels, hook.Levels())
		})
	}
}

func TestFileHookListen(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	nc := &nopCloser{
		Writer: &buffer,
		closed: make(chan struct{}),
	}

	hook := &fileHook{
		loglines:       make(chan []byte, fileHookBufferSize),
		w:              nc,
		bw:             bufio.NewWriter(nc),
		levels:         logrus.AllLevels,
		fallbackLogger: logrus.New(),
	}

	logger := logrus.New()
	logger.AddHook(hook)
	logger.SetOutput(io.Discard)

	logger.Info("example log line")
	logger.WithField("plan", "Simple test").Warn("second line")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hook.Listen(ctx)
		close(done)
	}()
	cancel()
	<-done
	<-nc.closed

	assert.Contains(t, buffer.String(), "example log line")
	assert.Contains(t, buffer.String(), "second line")
	assert.Contains(t, buffer.String(), "plan=\"Simple test\"")
}

func TestFileHookWritesThroughFs(t *testing.T) {
	t.Parallel()

	fs := fsext.NewMemMapFs()
	getCwd := func() (string, error) { return "/work", nil }
	require.NoError(t, fs.MkdirAll("/work", 0o755))

	hook, err := FileHookFromConfigLine(fs, getCwd, logrus.New(), "file=rxtk.log,level=warning")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(hook)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hook.Listen(ctx)
		close(done)
	}()

	logger.Info("dropped")
	logger.Warn("kept")
	cancel()
	<-done

	data, err := fsext.ReadFile(fs, "/work/rxtk.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
	assert.NotContains(t, string(data), "dropped")
}
