package log

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"go.rxlab.dev/toolbox/lib/fsext"
)

// fileHookBufferSize is the number of formatted entries a fileHook buffers
// before Fire blocks.
const fileHookBufferSize = 100

// fileConfig is the parsed form of a `file=<path>[,level=<level>]` line.
type fileConfig struct {
	path   string
	levels []logrus.Level
}

func parseFileConfig(line string) (fileConfig, error) {
	conf := fileConfig{levels: logrus.AllLevels}
	if output, _, _ := strings.Cut(line, "="); output != "file" {
		return conf, fmt.Errorf("logfile configuration should be in the form `file=path-to-local-file` but is `%s`", line)
	}

	tokens, err := tokenize(line)
	if err != nil {
		return conf, fmt.Errorf("error while parsing logfile configuration %w", err)
	}
	for _, t := range tokens {
		switch t.key {
		case "file":
			conf.path = t.value
		case "level":
			if conf.levels, err = parseLevels(t.value); err != nil {
				return conf, err
			}
		default:
			return conf, fmt.Errorf("unknown logfile config key %s", t.key)
		}
	}
	return conf, nil
}

// fileHook appends formatted entries to a log file. Fire only queues the
// entry; Listen does the writing.
type fileHook struct {
	fallbackLogger logrus.FieldLogger
	loglines       chan []byte
	w              io.WriteCloser
	bw             *bufio.Writer
	levels         []logrus.Level
}

// FileHookFromConfigLine returns a hook appending log entries to the file
// named in line, `file=<path>[,level=<level>]`. Relative paths are resolved
// against getCwd and the parent directory must exist.
func FileHookFromConfigLine(
	fsys fsext.Fs, getCwd func() (string, error),
	fallbackLogger logrus.FieldLogger, line string,
) (AsyncHook, error) {
	conf, err := parseFileConfig(line)
	if err != nil {
		return nil, err
	}

	file, err := openLogFile(fsys, getCwd, conf.path)
	if err != nil {
		return nil, err
	}

	return &fileHook{
		fallbackLogger: fallbackLogger,
		loglines:       make(chan []byte, fileHookBufferSize),
		w:              file,
		bw:             bufio.NewWriter(file),
		levels:         conf.levels,
	}, nil
}

func openLogFile(fsys fsext.Fs, getCwd func() (string, error), path string) (io.WriteCloser, error) {
	if !filepath.IsAbs(path) {
		cwd, err := getCwd()
		if err != nil {
			return nil, fmt.Errorf("'%s' is a relative path but could not determine CWD: %w", path, err)
		}
		path = filepath.Join(cwd, path)
	}

	dir := filepath.Dir(path)
	if _, err := fsys.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("provided directory '%s' does not exist", dir)
	}

	file, err := fsys.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open logfile %s: %w", path, err)
	}
	return file, nil
}

// Listen writes queued entries until ctx is done. Entries still queued at
// that point are written before the file is closed.
func (h *fileHook) Listen(ctx context.Context) {
	for {
		select {
		case line := <-h.loglines:
			h.write(line)
		case <-ctx.Done():
			h.close()
			return
		}
	}
}

func (h *fileHook) close() {
	for pending := true; pending; {
		select {
		case line := <-h.loglines:
			h.write(line)
		default:
			pending = false
		}
	}

	if err := h.bw.Flush(); err != nil {
		h.fallbackLogger.Errorf("failed to flush buffer: %s", err)
	}
	if err := h.w.Close(); err != nil {
		h.fallbackLogger.Errorf("failed to close logfile: %s", err)
	}
}

func (h *fileHook) write(line []byte) {
	if _, err := h.bw.Write(line); err != nil {
		h.fallbackLogger.Errorf("failed to write a log message to a logfile: %s", err)
	}
}

// Fire queues the formatted entry for Listen.
func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Bytes()
	if err != nil {
		return fmt.Errorf("failed to get a log entry bytes: %w", err)
	}
	h.loglines <- line
	return nil
}

// Levels implements logrus.Hook.
func (h *fileHook) Levels() []logrus.Level {
	return h.levels
}
