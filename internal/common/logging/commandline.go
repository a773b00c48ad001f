package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig controls the optional rotated log file written next to the console output.
type FileConfig struct {
	// Location of the logfile on disk. File logging is disabled if empty.
	Path string
	// Maximum size in megabytes of the log file before it gets rotated
	MaxSizeMb int
	// Maximum number of old log files to retain
	MaxBackups int
	// Maximum number of days to retain old log files
	MaxAgeDays int
}

// ConfigureCommandLineLogging sets up logrus for interactive use: messages only, on stdout, info level.
func ConfigureCommandLineLogging() {
	log.SetFormatter(&CommandLineFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

// SetVerbose switches the standard logger to debug level.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// AddFileLogging attaches a hook to the standard logger that writes every entry, with timestamps and
// fields, to a lumberjack-rotated file. The returned closer flushes and closes the file.
func AddFileLogging(config FileConfig) (io.Closer, error) {
	if config.Path == "" {
		return nopCloser{}, nil
	}
	if config.MaxSizeMb < 0 || config.MaxBackups < 0 || config.MaxAgeDays < 0 {
		return nil, errors.Errorf("invalid log rotation settings for %s: sizes and ages must not be negative", config.Path)
	}
	writer := &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMb,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
	}
	log.AddHook(NewWriterHook(writer, &log.TextFormatter{FullTimestamp: true, DisableColors: true}))
	return writer, nil
}

// WriterHook copies log entries to an additional writer using its own formatter.
type WriterHook struct {
	writer    io.Writer
	formatter log.Formatter
	levels    []log.Level
}

func NewWriterHook(writer io.Writer, formatter log.Formatter) *WriterHook {
	return &WriterHook{writer: writer, formatter: formatter, levels: log.AllLevels}
}

func (h *WriterHook) Levels() []log.Level {
	return h.levels
}

func (h *WriterHook) Fire(entry *log.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
