package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
)

// DefaultLogger writes through the standard log package. Debug and Info go
// to the regular output, Warn and above to the error output. With colors
// enabled warnings are yellow, errors red and fatal messages bold red.
// Fatal exits the process after writing
type DefaultLogger struct {
	out       *log.Logger
	errOut    *log.Logger
	level     Level
	fields    Fields
	useColors bool
	exit      func(code int)
}

var levelColors = map[Level]string{
	WarnLevel:  ColorYellow,
	ErrorLevel: ColorRed,
	FatalLevel: ColorBold + ColorRed,
}

// NewDefaultLogger creates a logger on stdout and stderr, colored when
// stdout is a terminal
func NewDefaultLogger() *DefaultLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, isTerminal(os.Stdout))
}

// NewDefaultLoggerNoColor creates a logger on stdout and stderr without colors
func NewDefaultLoggerNoColor() *DefaultLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, false)
}

// NewWriterLogger creates a logger writing Debug/Info to out and Warn and
// above to errOut
func NewWriterLogger(out, errOut io.Writer, useColors bool) *DefaultLogger {
	return &DefaultLogger{
		out:       log.New(out, "", log.LstdFlags),
		errOut:    log.New(errOut, "", log.LstdFlags),
		level:     InfoLevel,
		fields:    Fields{},
		useColors: useColors,
		exit:      os.Exit,
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// format renders "[LEVEL] msg: err k=v ..." with keys in sorted order
func (d *DefaultLogger) format(level Level, err error, msg string, extra []Fields) string {
	merged := Fields{}
	maps.Copy(merged, d.fields)
	for _, f := range extra {
		maps.Copy(merged, f)
	}

	var b strings.Builder
	color, colored := levelColors[level]
	colored = colored && d.useColors
	if colored {
		b.WriteString(color)
	}
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if err != nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		fmt.Fprintf(&b, " %s=%v", k, merged[k])
	}
	if colored {
		b.WriteString(ColorReset)
	}
	return b.String()
}

func (d *DefaultLogger) log(level Level, err error, msg string, extra []Fields) {
	if level < d.level {
		return
	}
	w := d.out
	if level >= WarnLevel {
		w = d.errOut
	}
	w.Println(d.format(level, err, msg, extra))
	if level == FatalLevel {
		d.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) { d.log(DebugLevel, nil, msg, fields) }

func (d *DefaultLogger) Info(msg string, fields ...Fields) { d.log(InfoLevel, nil, msg, fields) }

func (d *DefaultLogger) Warn(msg string, fields ...Fields) { d.log(WarnLevel, nil, msg, fields) }

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields)
}

// WithFields returns a child logger sharing the outputs and level
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := *d
	child.fields = make(Fields, len(d.fields)+len(fields))
	maps.Copy(child.fields, d.fields)
	maps.Copy(child.fields, fields)
	return &child
}

// WithContext attaches the fields stored by ContextWithFields
func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields := FieldsFromContext(ctx); len(fields) > 0 {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards everything; the global logger becomes one when
// SetGlobalLogger is passed nil
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
