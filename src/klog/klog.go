// Package klog is the kernel's logger: a level-filtered writer of
// formatted lines to the console, with no allocation-heavy structured
// logging machinery this freestanding environment can't support.
package klog

import (
	"fmt"
	"io"
)

// Level is a logger verbosity threshold. Higher values are more verbose;
// a message is printed only if its own level is <= the logger's level.
type Level int

const (
	// Disabled suppresses every message.
	Disabled Level = iota
	// Error designates very serious, usually fatal, conditions.
	Error
	// Warning designates hazardous but recoverable situations.
	Warning
	// Info designates routine, useful information.
	Info
	// Debug designates low-priority diagnostic information.
	Debug
)

func (l Level) prefix() string {
	switch l {
	case Error:
		return "error: "
	case Warning:
		return "warning: "
	case Info:
		return "info: "
	case Debug:
		return "debug: "
	default:
		return ""
	}
}

// Logger writes level-filtered messages to an underlying console.
type Logger struct {
	Out   io.Writer
	Level Level
}

// Default is the kernel-wide logger, initialized to Info the way the
// original kernel's own default logger was.
var Default = &Logger{Level: Info}

// SetOutput directs the default logger's output to w.
func SetOutput(w io.Writer) { Default.Out = w }

// SetLevel adjusts the default logger's verbosity threshold.
func SetLevel(l Level) { Default.Level = l }

func (lg *Logger) log(level Level, format string, args ...any) {
	if lg.Out == nil || level > lg.Level || level == Disabled {
		return
	}
	fmt.Fprintf(lg.Out, level.prefix()+format+"\n", args...)
}

// Errorf logs a message at Error level.
func (lg *Logger) Errorf(format string, args ...any) { lg.log(Error, format, args...) }

// Warnf logs a message at Warning level.
func (lg *Logger) Warnf(format string, args ...any) { lg.log(Warning, format, args...) }

// Infof logs a message at Info level.
func (lg *Logger) Infof(format string, args ...any) { lg.log(Info, format, args...) }

// Debugf logs a message at Debug level.
func (lg *Logger) Debugf(format string, args ...any) { lg.log(Debug, format, args...) }

// Errorf logs a message at Error level to the default logger.
func Errorf(format string, args ...any) { Default.Errorf(format, args...) }

// Warnf logs a message at Warning level to the default logger.
func Warnf(format string, args ...any) { Default.Warnf(format, args...) }

// Infof logs a message at Info level to the default logger.
func Infof(format string, args ...any) { Default.Infof(format, args...) }

// Debugf logs a message at Debug level to the default logger.
func Debugf(format string, args ...any) { Default.Debugf(format, args...) }
