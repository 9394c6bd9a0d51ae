package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// LogFormat represents the output format for logs
type LogFormat int

const (
	JSONFormat LogFormat = iota
	TextFormat
)

// LogEntry is the shape of one JSON log line
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	Function  string                 `json:"function,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger is a component-scoped structured logger writing through zerolog
type Logger struct {
	mu        sync.RWMutex
	level     LogLevel
	format    LogFormat
	output    io.Writer
	component string
	zl        zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level     LogLevel
	Format    LogFormat
	Output    io.Writer
	Component string
}

// New creates a new logger with the given configuration
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	l := &Logger{
		level:     config.Level,
		format:    config.Format,
		output:    config.Output,
		component: config.Component,
	}
	l.zl = newZerolog(l.output, l.format)
	return l
}

// NewDefault creates a logger with default configuration
func NewDefault() *Logger {
	return New(Config{
		Level:  INFO,
		Format: JSONFormat,
		Output: os.Stdout,
	})
}

func newZerolog(output io.Writer, format LogFormat) zerolog.Logger {
	if format == TextFormat {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:           output,
			NoColor:       true,
			PartsOrder:    []string{"timestamp", "level", "message"},
			FieldsExclude: []string{"timestamp", "function", "file", "line"},
			FormatLevel: func(i interface{}) string {
				return fmt.Sprint(i)
			},
			FormatPrepare: flattenForConsole,
		})
	}
	return zerolog.New(output)
}

// flattenForConsole folds the component into the message and lifts nested fields
func flattenForConsole(evt map[string]interface{}) error {
	if component, ok := evt["component"].(string); ok && component != "" {
		evt[zerolog.MessageFieldName] = fmt.Sprintf("[%s] %v", component, evt[zerolog.MessageFieldName])
		delete(evt, "component")
	}
	if fields, ok := evt["fields"].(map[string]interface{}); ok {
		for k, v := range fields {
			evt[k] = v
		}
		delete(evt, "fields")
	}
	return nil
}

// WithComponent creates a new logger with the specified component name
func (l *Logger) WithComponent(component string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return &Logger{
		level:     l.level,
		format:    l.format,
		output:    l.output,
		component: component,
		zl:        l.zl,
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFormat sets the log output format
func (l *Logger) SetFormat(format LogFormat) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = format
	l.zl = newZerolog(l.output, format)
}

// log is the internal logging method; skip is the caller depth reported in the entry
func (l *Logger) log(skip int, level LogLevel, message string, fields map[string]interface{}, err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	event := l.zl.Log().
		Str("timestamp", time.Now().UTC().Format(time.RFC3339)).
		Str("level", level.String())

	if l.component != "" {
		event = event.Str("component", l.component)
	}

	if pc, file, line, ok := runtime.Caller(skip); ok {
		event = event.Str("file", file).Int("line", line)
		if fn := runtime.FuncForPC(pc); fn != nil {
			funcName := fn.Name()
			if lastSlash := strings.LastIndex(funcName, "/"); lastSlash >= 0 {
				funcName = funcName[lastSlash+1:]
			}
			event = event.Str("function", funcName)
		}
	}

	if len(fields) > 0 {
		event = event.Dict("fields", zerolog.Dict().Fields(fields))
	}
	if err != nil {
		event = event.Str("error", err.Error())
	}

	event.Msg(message)

	if level == FATAL {
		os.Exit(1)
	}
}

func firstFields(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...map[string]interface{}) {
	l.log(2, DEBUG, message, firstFields(fields), nil)
}

// Info logs an info message
func (l *Logger) Info(message string, fields ...map[string]interface{}) {
	l.log(2, INFO, message, firstFields(fields), nil)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields ...map[string]interface{}) {
	l.log(2, WARN, message, firstFields(fields), nil)
}

// Error logs an error message
func (l *Logger) Error(message string, err error, fields ...map[string]interface{}) {
	l.log(2, ERROR, message, firstFields(fields), err)
}

// Fatal logs a fatal message and exits the program
func (l *Logger) Fatal(message string, err error, fields ...map[string]interface{}) {
	l.log(2, FATAL, message, firstFields(fields), err)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(2, DEBUG, fmt.Sprintf(format, args...), nil, nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(2, INFO, fmt.Sprintf(format, args...), nil, nil)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(2, WARN, fmt.Sprintf(format, args...), nil, nil)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(2, ERROR, fmt.Sprintf(format, args...), nil, nil)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(2, FATAL, fmt.Sprintf(format, args...), nil, nil)
}
