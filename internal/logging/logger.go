package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logger writes one structured line per event.
type Logger struct {
	out  io.Writer
	json bool
	mu   sync.Mutex
	now  func() time.Time
}

// NewLogger creates a logger writing to out. A nil out means stderr.
func NewLogger(out io.Writer, json bool) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		out:  out,
		json: json,
		now:  time.Now,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLogger(io.Discard, false)
}

// Info логирует информационное сообщение
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

// Warning логирует предупреждение
func (l *Logger) Warning(msg string, fields map[string]interface{}) {
	l.log("WARNING", msg, fields)
}

// Error логирует ошибку
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

func (l *Logger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := l.now().Format(time.RFC3339)

	if l.json {
		l.writeJSONLog(timestamp, level, msg, fields)
	} else {
		l.writeTextLog(timestamp, level, msg, fields)
	}
}

func (l *Logger) writeJSONLog(timestamp, level, msg string, fields map[string]interface{}) {
	entry := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["timestamp"] = timestamp
	entry["level"] = level
	entry["message"] = msg

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.out, `{"timestamp":%q,"level":"ERROR","message":"marshal log entry: %s"}`+"\n", timestamp, err)
		return
	}
	l.out.Write(append(data, '\n'))
}

func (l *Logger) writeTextLog(timestamp, level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", timestamp, level, msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%q", k, fmt.Sprint(fields[k]))
	}
	b.WriteByte('\n')
	io.WriteString(l.out, b.String())
}

// WithFields создает новый логгер с дополнительными полями
func (l *Logger) WithFields(fields map[string]interface{}) *LoggerWithFields {
	return &LoggerWithFields{
		logger: l,
		fields: fields,
	}
}

// LoggerWithFields логгер с предустановленными полями
type LoggerWithFields struct {
	logger *Logger
	fields map[string]interface{}
}

func (l *LoggerWithFields) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, mergeFields(l.fields, fields))
}

func (l *LoggerWithFields) Warning(msg string, fields map[string]interface{}) {
	l.logger.Warning(msg, mergeFields(l.fields, fields))
}

func (l *LoggerWithFields) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, mergeFields(l.fields, fields))
}

func mergeFields(base, additional map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(additional))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range additional {
		result[k] = v
	}
	return result
}
