package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Types int

const (
	Info Types = iota
	Error
	Warn
	Fatal
)

type Message struct {
	Timestamp time.Time
	Tag       string
	Message   string
	LogTypes  Types
}

// manager owns the process-wide sinks. Every Logger handed out by NewLogger
// shares it.
type manager struct {
	mu      sync.RWMutex
	console io.Writer
	dev     bool
	logFile *os.File
	logChan chan Message
	done    chan struct{}
	closed  bool
}

type Logger struct {
	tag string
}

var (
	logManager *manager
	once       sync.Once
)

// InitLogger sets up the shared sinks. console receives dev output; when it
// is nil dev output goes to the standard log package (stderr). A non-empty
// logPath adds a timestamped log file in that directory.
func InitLogger(dev bool, logPath string, console io.Writer) error {
	var initErr error
	once.Do(func() {
		m := &manager{
			console: console,
			dev:     dev,
			logChan: make(chan Message, 100),
			done:    make(chan struct{}),
		}
		if logPath != "" {
			timestamp := time.Now().Format("20060102_150405")
			fileName := fmt.Sprintf("digest_log_%s.log", timestamp)
			filePath := filepath.Join(logPath, fileName)

			file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				initErr = fmt.Errorf("failed to open log file: %w", err)
				return
			}
			m.logFile = file
			go m.processLogs()
		} else {
			close(m.done)
		}
		logManager = m
	})
	return initErr
}

// NewLogger returns a tagged logger. It may be created before InitLogger;
// until then it drops everything.
func NewLogger(tag string) *Logger {
	return &Logger{tag: tag}
}

// SetDev toggles dev output at runtime.
func SetDev(dev bool) {
	if logManager == nil {
		return
	}
	logManager.mu.Lock()
	logManager.dev = dev
	logManager.mu.Unlock()
}

func (m *manager) processLogs() {
	defer close(m.done)
	for msg := range m.logChan {
		m.logFile.WriteString(formatLine(msg))
	}
}

func formatLine(msg Message) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")
	return fmt.Sprintf("%s [%s] %s: %s\n", timestamp, msg.Tag, msg.LogTypes.toString(), msg.Message)
}

func (l *Logger) log(logTypes Types, v ...interface{}) {
	m := logManager
	if m == nil {
		return
	}
	message := fmt.Sprint(v...)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dev {
		if m.console != nil {
			var format string
			switch logTypes {
			case Info:
				format = "[green]DEBUG (%s): %s[-]\n"
			case Error, Fatal:
				format = "[red]DEBUG (%s): %s[-]\n"
			case Warn:
				format = "[yellow]DEBUG (%s): %s[-]\n"
			}
			fmt.Fprintf(m.console, format, l.tag, message)
		} else {
			log.Printf("(%s) %s: %s", l.tag, logTypes.toString(), message)
		}
	}

	if m.logFile != nil && !m.closed {
		m.logChan <- Message{
			Timestamp: time.Now(),
			Tag:       l.tag,
			Message:   message,
			LogTypes:  logTypes,
		}
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.log(Info, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.log(Error, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(Warn, v...)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.log(Fatal, v...)
	Close()
	os.Exit(1)
}

// Close drains pending file writes and closes the log file. Safe to call more
// than once.
func Close() {
	m := logManager
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.logFile != nil {
		close(m.logChan)
	}
	m.mu.Unlock()

	<-m.done
	if m.logFile != nil {
		m.logFile.Close()
	}
}

func (t Types) toString() string {
	switch t {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}
