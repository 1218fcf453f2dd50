package logging

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the shared logrus instance for the tasks service.
var Logger = logrus.New()

var once sync.Once

// EventFormatter renders one log line per entry in the service's audit
// format: date, time, source system, level, a unique event id, the message
// and the caller location.
type EventFormatter struct {
	SystemName string
}

// Format produces the output bytes for a single log entry.
func (f *EventFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	utc := entry.Time.UTC()
	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ", utc.Format("2006-01-02"), utc.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("Entry ID: %s, ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("Message: %s,", entry.Message))

	if entry.HasCaller() {
		b.WriteString(fmt.Sprintf(" Location: %s:%d in %s", entry.Caller.File, entry.Caller.Line, entry.Caller.Function))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// InitLogger configures the global logger with rotation and the audit
// formatter. The log file path comes from LOG_FILE_PATH; when it is empty
// the service logs to stdout.
func InitLogger() {
	once.Do(func() {
		logPath := os.Getenv("LOG_FILE_PATH")
		if logPath == "" {
			Logger.SetOutput(os.Stdout)
		} else {
			Logger.SetOutput(&lumberjack.Logger{
				Filename:   logPath,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}

		Logger.SetFormatter(&EventFormatter{SystemName: "tasks-service"})
		Logger.SetLevel(logrus.InfoLevel)
		Logger.SetReportCaller(true)

		Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: Logger initialized for tasks-service")
	})
}
