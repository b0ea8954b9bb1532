package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// serviceHook stamps the service name on every entry.
type serviceHook struct {
	service string
}

func (h serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h serviceHook) Fire(entry *logrus.Entry) error {
	entry.Data["service"] = h.service
	return nil
}

// New builds a JSON logger writing to stdout. An unknown level falls back to info.
func New(service, level string) *logrus.Logger {
	return NewWithOutput(service, level, os.Stdout)
}

func NewWithOutput(service, level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	log.SetLevel(logrus.InfoLevel)
	if level != "" {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			log.SetLevel(lvl)
		}
	}

	if service != "" {
		log.AddHook(serviceHook{service: service})
	}
	return log
}

// WithRequestID returns an entry carrying request_id when one is set.
func WithRequestID(log logrus.FieldLogger, requestID string) *logrus.Entry {
	entry := log.WithFields(logrus.Fields{})
	if requestID == "" {
		return entry
	}
	return entry.WithField("request_id", requestID)
}
