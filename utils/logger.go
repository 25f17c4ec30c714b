package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLogger configura o par de loggers: info em stdout, erro em stderr.
func InitLogger() {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	InfoLogger.SetLevel(logrus.InfoLevel)

	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	ErrorLogger.SetLevel(logrus.ErrorLevel)
}
