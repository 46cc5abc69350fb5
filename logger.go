package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	errorLogger  *log.Logger
	errorLogPath string
	errorLogOnce sync.Once

	debugLogger  *log.Logger
	debugLogPath string
	debugLogOnce sync.Once
)

func setupLogging(debug bool) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Printf("could not create log directory: %v", err)
	}
	ts := time.Now().Format("20060102-150405")

	errorLogPath = filepath.Join(logDir, fmt.Sprintf("error-%s.log", ts))
	errorLogOnce = sync.Once{}
	errorLogger = log.New(os.Stdout, "", log.LstdFlags)
	log.SetOutput(errorLogger.Writer())

	setDebugLogging(debug)
}

func logError(format string, v ...interface{}) {
	if errorLogger != nil {
		errorLogOnce.Do(func() {
			if f, err := os.Create(errorLogPath); err == nil {
				errorLogger.SetOutput(io.MultiWriter(os.Stdout, f))
				log.SetOutput(errorLogger.Writer())
			}
		})
		errorLogger.Printf(format, v...)
	}
	consoleMessage(fmt.Sprintf(format, v...))
}

func logWarn(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	if errorLogger != nil {
		errorLogOnce.Do(func() {
			if f, err := os.Create(errorLogPath); err == nil {
				errorLogger.SetOutput(io.MultiWriter(os.Stdout, f))
				log.SetOutput(errorLogger.Writer())
			}
		})
		errorLogger.Printf("warning: %s", msg)
	}
	consoleMessage("warning: " + msg)
}

func logDebug(format string, v ...interface{}) {
	if debugLogger != nil {
		debugLogOnce.Do(func() {
			if f, err := os.Create(debugLogPath); err == nil {
				debugLogger.SetOutput(io.MultiWriter(os.Stdout, f))
			}
		})
		debugLogger.Printf(format, v...)
	}
}

func setDebugLogging(enabled bool) {
	if enabled {
		logDir := "logs"
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("could not create log directory: %v", err)
		}
		ts := time.Now().Format("20060102-150405")
		debugLogPath = filepath.Join(logDir, fmt.Sprintf("debug-%s.log", ts))
		debugLogOnce = sync.Once{}
		debugLogger = log.New(os.Stdout, "", log.LstdFlags)
	} else {
		debugLogger = nil
	}
}
