package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logFile *os.File
var logPath = "/var/template-debugger.log"

// SetupLogger 调试器内部日志全部写到日志文件，避免和控制台输出混在一起
func SetupLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		// 打不开日志文件就丢弃内部日志
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.ErrorLevel)
		return
	}

	logFile = f
	logrus.SetOutput(logFile)
}

func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
	}
}
