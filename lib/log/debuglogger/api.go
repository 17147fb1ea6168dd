package debuglogger

import (
	"log"
)

type Logger struct {
	level  int16
	logger *log.Logger
}

// New will create a Logger which wraps a standard library logger. The debug
// level is initially -1, so all Debug* messages are discarded.
func New(logger *log.Logger) *Logger {
	return &Logger{level: -1, logger: logger}
}

// GetLevel returns the current debug level.
func (l *Logger) GetLevel() int16 {
	return l.level
}

// SetLevel sets the debug level. Supported range: -1 to 32767.
func (l *Logger) SetLevel(level int16) {
	if level < -1 {
		level = -1
	}
	l.level = level
}

func (l *Logger) Debug(level uint8, v ...interface{}) {
	if int16(level) <= l.level {
		l.logger.Print(v...)
	}
}

func (l *Logger) Debugf(level uint8, format string, v ...interface{}) {
	if int16(level) <= l.level {
		l.logger.Printf(format, v...)
	}
}

func (l *Logger) Debugln(level uint8, v ...interface{}) {
	if int16(level) <= l.level {
		l.logger.Println(v...)
	}
}

func (l *Logger) Fatal(v ...interface{}) {
	l.logger.Fatal(v...)
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatalf(format, v...)
}

func (l *Logger) Fatalln(v ...interface{}) {
	l.logger.Fatalln(v...)
}

func (l *Logger) Panic(v ...interface{}) {
	l.logger.Panic(v...)
}

func (l *Logger) Panicf(format string, v ...interface{}) {
	l.logger.Panicf(format, v...)
}

func (l *Logger) Panicln(v ...interface{}) {
	l.logger.Panicln(v...)
}

func (l *Logger) Print(v ...interface{}) {
	l.logger.Print(v...)
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.logger.Printf(format, v...)
}

func (l *Logger) Println(v ...interface{}) {
	l.logger.Println(v...)
}
