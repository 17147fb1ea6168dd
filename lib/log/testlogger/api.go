package testlogger

// TestLogger is the subset of *testing.T used for logging.
type TestLogger interface {
	Fatal(v ...interface{})
	Log(v ...interface{})
}

// Logger adapts a TestLogger to the log.DebugLogger interface so that code
// under test can log through the test framework. All debug levels are
// emitted. Trailing newlines are stripped.
type Logger struct {
	logger TestLogger
}

func New(logger TestLogger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Debug(level uint8, v ...interface{}) {
	l.logger.Log(sprint(v...))
}

func (l *Logger) Debugf(level uint8, format string, v ...interface{}) {
	l.logger.Log(sprintf(format, v...))
}

func (l *Logger) Debugln(level uint8, v ...interface{}) {
	l.logger.Log(sprint(v...))
}

func (l *Logger) Fatal(v ...interface{}) {
	l.logger.Fatal(sprint(v...))
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatal(sprintf(format, v...))
}

func (l *Logger) Fatalln(v ...interface{}) {
	l.logger.Fatal(sprint(v...))
}

// Panic will call Fatal on the underlying TestLogger and then panic.
func (l *Logger) Panic(v ...interface{}) {
	s := sprint(v...)
	l.logger.Fatal(s)
	panic(s)
}

func (l *Logger) Panicf(format string, v ...interface{}) {
	s := sprintf(format, v...)
	l.logger.Fatal(s)
	panic(s)
}

func (l *Logger) Panicln(v ...interface{}) {
	s := sprint(v...)
	l.logger.Fatal(s)
	panic(s)
}

func (l *Logger) Print(v ...interface{}) {
	l.logger.Log(sprint(v...))
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.logger.Log(sprintf(format, v...))
}

func (l *Logger) Println(v ...interface{}) {
	l.logger.Log(sprint(v...))
}
