package logging

import "log"

// Sink is the formatted printer the runtime injects. It mirrors the single
// Printf method the rest of this corpus wraps around the standard logger.
type Sink interface {
	Printf(format string, v ...any)
}

// StdSink prints through the standard library logger, same as every other
// ambient logger in this corpus.
type StdSink struct{}

func (StdSink) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// Logger pairs a should_log(level) predicate with a Sink. Every call site in
// the core goes through Log, never the Sink directly, so the predicate is
// never bypassed.
type Logger struct {
	shouldLog func(Level) bool
	sink      Sink
}

// New builds a Logger from an externally-owned predicate and sink. A nil
// sink defaults to StdSink, a nil predicate defaults to logging everything.
func New(shouldLog func(Level) bool, sink Sink) *Logger {
	if sink == nil {
		sink = StdSink{}
	}
	if shouldLog == nil {
		shouldLog = func(Level) bool { return true }
	}
	return &Logger{shouldLog: shouldLog, sink: sink}
}

// Log emits format/v at level, after consulting the predicate. Most callers
// use the level-named helpers below instead.
func (l *Logger) Log(level Level, format string, v ...any) {
	if l == nil || !l.shouldLog(level) {
		return
	}
	l.sink.Printf("["+level.String()+"] "+format, v...)
}

func (l *Logger) Fatalf(format string, v ...any)   { l.Log(Fatal, format, v...) }
func (l *Logger) Errorf(format string, v ...any)   { l.Log(Error, format, v...) }
func (l *Logger) Warnf(format string, v ...any)    { l.Log(Warn, format, v...) }
func (l *Logger) Infof(format string, v ...any)    { l.Log(Info, format, v...) }
func (l *Logger) Verbosef(format string, v ...any) { l.Log(Verbose, format, v...) }
func (l *Logger) Debugf(format string, v ...any)   { l.Log(Debug, format, v...) }
