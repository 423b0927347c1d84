package app

import "context"

// KVStore is the durable string key-value store both lists are mirrored to.
type KVStore interface {
	// Get returns the stored value and whether the key exists.
	Get(context.Context, string) (string, bool, error)
	Set(context.Context, string, string) error
}

// Logger receives runtime events from the app layer.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// nopLogger discards every event.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
