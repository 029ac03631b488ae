// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin slog front end. Package level loggers are created once with WithContext
// and resolve the root handler on every record, so SetDefault can be called after they exist.
package log

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels, shared with go-ethereum.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger writes key/value structured records.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
	Enabled(level slog.Level) bool
}

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(ethlog.DiscardHandler()))
}

// SetDefault replaces the root handler.
func SetDefault(h slog.Handler) {
	root.Store(slog.New(h))
}

// NewTerminalHandler returns a human friendly handler filtered by the legacy verbosity (0-5).
func NewTerminalHandler(w io.Writer, verbosity int, useColor bool) slog.Handler {
	glog := ethlog.NewGlogHandler(ethlog.NewTerminalHandler(w, useColor))
	glog.Verbosity(ethlog.FromLegacyLevel(verbosity))
	return glog
}

// NewJSONHandler returns a json handler filtered by the legacy verbosity (0-5).
func NewJSONHandler(w io.Writer, verbosity int) slog.Handler {
	glog := ethlog.NewGlogHandler(ethlog.JSONHandler(w))
	glog.Verbosity(ethlog.FromLegacyLevel(verbosity))
	return glog
}

type logger struct {
	ctx []any
}

// Root returns the root logger.
func Root() Logger {
	return &logger{}
}

// WithContext creates a logger carrying the given key/value pairs.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: ctx}
}

func (l *logger) write(level slog.Level, msg string, ctx []any) {
	r := root.Load()
	if !r.Enabled(context.Background(), level) {
		return
	}
	if len(l.ctx) > 0 {
		ctx = append(append(make([]any, 0, len(l.ctx)+len(ctx)), l.ctx...), ctx...)
	}
	r.Log(context.Background(), level, msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }

func (l *logger) With(ctx ...any) Logger {
	return &logger{ctx: append(append(make([]any, 0, len(l.ctx)+len(ctx)), l.ctx...), ctx...)}
}

func (l *logger) Enabled(level slog.Level) bool {
	return root.Load().Enabled(context.Background(), level)
}

// Debug logs on the root logger.
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }

// Info logs on the root logger.
func Info(msg string, ctx ...any) { Root().Info(msg, ctx...) }

// Warn logs on the root logger.
func Warn(msg string, ctx ...any) { Root().Warn(msg, ctx...) }

// Error logs on the root logger.
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
