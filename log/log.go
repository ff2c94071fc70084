// Copyright 2023 Gatehouse
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logKey is the type used to uniquely place the logger within context.Context
const logKey = iota

var (
	// logger is the default zap logger. Any use of the logger before
	// InitializeLogger is called is a nop.
	logger      = zap.NewNop()
	loggerMutex sync.RWMutex
	// atomicLevel allows the log level to be changed at runtime
	atomicLevel = zap.NewAtomicLevel()
)

// Config defines the necessary configuration for instantiating a Logger
type Config struct {
	UseDevelopmentLogger bool
	OutputPaths          []string
	ErrorOutputPaths     []string
	Level                string
	SamplingInitial      int
	SamplingThereafter   int
	Fields               map[string]interface{}
	Cores                []zapcore.Core
	counter              *prometheus.CounterVec
}

// metricsHook returns a zap hook that counts emitted logs by level
func metricsHook(counter *prometheus.CounterVec) func(zapcore.Entry) error {
	return func(entry zapcore.Entry) error {
		counter.With(prometheus.Labels{"level": entry.Level.CapitalString()}).Inc()
		return nil
	}
}

// InitializeLogger sets up the logger. This function should be called as soon
// as possible. Any use of the logger provided by this package will be a nop
// until this function is called.
func (c *Config) InitializeLogger() error {
	var level zapcore.Level
	if err := level.Set(c.Level); err != nil {
		fmt.Printf("invalid log level %s - using INFO", c.Level)
		level = zapcore.InfoLevel
	}
	atomicLevel.SetLevel(level)

	var logConfig zap.Config
	if c.UseDevelopmentLogger {
		// Debug logging, console encoder, stderr output, no sampling.
		// See https://godoc.org/go.uber.org/zap#NewDevelopmentConfig
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logConfig.Level = atomicLevel
	} else {
		logConfig = zap.Config{
			Level:             atomicLevel,
			Development:       false,
			DisableStacktrace: false,
			Sampling: &zap.SamplingConfig{
				Initial:    c.SamplingInitial,
				Thereafter: c.SamplingThereafter,
			},
			Encoding:         "json",
			EncoderConfig:    zap.NewProductionEncoderConfig(),
			OutputPaths:      append(c.OutputPaths, "stdout"),
			ErrorOutputPaths: append(c.ErrorOutputPaths, "stderr"),
			InitialFields:    c.Fields,
		}
	}

	c.counter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logs_emitted",
			Help: "Total number of logs emitted by this application instance",
		},
		[]string{"level"},
	)

	newLogger, err := logConfig.Build(zap.Hooks(metricsHook(c.counter)))
	if err != nil {
		return fmt.Errorf("error initializing logger - %w", err)
	}
	if len(c.Cores) > 0 {
		newLogger = newLogger.WithOptions(zap.WrapCore(func(existingCore zapcore.Core) zapcore.Core {
			return zapcore.NewTee(append([]zapcore.Core{existingCore}, c.Cores...)...)
		}))
	}
	loggerMutex.Lock()
	logger = newLogger
	loggerMutex.Unlock()
	return nil
}

// RegisterLogLevelHandler registers an HTTP handler at the given route that
// reports the current log level on GET and accepts a new level on PUT. This
// allows log verbosity to be changed on a running server.
func RegisterLogLevelHandler(router *mux.Router) {
	router.Handle("/loglevel", atomicLevel)
}

// NewContext creates and returns a new context holding the provided logger.
// If the logger is nil, the logger associated with the given context (or the
// global logger) is used instead. This is useful when you wish for all
// downstream logs from the site of a given context to carry some contextual
// fields, for example a request ID.
func NewContext(ctx context.Context, l *zap.Logger) context.Context {
	if l == nil {
		return context.WithValue(ctx, logKey, Get(ctx))
	}
	return context.WithValue(ctx, logKey, l)
}

// Get returns the logger associated with the given context, if any. If a nil
// context is passed, or the context holds no logger, the global logger is
// returned.
func Get(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if ctxLogger, ok := ctx.Value(logKey).(*zap.Logger); ok {
			return ctxLogger
		}
	}
	loggerMutex.RLock()
	defer loggerMutex.RUnlock()
	return logger
}
