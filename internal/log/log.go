// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

// Package log holds the process wide logger used by the server binary.
// Library packages take an hclog.Logger instead of calling into this package.
package log

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pbinitiative/zenflow/internal/appcontext"
)

var logger hclog.Logger = hclog.NewNullLogger()

// Init configures the default logger. LOG_LEVEL and LOG_FORMAT=json are read from the environment.
func Init() {
	level := hclog.LevelFromString(os.Getenv("LOG_LEVEL"))
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	logger = hclog.New(&hclog.LoggerOptions{
		Name:       "zenflow",
		Level:      level,
		Output:     os.Stderr,
		JSONFormat: strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
	})
	hclog.SetDefault(logger)
}

// Logger returns the configured logger, a null logger before Init is called.
func Logger() hclog.Logger {
	return logger
}

func Info(format string, args ...any) {
	logger.Info(fmt.Sprintf(format, args...))
}

func Error(format string, args ...any) {
	logger.Error(fmt.Sprintf(format, args...))
}

func Infof(ctx context.Context, format string, args ...any) {
	logger.Info(fmt.Sprintf(format, args...), contextArgs(ctx)...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	logger.Error(fmt.Sprintf(format, args...), contextArgs(ctx)...)
}

func Debugf(ctx context.Context, format string, args ...any) {
	logger.Debug(fmt.Sprintf(format, args...), contextArgs(ctx)...)
}

func contextArgs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	var args []any
	if key, ok := appcontext.GetExecutionKey(ctx); ok {
		args = append(args, "executionKey", key)
	}
	if id, ok := appcontext.GetJobId(ctx); ok {
		args = append(args, "jobId", id)
	}
	return args
}
