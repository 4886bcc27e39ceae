// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package services

import (
	"context"
)

// ContextRunner matches components whose run loop already follows the
// suture.Service pattern: block until the context is canceled, then
// return ctx.Err().
//
// Satisfied by *websocket.Hub (RunWithContext) and *behavior.Engine
// (RunWithContext).
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService wraps a ContextRunner as a supervised service, providing
// a stable name for supervisor logging.
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewRunnerService creates a service wrapper around the runner.
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{
		runner: runner,
		name:   name,
	}
}

// Serve implements suture.Service by delegating to the runner.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *RunnerService) String() string {
	return s.name
}
