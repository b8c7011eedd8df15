// Package service is the composition root lifecycle: every long-lived component
// (preference store, controller, scheduler, watcher, audio) is registered once
// under a unique name and brought up in dependency order
package service

import "context"

// Service defines the lifecycle interface for long-lived components
//
// Lifecycle:
//  1. Construction
//  2. Init(ctx) - open resources, read persisted state
//  3. Start(ctx) - launch background goroutines
//  4. [runtime operation]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	Dependencies() []string

	Init(ctx context.Context) error
	Start(ctx context.Context) error

	// Stop must be idempotent
	Stop() error
}

// Func adapts plain functions to Service, nil hooks are no-ops
type Func struct {
	ServiceName string
	Deps        []string
	OnInit      func(ctx context.Context) error
	OnStart     func(ctx context.Context) error
	OnStop      func() error
}

// Name implements Service
func (f *Func) Name() string { return f.ServiceName }

// Dependencies implements Service
func (f *Func) Dependencies() []string { return f.Deps }

// Init implements Service
func (f *Func) Init(ctx context.Context) error {
	if f.OnInit == nil {
		return nil
	}
	return f.OnInit(ctx)
}

// Start implements Service
func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

// Stop implements Service
func (f *Func) Stop() error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop()
}
