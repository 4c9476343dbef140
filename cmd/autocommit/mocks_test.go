package main

import (
	"context"
	"sync"
)

// MockLocker records lock calls
type MockLocker struct {
	AcquireErr    error
	ReleaseErr    error
	AcquireCalled bool
	ReleaseCalled bool
}

func (m *MockLocker) Acquire() error {
	m.AcquireCalled = true
	return m.AcquireErr
}

func (m *MockLocker) Release() error {
	m.ReleaseCalled = true
	return m.ReleaseErr
}

// MockWatcher stands in for a watch session
type MockWatcher struct {
	mu             sync.Mutex
	RunErr         error
	BlockUntilDone bool
	RunCalled      bool
	SummaryCalled  bool
}

func (m *MockWatcher) Run(ctx context.Context) error {
	m.mu.Lock()
	m.RunCalled = true
	block, err := m.BlockUntilDone, m.RunErr
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (m *MockWatcher) PrintSummary() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryCalled = true
}
