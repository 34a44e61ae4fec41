// Package mocks provides test doubles for the pipeline's collaborators,
// with call tracking for ordering assertions.
package mocks

import (
	"sync"
	"time"
)

// CallTracker provides generic call tracking functionality for mocks
type CallTracker[T any] struct {
	calls []T
	mutex sync.RWMutex
}

// NewCallTracker creates a new call tracker for the specified call type
func NewCallTracker[T any]() *CallTracker[T] {
	return &CallTracker[T]{
		calls: make([]T, 0),
	}
}

// RecordCall records a method call
func (ct *CallTracker[T]) RecordCall(call T) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()
	ct.calls = append(ct.calls, call)
}

// GetCalls returns all recorded calls
func (ct *CallTracker[T]) GetCalls() []T {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	calls := make([]T, len(ct.calls))
	copy(calls, ct.calls)
	return calls
}

// GetCallCount returns the number of recorded calls
func (ct *CallTracker[T]) GetCallCount() int {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	return len(ct.calls)
}

// FilterCalls returns calls that match the provided predicate function
func (ct *CallTracker[T]) FilterCalls(predicate func(T) bool) []T {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()

	var filtered []T
	for _, call := range ct.calls {
		if predicate(call) {
			filtered = append(filtered, call)
		}
	}
	return filtered
}

// CommonCall provides common fields that most call types will have
type CommonCall struct {
	Method    string
	Timestamp time.Time
	Error     error
}

// NewCommonCall creates a CommonCall with current timestamp
func NewCommonCall(method string, err error) CommonCall {
	return CommonCall{
		Method:    method,
		Timestamp: time.Now(),
		Error:     err,
	}
}

// CallWithBucket extends CommonCall with the bucket a store operation
// targeted
type CallWithBucket struct {
	CommonCall
	Bucket string
}

// NewCallWithBucket creates a call with bucket context
func NewCallWithBucket(method, bucket string, err error) CallWithBucket {
	return CallWithBucket{
		CommonCall: NewCommonCall(method, err),
		Bucket:     bucket,
	}
}

// CommandCall records one external command invocation
type CommandCall struct {
	CommonCall
	Dir  string
	Env  []string
	Name string
	Args []string
}

// NewCommandCall creates a command invocation record
func NewCommandCall(dir string, env []string, name string, args []string, err error) CommandCall {
	return CommandCall{
		CommonCall: NewCommonCall(name, err),
		Dir:        dir,
		Env:        env,
		Name:       name,
		Args:       args,
	}
}
