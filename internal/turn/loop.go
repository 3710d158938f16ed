// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import "sync"

// UIThread runs functions on the goroutine that owns the surface.
// Post must not block and must run functions in the order they were posted.
type UIThread interface {
	Post(fn func())
}

// Loop is a UIThread backed by a single goroutine with an unbounded queue.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool
	wake    chan struct{}
	done    chan struct{}
}

// NewLoop creates a loop. Call Run (or Start) to process posted functions.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start() *Loop {
	go l.Run()
	return l
}

// Run processes posted functions until Stop is called and the queue drains.
func (l *Loop) Run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		stopped := l.stopped
		l.mu.Unlock()

		if len(batch) == 0 {
			if stopped {
				return
			}
			<-l.wake
			continue
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// Post queues fn. Functions posted after Stop are dropped.
func (l *Loop) Post(fn func()) {
	l.post(fn)
}

func (l *Loop) post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it. It returns false if the loop was
// stopped before fn ran. Do must not be called from the loop itself.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	if !l.post(func() {
		fn()
		close(ran)
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Stop stops accepting work. Already queued functions still run.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
