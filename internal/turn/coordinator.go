// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jeranaias/chatbubbles/internal/layout"
	"github.com/jeranaias/chatbubbles/internal/transcript"
)

// Responder produces the reply to one submission. It runs off the UI
// goroutine and should return promptly once ctx is cancelled.
type Responder interface {
	Respond(ctx context.Context, text string) (string, error)
}

// Options configures a Coordinator.
type Options struct {
	Store     *transcript.Store
	Engine    *layout.Engine
	Responder Responder
	UI        UIThread
	Logger    *slog.Logger
}

// turnRun is the per-turn state shared by the UI and responder goroutines.
type turnRun struct {
	id       uint64
	text     string
	ctx      context.Context
	cancel   context.CancelFunc
	rendered chan struct{}
	started  time.Time
}

// Coordinator sequences user and reply rendering for one transcript.
type Coordinator struct {
	store     *transcript.Store
	engine    *layout.Engine
	responder Responder
	ui        UIThread
	log       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    State
	turns    uint64
	current  *turnRun
	onState  []func(State)
	onPlaced []func(transcript.Message, layout.BubbleLayout)
	onError  []func(error)
}

// New creates a coordinator in the Idle state.
func New(opts Options) (*Coordinator, error) {
	if opts.Engine == nil {
		return nil, errors.New("turn: layout engine is required")
	}
	if opts.Responder == nil {
		return nil, errors.New("turn: responder is required")
	}
	if opts.UI == nil {
		return nil, errors.New("turn: UI thread is required")
	}
	if opts.Store == nil {
		opts.Store = transcript.NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		store:     opts.Store,
		engine:    opts.Engine,
		responder: opts.Responder,
		ui:        opts.UI,
		log:       opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// =============================================================================
// ACCESSORS AND OBSERVERS
// =============================================================================

// State returns the current protocol state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Turns returns the number of accepted submissions.
func (c *Coordinator) Turns() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turns
}

// Transcript returns the store the coordinator appends to.
func (c *Coordinator) Transcript() *transcript.Store {
	return c.store
}

// OnStateChange registers fn to be called after every transition. Calls
// happen on the goroutine that caused the transition, without locks held.
func (c *Coordinator) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = append(c.onState, fn)
}

// OnPlaced registers fn to be called on the UI goroutine after a bubble is
// rendered.
func (c *Coordinator) OnPlaced(fn func(transcript.Message, layout.BubbleLayout)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPlaced = append(c.onPlaced, fn)
}

// OnError registers fn to be called when a render fails.
func (c *Coordinator) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = append(c.onError, fn)
}

func (c *Coordinator) emitState(s State) {
	c.mu.Lock()
	fns := slices.Clone(c.onState)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (c *Coordinator) emitPlaced(msg transcript.Message, bl layout.BubbleLayout) {
	c.mu.Lock()
	fns := slices.Clone(c.onPlaced)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(msg, bl)
	}
}

func (c *Coordinator) emitError(err error) {
	c.mu.Lock()
	fns := slices.Clone(c.onError)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

// =============================================================================
// PROTOCOL
// =============================================================================

// Start renders the initial bot message, if any. It must run on the UI
// goroutine before the first Submit.
func (c *Coordinator) Start(firstMessage *string) error {
	if c.State() == Closing {
		return ErrClosing
	}
	if firstMessage == nil {
		return nil
	}
	if _, err := c.commit(transcript.Bot, *firstMessage, false); err != nil {
		c.log.Error("initial message render failed", "error", err)
		c.emitError(err)
		return err
	}
	return nil
}

// Submit begins a turn. It must run on the UI goroutine. ErrBusy and
// ErrClosing leave the transcript untouched.
func (c *Coordinator) Submit(text string) error {
	c.mu.Lock()
	switch c.state {
	case Closing:
		c.mu.Unlock()
		return ErrClosing
	case Idle:
	default:
		state := c.state
		c.mu.Unlock()
		c.log.Debug("submission rejected", "state", state.String())
		return ErrBusy
	}

	c.turns++
	ctx, cancel := context.WithCancel(c.ctx)
	t := &turnRun{
		id:       c.turns,
		text:     text,
		ctx:      ctx,
		cancel:   cancel,
		rendered: make(chan struct{}),
		started:  time.Now(),
	}
	c.current = t
	c.state = AwaitingUserRender
	c.wg.Add(1)
	c.mu.Unlock()

	c.log.Info("turn started", "turn", t.id, "chars", len(text))
	c.emitState(AwaitingUserRender)

	c.ui.Post(func() { c.renderUser(t) })
	go c.invokeResponder(t)
	return nil
}

// renderUser runs on the UI goroutine.
func (c *Coordinator) renderUser(t *turnRun) {
	if err := t.ctx.Err(); err != nil {
		c.finish(t, err)
		return
	}
	if _, err := c.commit(transcript.User, t.text, false); err != nil {
		c.log.Error("user render failed", "turn", t.id, "error", err)
		c.emitError(err)
		c.finish(t, err)
		return
	}
	c.transition(t, AwaitingResponder)
	close(t.rendered)
}

// invokeResponder runs on its own goroutine.
func (c *Coordinator) invokeResponder(t *turnRun) {
	defer c.wg.Done()

	reply, err := c.respond(t)

	select {
	case <-t.rendered:
	case <-t.ctx.Done():
	}
	if t.ctx.Err() != nil {
		c.log.Debug("reply dropped", "turn", t.id, "reason", t.ctx.Err())
		return
	}
	c.ui.Post(func() { c.renderReply(t, reply, err) })
}

func (c *Coordinator) respond(t *turnRun) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ResponderError{Turn: t.id, Panic: true, Err: fmt.Errorf("%v", r)}
		}
	}()
	reply, err = c.responder.Respond(t.ctx, t.text)
	if err != nil {
		err = &ResponderError{Turn: t.id, Err: err}
	}
	return reply, err
}

// renderReply runs on the UI goroutine.
func (c *Coordinator) renderReply(t *turnRun, reply string, err error) {
	if t.ctx.Err() != nil {
		c.finish(t, t.ctx.Err())
		return
	}
	if !c.transition(t, RenderingReply) {
		return
	}

	text, failed := reply, false
	if err != nil {
		c.log.Warn("responder failed", "turn", t.id, "error", err)
		cause := err
		var rerr *ResponderError
		if errors.As(err, &rerr) {
			cause = rerr.Err
		}
		text, failed = FailureText(cause), true
	}

	if _, perr := c.commit(transcript.Bot, text, failed); perr != nil {
		c.log.Error("reply render failed", "turn", t.id, "error", perr)
		c.emitError(perr)
		c.finish(t, perr)
		return
	}
	c.finish(t, err)
}

// commit lays the message out under the store's next ID and appends it only
// once its bubble is on the surface.
func (c *Coordinator) commit(sender transcript.Sender, text string, failed bool) (transcript.Message, error) {
	draft := transcript.Message{
		ID:     c.store.NextID(),
		Sender: sender,
		Text:   text,
		Failed: failed,
	}
	placed, err := c.engine.Place(draft, c.engine.Last())
	if err != nil {
		return transcript.Message{}, err
	}

	var msg transcript.Message
	if failed {
		msg = c.store.AppendFailure(text)
	} else {
		msg = c.store.Append(sender, text)
	}
	c.log.Debug("bubble placed",
		"id", msg.ID,
		"sender", msg.Sender.String(),
		"wrap", placed.WrapWidth,
	)
	c.emitPlaced(msg, placed)
	return msg, nil
}

// transition moves t's turn to next unless the turn was superseded or the
// coordinator is closing.
func (c *Coordinator) transition(t *turnRun, next State) bool {
	c.mu.Lock()
	if c.current != t || c.state == Closing {
		c.mu.Unlock()
		return false
	}
	c.state = next
	c.mu.Unlock()
	c.emitState(next)
	return true
}

// finish ends t and returns to Idle unless closing.
func (c *Coordinator) finish(t *turnRun, err error) {
	t.cancel()

	c.mu.Lock()
	if c.current != t {
		c.mu.Unlock()
		return
	}
	c.current = nil
	idle := c.state != Closing
	if idle {
		c.state = Idle
	}
	c.mu.Unlock()

	c.log.Info("turn finished", "turn", t.id, "duration", time.Since(t.started), "error", err)
	if idle {
		c.emitState(Idle)
	}
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Close enters Closing and cancels every in-flight turn. It is safe to call
// from any goroutine and more than once.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.state == Closing {
		c.mu.Unlock()
		return
	}
	c.state = Closing
	c.mu.Unlock()

	c.cancel()
	c.log.Info("coordinator closing")
	c.emitState(Closing)
}

// Wait joins responder goroutines for at most timeout. Goroutines still
// running at the deadline are left alone and ErrShutdownTimeout is returned.
func (c *Coordinator) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		c.log.Warn("shutdown join timed out", "timeout", timeout)
		return ErrShutdownTimeout
	}
}

// Shutdown is Close followed by Wait.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.Close()
	return c.Wait(timeout)
}
