package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jewelshot/internal/viewstate"
)

// ControllerFactory builds the controller of a new client.
type ControllerFactory func(clientID string) *viewstate.Controller

type clientEntry struct {
	ctrl     *viewstate.Controller
	lastSeen time.Time
}

// Clients keeps one controller per browser client and closes the ones that
// have been idle for too long.
type Clients struct {
	factory ControllerFactory
	idle    time.Duration
	logger  zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*clientEntry
}

func NewClients(factory ControllerFactory, idle time.Duration, logger zerolog.Logger) *Clients {
	if idle <= 0 {
		idle = time.Hour
	}
	return &Clients{
		factory: factory,
		idle:    idle,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*clientEntry),
	}
}

// Get returns the live controller for id, creating and starting one when
// needed.
func (c *Clients) Get(id string) *viewstate.Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok && !e.ctrl.Closed() {
		e.lastSeen = c.now()
		return e.ctrl
	}
	ctrl := c.factory(id)
	ctrl.Start(context.Background())
	c.entries[id] = &clientEntry{ctrl: ctrl, lastSeen: c.now()}
	c.logger.Debug().Str("client_id", id).Msg("client attached")
	return ctrl
}

// Len returns the number of tracked clients.
func (c *Clients) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep closes clients idle for longer than the idle timeout and returns how
// many were removed.
func (c *Clients) Sweep() int {
	cutoff := c.now().Add(-c.idle)
	var stale []*viewstate.Controller
	c.mu.Lock()
	for id, e := range c.entries {
		if e.lastSeen.Before(cutoff) || e.ctrl.Closed() {
			stale = append(stale, e.ctrl)
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()

	for _, ctrl := range stale {
		ctrl.Close()
	}
	if len(stale) > 0 {
		c.logger.Info().Int("closed", len(stale)).Msg("idle clients swept")
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (c *Clients) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Sweep()
		}
	}
}

// CloseAll closes every controller.
func (c *Clients) CloseAll() {
	c.mu.Lock()
	all := make([]*viewstate.Controller, 0, len(c.entries))
	for id, e := range c.entries {
		all = append(all, e.ctrl)
		delete(c.entries, id)
	}
	c.mu.Unlock()
	for _, ctrl := range all {
		ctrl.Close()
	}
}
