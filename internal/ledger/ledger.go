// Package ledger keeps the in-memory list of completed photoshoots shown on
// the dashboard.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"jewelshot/internal/domain"
)

// Ledger is an append-only, newest-first project list. It is safe for
// concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	projects []domain.Project
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Append records p as the newest project.
func (l *Ledger) Append(p domain.Project) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.projects = append([]domain.Project{p}, l.projects...)
}

// List returns the projects newest first. The returned slice is a copy.
func (l *Ledger) List() []domain.Project {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Project, len(l.projects))
	copy(out, l.projects)
	return out
}

// Len reports how many projects have been recorded.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.projects)
}

// NewProject builds the ledger entry for a completed photoshoot. seq is the
// 1-based number shown in the project name.
func NewProject(placement domain.Placement, images []domain.ImagePayload, seq int, now time.Time) domain.Project {
	p := domain.Project{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("%s Photoshoot %d", placement.Label(), seq),
		LastEdited:  "Just now",
		RenderCount: len(images),
		Status:      domain.ProjectCompleted,
		Placement:   placement,
		CreatedAt:   now,
	}
	if len(images) > 0 {
		p.Thumbnail = images[0].DataURL()
	}
	return p
}
