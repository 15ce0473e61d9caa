package domain

import "time"

// ProjectStatus enumerates ledger entry states.
type ProjectStatus string

const (
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectProcessing ProjectStatus = "Processing"
	ProjectFailed     ProjectStatus = "Failed"
)

// Project is an entry of the in-memory photoshoot ledger.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Thumbnail   string        `json:"thumbnail"`
	LastEdited  string        `json:"lastEdited"`
	RenderCount int           `json:"renderCount"`
	Status      ProjectStatus `json:"status"`
	Placement   Placement     `json:"placement"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Session is the provider's notion of a signed-in user.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token has lapsed at now.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
