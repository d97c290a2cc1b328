package model

import (
	"time"

	"github.com/google/uuid"
)

// Project ties everything together for save/load.
type Project struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
	Circuit   Circuit       `json:"circuit"`
	Settings  RouteSettings `json:"settings"`
	Result    *RouteResult  `json:"result,omitempty"`
}

func NewProject() Project {
	now := time.Now().UTC().Format(time.RFC3339)
	return Project{
		ID:        uuid.New().String()[:8],
		Name:      "Untitled",
		CreatedAt: now,
		UpdatedAt: now,
		Circuit: Circuit{
			Name:       "Untitled",
			Components: []Component{},
			Nets:       []Net{},
		},
		Settings: DefaultRouteSettings(),
	}
}

// Touch updates the modification timestamp.
func (p *Project) Touch() {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}
