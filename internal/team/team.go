// Package team manages the roster of agents shown on the team page.
package team

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HendryAvila/mission-control/internal/apperr"
)

var (
	timeNow = time.Now
	newID   = func() string { return uuid.NewString() }
)

// Agent is a roster member.
type Agent struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	Responsibilities []string  `json:"responsibilities"`
	Status           string    `json:"status"`
	Avatar           string    `json:"avatar,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateParams holds the input for Service.Create.
type CreateParams struct {
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Responsibilities []string `json:"responsibilities"`
	Status           string   `json:"status"`
	Avatar           string   `json:"avatar,omitempty"`
}

// Repository is the record store as seen by the roster.
type Repository interface {
	InsertAgent(ctx context.Context, a Agent) error
	SetAgentStatus(ctx context.Context, id, status string, updatedAt time.Time) (bool, error)
	DeleteAgent(ctx context.Context, id string) error
	ListAgents(ctx context.Context) ([]Agent, error)
}

// Service implements the roster operations.
type Service struct {
	repo     Repository
	statuses []string
}

// NewService creates a roster Service accepting the given statuses.
func NewService(repo Repository, statuses []string) *Service {
	return &Service{repo: repo, statuses: statuses}
}

// Statuses returns the accepted agent statuses.
func (s *Service) Statuses() []string {
	out := make([]string, len(s.statuses))
	copy(out, s.statuses)
	return out
}

func (s *Service) validateStatus(status string) error {
	for _, st := range s.statuses {
		if st == status {
			return nil
		}
	}
	return apperr.Validation("invalid agent status %q: must be one of: %s", status, strings.Join(s.statuses, ", "))
}

// Create validates and stores an agent.
func (s *Service) Create(ctx context.Context, p CreateParams) (string, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "", apperr.Validation("agent name is required")
	}
	role := strings.TrimSpace(p.Role)
	if role == "" {
		return "", apperr.Validation("agent role is required")
	}
	if err := s.validateStatus(p.Status); err != nil {
		return "", err
	}

	responsibilities := make([]string, 0, len(p.Responsibilities))
	for _, r := range p.Responsibilities {
		if r = strings.TrimSpace(r); r != "" {
			responsibilities = append(responsibilities, r)
		}
	}

	ts := timeNow().UTC().Truncate(time.Millisecond)
	a := Agent{
		ID:               newID(),
		Name:             name,
		Role:             role,
		Responsibilities: responsibilities,
		Status:           p.Status,
		Avatar:           strings.TrimSpace(p.Avatar),
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
	if err := s.repo.InsertAgent(ctx, a); err != nil {
		return "", apperr.Store("insert agent", err)
	}
	return a.ID, nil
}

// SetStatus changes an agent's status and refreshes updated_at.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	if err := s.validateStatus(status); err != nil {
		return err
	}
	found, err := s.repo.SetAgentStatus(ctx, id, status, timeNow().UTC().Truncate(time.Millisecond))
	if err != nil {
		return apperr.Store("update agent", err)
	}
	if !found {
		return apperr.NotFound("agent", id)
	}
	return nil
}

// Remove deletes an agent. Unknown ids are not an error.
func (s *Service) Remove(ctx context.Context, id string) error {
	return apperr.Store("delete agent", s.repo.DeleteAgent(ctx, id))
}

// List returns the roster, most recently added first.
func (s *Service) List(ctx context.Context) ([]Agent, error) {
	agents, err := s.repo.ListAgents(ctx)
	if err != nil {
		return nil, apperr.Store("list agents", err)
	}
	return agents, nil
}
