package reminders

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventra/eventra/internal/models"
	"github.com/eventra/eventra/internal/services"
)

// Resolver maps a calendar entry's visibility to concrete recipients.
type Resolver struct {
	teams *services.TeamService
}

// NewResolver constructs a Resolver.
func NewResolver(teams *services.TeamService) (*Resolver, error) {
	if teams == nil {
		return nil, errors.New("audience resolver: team service is required")
	}
	return &Resolver{teams: teams}, nil
}

// Resolve returns the recipient ids for a reminder about the entry.
// Membership is read at call time, so team composition changes between
// trigger events are picked up without touching stored notifications.
// An empty team yields zero recipients, not an error.
func (r *Resolver) Resolve(ctx context.Context, entry *models.CalendarEntry) ([]string, error) {
	if entry == nil {
		return nil, errors.New("audience resolver: entry is required")
	}

	switch entry.Visibility {
	case models.VisibilityPrivate:
		return []string{entry.CreatorID}, nil
	case models.VisibilityTeam:
		if entry.TeamID == nil || *entry.TeamID == "" {
			return nil, fmt.Errorf("audience resolver: entry %s has team visibility without a team", entry.ID)
		}
		return r.teams.ActiveMemberIDs(ctx, *entry.TeamID)
	default:
		return nil, fmt.Errorf("audience resolver: unsupported visibility %q", entry.Visibility)
	}
}
