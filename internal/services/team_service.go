package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/eventra/eventra/internal/models"
	apperrors "github.com/eventra/eventra/pkg/errors"
)

var (
	// ErrTeamNotFound indicates the requested team does not exist.
	ErrTeamNotFound = apperrors.New("TEAM_NOT_FOUND", "Team not found", http.StatusNotFound)
	// ErrTeamMemberAlreadyExists signals the user is already a member of the team.
	ErrTeamMemberAlreadyExists = apperrors.New("TEAM_MEMBER_EXISTS", "User already assigned to team", http.StatusConflict)
	// ErrTeamMemberNotFound indicates the requested membership does not exist.
	ErrTeamMemberNotFound = apperrors.New("TEAM_MEMBER_NOT_FOUND", "User is not a member of the team", http.StatusNotFound)
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
)

// CreateTeamInput captures new team metadata.
type CreateTeamInput struct {
	Name        string
	Description string
}

// UpdateTeamInput describes mutable team fields.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// TeamService handles team lifecycle and membership management.
type TeamService struct {
	db *gorm.DB
}

// NewTeamService constructs a TeamService instance.
func NewTeamService(db *gorm.DB) (*TeamService, error) {
	if db == nil {
		return nil, errors.New("team service: db is required")
	}
	return &TeamService{db: db}, nil
}

// Create registers a new team.
func (s *TeamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("team name is required")
	}

	team := &models.Team{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}

	if err := s.db.WithContext(ctx).Create(team).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("team name already exists")
		}
		return nil, fmt.Errorf("team service: create team: %w", err)
	}

	return team, nil
}

// GetByID loads a team by identifier.
func (s *TeamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	var team models.Team
	err := s.db.WithContext(ctx).First(&team, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team service: load team: %w", err)
	}

	return &team, nil
}

// Update modifies team metadata.
func (s *TeamService) Update(ctx context.Context, id string, input UpdateTeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	team, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != team.Name {
			updates["name"] = name
			team.Name = name
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
		team.Description = strings.TrimSpace(*input.Description)
	}

	if len(updates) == 0 {
		return team, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Team{}).
		Where("id = ?", team.ID).
		Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("team name already exists")
		}
		return nil, fmt.Errorf("team service: update team: %w", err)
	}

	return team, nil
}

// AddMember assigns a user to the team.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID string) error {
	ctx = ensureContext(ctx)

	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("team service: load user: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Table("user_teams").
		Where("team_id = ? AND user_id = ?", team.ID, user.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("team service: membership check: %w", err)
	}
	if count > 0 {
		return ErrTeamMemberAlreadyExists
	}

	if err := s.db.WithContext(ctx).Model(team).Association("Users").Append(&user); err != nil {
		return fmt.Errorf("team service: add member: %w", err)
	}

	return nil
}

// RemoveMember detaches a user from the team.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	ctx = ensureContext(ctx)

	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Table("user_teams").
		Where("team_id = ? AND user_id = ?", team.ID, userID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("team service: membership check: %w", err)
	}
	if count == 0 {
		return ErrTeamMemberNotFound
	}

	if err := s.db.WithContext(ctx).Model(team).Association("Users").Delete(&models.User{BaseModel: models.BaseModel{ID: userID}}); err != nil {
		return fmt.Errorf("team service: remove member: %w", err)
	}

	return nil
}

// ListMembers returns all users assigned to the team.
func (s *TeamService) ListMembers(ctx context.Context, teamID string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Model(team).Association("Users").Find(&users); err != nil {
		return nil, fmt.Errorf("team service: list members: %w", err)
	}

	return users, nil
}

// ActiveMemberIDs returns the ids of currently-active team members. Audience
// resolution calls this at trigger time so membership changes are picked up
// without touching stored notifications.
func (s *TeamService) ActiveMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	ctx = ensureContext(ctx)

	var ids []string
	if err := s.db.WithContext(ctx).
		Table("users").
		Joins("JOIN user_teams ON user_teams.user_id = users.id").
		Where("user_teams.team_id = ? AND users.is_active = ?", teamID, true).
		Pluck("users.id", &ids).Error; err != nil {
		return nil, fmt.Errorf("team service: active member ids: %w", err)
	}

	return ids, nil
}
