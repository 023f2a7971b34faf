package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventra/eventra/internal/services"
	"github.com/eventra/eventra/pkg/response"
)

// TeamHandler exposes HTTP endpoints for teams and membership.
type TeamHandler struct {
	service *services.TeamService
}

// NewTeamHandler constructs a team handler.
func NewTeamHandler(db *gorm.DB) (*TeamHandler, error) {
	service, err := services.NewTeamService(db)
	if err != nil {
		return nil, err
	}
	return &TeamHandler{service: service}, nil
}

type createTeamPayload struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description"`
}

type updateTeamPayload struct {
	Name        *string `json:"name" validate:"omitempty,max=128"`
	Description *string `json:"description"`
}

type addMemberPayload struct {
	UserID string `json:"user_id" validate:"required"`
}

// Create registers a new team.
func (h *TeamHandler) Create(c *gin.Context) {
	var payload createTeamPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	team, err := h.service.Create(c.Request.Context(), services.CreateTeamInput{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, team)
}

// Get loads a team.
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.service.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, team)
}

// Update modifies team metadata.
func (h *TeamHandler) Update(c *gin.Context) {
	var payload updateTeamPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	team, err := h.service.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), services.UpdateTeamInput{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, team)
}

// AddMember assigns a user to the team.
func (h *TeamHandler) AddMember(c *gin.Context) {
	var payload addMemberPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.service.AddMember(c.Request.Context(), strings.TrimSpace(c.Param("id")), payload.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"added": true})
}

// RemoveMember detaches a user from the team.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	if err := h.service.RemoveMember(c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("userID"))); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// ListMembers returns all users assigned to the team.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	members, err := h.service.ListMembers(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, members)
}
