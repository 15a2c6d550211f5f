package dto

import "github.com/noah-isme/fieldlab-api/internal/models"

// UserActionRequest is an administrator decision on an account.
type UserActionRequest struct {
	Action models.UserAction `json:"action" binding:"required"`
}

// UserActionResponse reports the applied action. User is absent after a reject.
type UserActionResponse struct {
	Action models.UserAction `json:"action"`
	User   *models.User      `json:"user,omitempty"`
}

// PatientSearchQuery captures the search term.
type PatientSearchQuery struct {
	Q string `form:"q"`
}
