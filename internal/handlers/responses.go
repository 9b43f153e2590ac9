package handlers

import "github.com/abrezinsky/councilvote/internal/models"

// SessionUser is the public view of a signed-in user
type SessionUser struct {
	ID              int    `json:"id"`
	Username        string `json:"username"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	PollingUnitID   *int   `json:"pollingUnitId,omitempty"`
	PollingUnitName string `json:"pollingUnitName,omitempty"`
}

func toSessionUser(u *models.User) SessionUser {
	return SessionUser{
		ID:              u.ID,
		Username:        u.Username,
		Name:            u.Name,
		Role:            u.Role,
		PollingUnitID:   u.PollingUnitID,
		PollingUnitName: u.PollingUnitName,
	}
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Success  bool        `json:"success"`
	User     SessionUser `json:"user"`
	Redirect string      `json:"redirect"`
}

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"dbConnected"`
}

// UploadResponse is returned after an evidence photo is stored
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
