package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/abrezinsky/councilvote/internal/auth"
	"github.com/abrezinsky/councilvote/internal/errors"
	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/models"
	"github.com/abrezinsky/councilvote/internal/repository"
)

// OnlineWindow is how recent a heartbeat must be for a user to count as online
const OnlineWindow = 60 * time.Second

// UserServiceRepository defines the repository methods needed by UserService
type UserServiceRepository interface {
	repository.UserRepository
	GetUnit(ctx context.Context, id int) (*models.PollingUnit, error)
}

// UserService manages staff and admin accounts
type UserService struct {
	log  logger.Logger
	repo UserServiceRepository
	now  func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(log logger.Logger, repo UserServiceRepository) *UserService {
	return &UserService{log: log, repo: repo, now: time.Now}
}

// UserInput is the body of a create-user request
type UserInput struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	PollingUnitID *int   `json:"pollingUnitId"`
}

// ListUsers returns all accounts with their online flag set
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range users {
		users[i].Online = users[i].LastSeen != nil && now.Sub(*users[i].LastSeen) <= OnlineWindow
	}
	return users, nil
}

// CreateUser registers an account. Role defaults to STAFF.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	u := models.User{
		Username:      strings.TrimSpace(in.Username),
		Name:          strings.TrimSpace(in.Name),
		Role:          strings.ToUpper(strings.TrimSpace(in.Role)),
		PollingUnitID: in.PollingUnitID,
	}
	if u.Username == "" || in.Password == "" || u.Name == "" {
		return nil, errors.Validation("username, password and name are required")
	}
	if u.Role == "" {
		u.Role = models.RoleStaff
	}
	if u.Role != models.RoleStaff && u.Role != models.RoleAdmin {
		return nil, errors.InvalidInputf("unknown role %q", in.Role)
	}
	if u.PollingUnitID != nil {
		if _, err := s.repo.GetUnit(ctx, *u.PollingUnitID); err != nil {
			return nil, translate(err, fmt.Sprintf("polling unit %d not found", *u.PollingUnitID), "")
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Internal(err)
	}
	u.PasswordHash = hash

	if err := s.repo.CreateUser(ctx, &u); err != nil {
		return nil, translate(err, "", "username is taken or the polling unit already has a staff account")
	}
	s.log.Info("User created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return &u, nil
}

// DeleteUser removes an account
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return translate(err, fmt.Sprintf("user %d not found", id), "")
	}
	s.log.Info("User deleted", "user_id", id)
	return nil
}

// SeedAdmin creates the first admin account when no users exist. It returns
// true when an account was created.
func (s *UserService) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, UserInput{
		Username: username,
		Password: password,
		Name:     "Administrator",
		Role:     models.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Unauthorized("invalid username or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.log.Warn("Failed login", "username", username)
		return nil, errors.Unauthorized("invalid username or password")
	}
	return u, nil
}

// Heartbeat records that a user's device is still connected
func (s *UserService) Heartbeat(ctx context.Context, id int) error {
	return translate(s.repo.TouchLastSeen(ctx, id, s.now()), fmt.Sprintf("user %d not found", id), "")
}
