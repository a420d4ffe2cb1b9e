package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fandomia/internal/domain"
	"fandomia/internal/repos"
	"fandomia/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users    *repos.UserRepo
	Profiles *repos.ProfileRepo
	Roles    *repos.RoleRepo
}

func NewAuthService(users *repos.UserRepo, profiles *repos.ProfileRepo, roles *repos.RoleRepo) *AuthService {
	return &AuthService{Users: users, Profiles: profiles, Roles: roles}
}

// Login checks the password and binds a fresh session id, which is the
// bearer token for later calls.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, ErrBadCreds
	}
	sid := uuid.NewString()
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return "", nil, err
	}
	return sid, u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	if sid == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.Users.SessionUser(ctx, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnauthenticated
	}
	return u, err
}

type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// SignUp registers a retail customer. New accounts always get the client
// role; staff roles are assigned out of band.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if !validate.Password(in.Password) {
		return nil, fmt.Errorf("%w: password", ErrInvalidInput)
	}
	name, ok := validate.Name(in.FullName)
	if !ok {
		return nil, fmt.Errorf("%w: full_name", ErrInvalidInput)
	}
	phone, ok := validate.Phone(in.Phone)
	if !ok {
		return nil, fmt.Errorf("%w: phone", ErrInvalidInput)
	}
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := domain.User{ID: uuid.NewString(), Email: email, Hash: string(h)}
	p := domain.Profile{FullName: name, Phone: phone, Role: domain.RoleClient.String(), Status: "active"}
	if err := s.Users.Create(ctx, u, p); err != nil {
		return nil, err
	}
	return &u, nil
}

// WhoAmIRole answers from user_roles only; "" means no explicit role.
func (s *AuthService) WhoAmIRole(ctx context.Context, userID string) (string, error) {
	return s.Roles.RoleOf(ctx, userID)
}

// RoleOf resolves the effective role for access checks on the backend.
func (s *AuthService) RoleOf(ctx context.Context, userID string) domain.Role {
	if r, err := s.Roles.RoleOf(ctx, userID); err == nil && r != "" {
		return domain.ParseRole(r)
	}
	if p, err := s.Profiles.ByID(ctx, userID); err == nil {
		return domain.ParseRole(p.Role)
	}
	return domain.RoleUnknown
}

// Profile returns a profile row. Callers read their own; staff read any.
func (s *AuthService) Profile(ctx context.Context, caller *domain.User, id string) (*domain.Profile, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if caller.ID != id && !s.RoleOf(ctx, caller.ID).Staff() {
		return nil, ErrForbidden
	}
	p, err := s.Profiles.ByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}
