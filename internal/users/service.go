package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/pcforge-backend/internal/store"
	"github.com/angelmondragon/pcforge-backend/pkg/config"
	"github.com/angelmondragon/pcforge-backend/pkg/db"
	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
	"github.com/angelmondragon/pcforge-backend/pkg/security"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 8
)

// Service manages storefront accounts.
type Service interface {
	Create(ctx context.Context, username, password string) (*UserDTO, error)
	GetByID(ctx context.Context, id int64) (*UserDTO, error)
	GetByUsername(ctx context.Context, username string) (*UserDTO, error)
	Authenticate(ctx context.Context, username, password string) (*UserDTO, error)
}

type service struct {
	users    store.Collection[models.User]
	password config.PasswordConfig
	// serializes the uniqueness check with the insert for backends without
	// a unique index
	mu sync.Mutex
}

// NewService builds the users service.
func NewService(st *store.Store, password config.PasswordConfig) (Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &service{users: st.Users, password: password}, nil
}

func (s *service) Create(ctx context.Context, username, password string) (*UserDTO, error) {
	username = normalizeUsername(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	}

	created, err := s.users.Create(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if db.IsUniqueViolation(err, "username") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return FromModel(&created), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return FromModel(&user), nil
}

func (s *service) GetByUsername(ctx context.Context, username string) (*UserDTO, error) {
	user, err := s.findByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return FromModel(user), nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *service) Authenticate(ctx context.Context, username, password string) (*UserDTO, error) {
	user, err := s.findByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invalid credentials")
	}
	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invalid credentials")
	}
	return FromModel(user), nil
}

func (s *service) findByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, nil
	}
	matches, err := s.users.List(ctx, store.Where("username", username, func(u *models.User) bool {
		return u.Username == username
	}))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateCredentials(username, password string) error {
	details := map[string]string{}
	switch {
	case username == "":
		details["username"] = "is required"
	case len(username) < minUsernameLen:
		details["username"] = fmt.Sprintf("must be at least %d characters", minUsernameLen)
	case len(username) > maxUsernameLen:
		details["username"] = fmt.Sprintf("must be at most %d characters", maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		details["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLen)
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

// Seed creates the account unless the username is empty or already taken.
// It reports whether a row was inserted.
func Seed(ctx context.Context, svc Service, username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, nil
	}
	if _, err := svc.Create(ctx, username, password); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
