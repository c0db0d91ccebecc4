package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventhive/internal/shared/constants"
	"eventhive/internal/shared/middleware"
	"eventhive/pkg/cache"
	"eventhive/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyRequested = errors.New("already requested")
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
	ErrEmailMismatch    = errors.New("email does not match the authenticated user")
	ErrInvalidStatus    = errors.New("invalid user status")
)

type Service interface {
	SetCacheService(cacheService cache.Service)

	SaveUser(ctx context.Context, callerEmail string, req SaveUserRequest) (*SaveUserResult, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	GetRole(ctx context.Context, email string) (Role, error)
	RequestManager(ctx context.Context, callerEmail string, callerIsAdmin bool, email string) (*User, error)
	PromoteToManager(ctx context.Context, id uuid.UUID) (*User, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) (*User, error)
	DeleteUser(ctx context.Context, callerEmail string, id uuid.UUID) (*DeletionSummary, error)

	// LookupAccount backs the role-gating middleware.
	LookupAccount(ctx context.Context, email string) (*middleware.Account, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SaveUser(ctx context.Context, callerEmail string, req SaveUserRequest) (*SaveUserResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != callerEmail {
		return nil, ErrEmailMismatch
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return &SaveUserResult{Message: "User already exists", User: existing}, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user := &User{
		Name:     req.Name,
		Email:    email,
		PhotoURL: req.PhotoURL,
		Role:     RoleUser,
		Status:   StatusVerified,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// a concurrent login inserted the same email first
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, getErr := s.repo.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, getErr
			}
			return &SaveUserResult{Message: "User already exists", User: existing}, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id := user.ID.String()
	s.log.InfoContext(ctx, "User registered", "user_id", id, "email", email)
	return &SaveUserResult{InsertedID: &id, User: user}, nil
}

func (s *service) GetAllUsers(ctx context.Context) ([]User, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetRole(ctx context.Context, email string) (Role, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *service) RequestManager(ctx context.Context, callerEmail string, callerIsAdmin bool, email string) (*User, error) {
	email = strings.ToLower(email)
	if email != callerEmail && !callerIsAdmin {
		return nil, ErrEmailMismatch
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Status == StatusRequested {
		return nil, ErrAlreadyRequested
	}

	return s.repo.Update(ctx, user.ID, map[string]interface{}{"status": StatusRequested})
}

func (s *service) PromoteToManager(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.Update(ctx, id, map[string]interface{}{
		"role":   RoleManager,
		"status": StatusVerified,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAccount(ctx, user.Email)
	s.log.InfoContext(ctx, "User promoted to manager", "user_id", id.String(), "email", user.Email)
	return user, nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*User, error) {
	if !IsValidStatus(string(status)) {
		return nil, ErrInvalidStatus
	}

	user, err := s.repo.Update(ctx, id, map[string]interface{}{"status": status})
	if err != nil {
		return nil, err
	}

	s.invalidateAccount(ctx, user.Email)
	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, callerEmail string, id uuid.UUID) (*DeletionSummary, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Email == callerEmail {
		return nil, ErrCannotDeleteSelf
	}

	summary, err := s.repo.DeleteWithBookings(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	s.invalidateAccount(ctx, user.Email)
	if s.cacheService != nil {
		// released seats change event availability
		if err := s.cacheService.DeletePattern(ctx, constants.CACHE_PREFIX+":events:*"); err != nil {
			s.log.WarnContext(ctx, "failed to invalidate event cache", "error", err)
		}
	}

	s.log.InfoContext(ctx, "User deleted",
		"user_id", id.String(),
		"email", user.Email,
		"bookings_deleted", summary.BookingsDeleted,
		"seats_released", summary.SeatsReleased,
	)
	return summary, nil
}

// cachedAccount is the cache representation; Found=false records a miss.
type cachedAccount struct {
	Found  bool   `json:"found"`
	Role   string `json:"role"`
	Banned bool   `json:"banned"`
}

func (s *service) LookupAccount(ctx context.Context, email string) (*middleware.Account, error) {
	fetch := func() (interface{}, error) {
		user, err := s.repo.GetByEmail(ctx, email)
		if errors.Is(err, ErrUserNotFound) {
			return cachedAccount{}, nil
		}
		if err != nil {
			return nil, err
		}
		return cachedAccount{Found: true, Role: string(user.Role), Banned: user.Status == StatusBanned}, nil
	}

	var acc cachedAccount
	if s.cacheService != nil {
		if err := s.cacheService.GetOrSet(ctx, constants.BuildUserRoleKey(email), constants.TTL_USER_ROLE, fetch, &acc); err != nil {
			return nil, err
		}
	} else {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		acc = v.(cachedAccount)
	}

	if !acc.Found {
		return nil, nil
	}
	return &middleware.Account{Role: acc.Role, Banned: acc.Banned}, nil
}

func (s *service) invalidateAccount(ctx context.Context, email string) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildUserRoleKey(email)); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate account cache", "email", email, "error", err)
	}
}
