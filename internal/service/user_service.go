package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/internal/cache"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/repository"
)

type RegisterInput struct {
	Username string `validate:"required,min=3,max=64,alphanum"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=72"`
}

type UpdateProfileInput struct {
	Bio            *string `validate:"omitempty,max=500"`
	ProfilePicture *string `validate:"omitempty,url,max=512"`
}

// Profile is a user with follower/following counts.
type Profile struct {
	*model.User
	Followers int64 `json:"followers_count"`
	Following int64 `json:"following_count"`
}

type UserService struct {
	store *repository.Store
	graph RelationshipService
	users *cache.UserCache
	settings
}

func NewUserService(store *repository.Store, graph RelationshipService, users *cache.UserCache, opts ...Option) *UserService {
	return &UserService{store: store, graph: graph, users: users, settings: newSettings(opts)}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.store.Users.GetByUsername(ctx, in.Username); err == nil {
		return nil, &Error{Kind: KindValidation, Message: "username already taken"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	user := &model.User{
		ID:        uuid.New().String(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &Error{Kind: KindValidation, Message: "username or email already taken", Err: err}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks credentials. Unknown user and wrong password are indistinguishable.
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.store.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Kind: KindUnauthorized, Message: "invalid username or password"}
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, &Error{Kind: KindUnauthorized, Message: "invalid username or password"}
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	followers, following, err := s.graph.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Followers: followers, Following: following}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*Profile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	fields := map[string]any{"updated_at": s.now()}
	if in.Bio != nil {
		fields["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.ProfilePicture != nil {
		fields["profile_picture"] = strings.TrimSpace(*in.ProfilePicture)
	}
	if err := s.store.Users.UpdateProfile(ctx, userID, fields); err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	s.users.Invalidate(ctx, userID)
	return s.Profile(ctx, userID)
}
