package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"github.com/avolkov/streamtube/internal/events"
	"github.com/avolkov/streamtube/internal/logging"
	"github.com/avolkov/streamtube/internal/models"
	"github.com/avolkov/streamtube/internal/repo"
	"github.com/avolkov/streamtube/internal/search"
	"github.com/avolkov/streamtube/internal/storage"
)

type AuthService struct {
	Repo    repo.GormRepo
	Tokens  *TokenService
	Storage storage.Uploader
	Events  *events.Producer
	Index   *search.Index
}

type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *multipart.FileHeader
	CoverImage *multipart.FileHeader
}

type LoginResult struct {
	User *models.PublicUser
	Pair *TokenPair
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	exists, err := s.Repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		l.Error("register_failed", "reason", "uniqueness check", "error", err)
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	if in.Avatar == nil {
		return nil, fmt.Errorf("%w: avatar is required", ErrValidation)
	}

	avatarURL, err := s.Storage.Upload(ctx, in.Avatar)
	if err != nil {
		l.Error("register_failed", "reason", "avatar upload", "error", err)
		return nil, ErrUploadFailed
	}

	coverURL := ""
	if in.CoverImage != nil {
		coverURL, err = s.Storage.Upload(ctx, in.CoverImage)
		if err != nil {
			// The cover image is optional, a failed upload does not block
			// registration.
			l.Warn("cover_upload_failed", "error", err)
			coverURL = ""
		}
	}

	user := models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   in.Password,
		Avatar:     avatarURL,
		CoverImage: coverURL,
	}
	if err := s.Repo.Create(ctx, &user); err != nil {
		l.Error("register_failed", "reason", "create", "error", err)
		return nil, err
	}

	created, err := s.Repo.PublicByID(ctx, user.ID)
	if err != nil {
		l.Error("register_failed", "reason", "refetch after create", "error", err)
		return nil, fmt.Errorf("user missing after create: %w", err)
	}

	s.publish(ctx, user.ID, "user_registered", user.Username)
	if err := s.Index.IndexUser(ctx, *created); err != nil {
		l.Warn("index_failed", "error", err)
	}

	l.Info("user_registered", "user_id", user.ID.String())
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.TrimSpace(email)
	if username == "" && email == "" {
		return nil, fmt.Errorf("%w: username or email is required", ErrValidation)
	}

	user, err := s.Repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		l.Error("login_failed", "reason", "lookup", "error", err)
		return nil, err
	}

	if !user.CheckPassword(password) {
		l.Warn("login_failed", "reason", "password mismatch", "user_id", user.ID.String())
		return nil, ErrInvalidCredentials
	}

	pair, err := s.Tokens.IssueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	pub, err := s.Repo.PublicByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, user.ID, "user_logged_in", user.Username)

	l.Info("user_logged_in", "user_id", user.ID.String())
	return &LoginResult{User: pub, Pair: pair}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.Tokens.Revoke(ctx, userID); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "error", err)
		return err
	}
	s.publish(ctx, userID, "user_logged_out", "")
	return nil
}

// Refresh is verify-then-reissue: a valid presented token resolves the user
// and the rotation itself reuses IssueTokenPair, superseding the old token.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	userID, err := s.Tokens.VerifyRefreshToken(ctx, presented)
	if err != nil {
		return nil, err
	}
	return s.Tokens.IssueTokenPair(ctx, userID)
}

func (s *AuthService) publish(ctx context.Context, userID uuid.UUID, eventType, username string) {
	event := map[string]any{
		"type":    eventType,
		"user_id": userID.String(),
	}
	if username != "" {
		event["username"] = username
	}
	if err := s.Events.PublishEvent(ctx, userID.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "error", err)
	}
}
