package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/streamtube/internal/config"
	"github.com/avolkov/streamtube/internal/logging"
	"github.com/avolkov/streamtube/internal/repo"
	"github.com/avolkov/streamtube/internal/tokens"
)

// TokenService issues and rotates the access/refresh token pair. The refresh
// token occupies a single slot on the user row: every issuance overwrites the
// previous value, so at most one refresh token per user verifies at a time.
type TokenService struct {
	Repo repo.GormRepo
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// IssueTokenPair signs a fresh pair for the user and persists the refresh
// token. Internal causes are not surfaced to callers: any failure comes back
// as ErrTokenIssuance.
func (s *TokenService) IssueTokenPair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "token.issue", "user_id", userID.String())
	st := config.LoadTokenSettings()

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		l.Error("issue_failed", "reason", "user lookup", "error", err)
		return nil, ErrTokenIssuance
	}

	accessExp := time.Now().Add(st.AccessTTL)
	accessToken, err := tokens.SignAccess(user.ID.String(), user.Username, st.AccessSecret, accessExp)
	if err != nil {
		l.Error("issue_failed", "reason", "sign access", "error", err)
		return nil, ErrTokenIssuance
	}

	refreshExp := time.Now().Add(st.RefreshTTL)
	refreshToken, err := tokens.SignRefresh(user.ID.String(), st.RefreshSecret, refreshExp)
	if err != nil {
		l.Error("issue_failed", "reason", "sign refresh", "error", err)
		return nil, ErrTokenIssuance
	}

	if err := s.Repo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		l.Error("issue_failed", "reason", "persist refresh", "error", err)
		return nil, ErrTokenIssuance
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// VerifyRefreshToken checks signature and expiry, then requires exact
// equality with the stored slot. A token that verifies cryptographically but
// was rotated away (or cleared by logout) fails with ErrTokenSuperseded.
func (s *TokenService) VerifyRefreshToken(ctx context.Context, presented string) (uuid.UUID, error) {
	st := config.LoadTokenSettings()

	claims, err := tokens.RefreshClaimsFromToken(presented, st.RefreshSecret)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	if user.RefreshToken == "" || user.RefreshToken != presented {
		return uuid.Nil, ErrTokenSuperseded
	}

	return user.ID, nil
}

// Revoke clears the stored refresh token. Clearing an already-empty slot is a
// no-op success.
func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.ClearRefreshToken(ctx, userID)
}
