package service

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/streamtube/internal/models"
	"github.com/avolkov/streamtube/internal/repo"
)

type fakeUploader struct {
	fail    bool
	uploads int
}

func (f *fakeUploader) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if f.fail {
		return "", errors.New("storage unavailable")
	}
	f.uploads++
	return "https://cdn.test/" + file.Filename, nil
}

func newAuthEnv(t *testing.T) (*AuthService, *fakeUploader, repo.GormRepo) {
	t.Helper()

	tokenSvc, rp := newTokenEnv(t)
	up := &fakeUploader{}
	svc := &AuthService{
		Repo:    rp,
		Tokens:  tokenSvc,
		Storage: up,
	}
	return svc, up, rp
}

func registerInput(username string) RegisterInput {
	return RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		FullName: "Alice Example",
		Password: "pw123",
		Avatar:   &multipart.FileHeader{Filename: "avatar.png"},
	}
}

func TestRegister_ReturnsSanitizedUser(t *testing.T) {
	svc, up, rp := newAuthEnv(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "https://cdn.test/avatar.png", created.Avatar)
	assert.Equal(t, 1, up.uploads)

	body, err := json.Marshal(created)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, fields, "passwordHash")
	assert.NotContains(t, fields, "refreshToken")

	stored, err := rp.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.True(t, stored.CheckPassword("pw123"))
}

func TestRegister_LowercasesUsername(t *testing.T) {
	svc, _, _ := newAuthEnv(t)

	created, err := svc.Register(context.Background(), registerInput("AlIcE"))
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)
}

func TestRegister_ConflictLeavesNoTrace(t *testing.T) {
	svc, up, rp := newAuthEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerInput("alice"))
	assert.ErrorIs(t, err, ErrConflict)

	// The duplicate attempt neither created a row nor uploaded anything.
	var count int64
	require.NoError(t, rp.DB.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1, up.uploads)

	// Same collision through the email.
	in := registerInput("bob")
	in.Email = "alice@x.com"
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_BlankFieldsRejected(t *testing.T) {
	svc, _, _ := newAuthEnv(t)

	in := registerInput("alice")
	in.FullName = "   "
	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_AvatarRequired(t *testing.T) {
	svc, _, _ := newAuthEnv(t)

	in := registerInput("alice")
	in.Avatar = nil
	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_UploadFailure(t *testing.T) {
	svc, up, rp := newAuthEnv(t)
	up.fail = true

	_, err := svc.Register(context.Background(), registerInput("alice"))
	assert.ErrorIs(t, err, ErrUploadFailed)

	var count int64
	require.NoError(t, rp.DB.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newAuthEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice", "", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, res.Pair.AccessToken)
	require.NotEmpty(t, res.Pair.RefreshToken)
	assert.Equal(t, "alice", res.User.Username)

	// Login through the email works the same.
	res, err = svc.Login(ctx, "", "alice@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)
}

func TestLogin_WrongPasswordLeavesUserUntouched(t *testing.T) {
	svc, _, rp := newAuthEnv(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)

	before, err := rp.FindByID(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	after, err := rp.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, before.RefreshToken, after.RefreshToken)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := newAuthEnv(t)

	_, err := svc.Login(context.Background(), "ghost", "", "pw123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogin_RequiresIdentity(t *testing.T) {
	svc, _, _ := newAuthEnv(t)

	_, err := svc.Login(context.Background(), "", "", "pw123")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRefresh_RotatesAndInvalidatesOldToken(t *testing.T) {
	svc, _, _ := newAuthEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)

	login, err := svc.Login(ctx, "alice", "", "pw123")
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, login.Pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEqual(t, login.Pair.RefreshToken, pair.RefreshToken)

	_, err = svc.Refresh(ctx, login.Pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenSuperseded)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	svc, _, rp := newAuthEnv(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)
	login, err := svc.Login(ctx, "alice", "", "pw123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, created.ID))

	stored, err := rp.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.RefreshToken)

	_, err = svc.Refresh(ctx, login.Pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenSuperseded)
}
