package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/videovox/internal/models"
	"github.com/pribylovaa/videovox/internal/storage"
)

func TestIssueTokenPair_ThenVerify_ResolvesSameAccount(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	acc := testAccount(t, "secret")

	var stored string
	env.st.EXPECT().AccountByID(gomock.Any(), acc.ID).Return(acc, nil).Times(2)
	env.st.EXPECT().SetRefreshToken(gomock.Any(), acc.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, tok string) error {
			stored = tok
			return nil
		})

	pair, err := env.svc.IssueTokenPair(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, stored)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, env.clock.Now().Add(15*time.Minute), pair.AccessExpiresAt)
	require.Equal(t, env.clock.Now().Add(24*time.Hour), pair.RefreshExpiresAt)

	got, err := env.svc.VerifyAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, acc.ID, got.ID)
	require.Empty(t, got.PasswordHash)
	require.Empty(t, got.RefreshToken)
}

func TestIssueTokenPair_Claims(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "secret")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	id, err := env.svc.parseAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, models.Identity{
		AccountID: acc.ID,
		Email:     acc.Email,
		Username:  acc.Username,
		FullName:  acc.FullName,
	}, *id)

	// refresh-токен несёт только id.
	parsed, _, err := jwt.NewParser().ParseUnverified(pair.RefreshToken, jwt.MapClaims{})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, acc.ID, claims["uid"])
	require.NotContains(t, claims, "email")
	require.NotContains(t, claims, "username")
	require.NotEmpty(t, claims["jti"])

	// Ключи access/refresh не взаимозаменяемы.
	_, err = env.svc.parseRefresh(pair.AccessToken)
	require.Error(t, err)
	_, err = env.svc.parseAccess(pair.RefreshToken)
	require.Error(t, err)
}

func TestIssueTokenPair_SameSecond_Distinct(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "secret")

	p1, err := env.svc.mintPair(acc)
	require.NoError(t, err)
	p2, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	require.NotEqual(t, p1.AccessToken, p2.AccessToken)
	require.NotEqual(t, p1.RefreshToken, p2.RefreshToken)
}

func TestIssueTokenPair_AccountMissing_Internal(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	env.st.EXPECT().AccountByID(gomock.Any(), "x").Return(nil, storage.ErrNotFound)

	_, err := env.svc.IssueTokenPair(context.Background(), "x")
	requireKind(t, err, ErrInternal, "")
}

func TestIssueTokenPair_SlotWriteFails_Internal(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "secret")
	env.st.EXPECT().AccountByID(gomock.Any(), acc.ID).Return(acc, nil)
	env.st.EXPECT().SetRefreshToken(gomock.Any(), acc.ID, gomock.Any()).Return(context.Canceled)

	pair, err := env.svc.IssueTokenPair(context.Background(), acc.ID)
	require.Nil(t, pair)
	requireKind(t, err, ErrInternal, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLogin_Validation(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	_, err := env.svc.Login(ctx, LoginInput{Password: "x"})
	requireKind(t, err, ErrInvalidArgument, "username or email is required")

	_, err = env.svc.Login(ctx, LoginInput{Username: "alice"})
	requireKind(t, err, ErrInvalidArgument, "password is required")
}

func TestLogin_NotFound(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	env.st.EXPECT().AccountByLogin(gomock.Any(), "", "ghost@x.com").Return(nil, storage.ErrNotFound)

	_, err := env.svc.Login(context.Background(), LoginInput{Email: " Ghost@X.com ", Password: "pw"})
	requireKind(t, err, ErrNotFound, "user does not exist")
}

func TestLogin_WrongPassword_NoIssue(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "right")
	env.st.EXPECT().AccountByLogin(gomock.Any(), "alice", "").Return(acc, nil)
	// SetRefreshToken не ожидается: gomock упадёт при вызове.

	sess, err := env.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	require.Nil(t, sess)
	requireKind(t, err, ErrUnauthorized, "invalid user credentials")
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "right")
	acc.RefreshToken = "old"

	env.st.EXPECT().AccountByLogin(gomock.Any(), "alice", "").Return(acc, nil)
	env.st.EXPECT().SetRefreshToken(gomock.Any(), acc.ID, gomock.Any()).Return(nil)

	sess, err := env.svc.Login(context.Background(), LoginInput{Username: "  ALICE ", Password: "right"})
	require.NoError(t, err)
	require.Equal(t, acc.ID, sess.Account.ID)
	require.Empty(t, sess.Account.PasswordHash)
	require.Empty(t, sess.Account.RefreshToken)
	require.NotEmpty(t, sess.Tokens.AccessToken)
	require.NotEqual(t, "old", sess.Tokens.RefreshToken)
}

func TestLogin_StorageError_Internal(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	env.st.EXPECT().AccountByLogin(gomock.Any(), "alice", "").Return(nil, errors.New("db down"))

	_, err := env.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "pw"})
	requireKind(t, err, ErrInternal, "internal server error")
}

// slotStorage связывает моки AccountByID/SwapRefreshToken с одним слотом в памяти.
func slotStorage(env *testEnv, acc *models.Account, slot *string) {
	var mu sync.Mutex

	env.st.EXPECT().AccountByID(gomock.Any(), acc.ID).DoAndReturn(func(context.Context, string) (*models.Account, error) {
		mu.Lock()
		defer mu.Unlock()
		cp := *acc
		cp.RefreshToken = *slot
		return &cp, nil
	}).AnyTimes()

	env.st.EXPECT().SwapRefreshToken(gomock.Any(), acc.ID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, expected, token string) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if *slot == "" || *slot != expected {
				return false, nil
			}
			*slot = token
			return true, nil
		}).AnyTimes()
}

func TestRefreshTokens_RotatesAndIsSingleUse(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	acc := testAccount(t, "pw")

	first, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	slot := first.RefreshToken
	slotStorage(env, acc, &slot)

	second, err := env.svc.RefreshTokens(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, second.RefreshToken, slot)

	_, err = env.svc.RefreshTokens(ctx, first.RefreshToken)
	requireKind(t, err, ErrUnauthorized, "refresh token is expired or used")

	// Новый токен продолжает работать.
	_, err = env.svc.RefreshTokens(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshTokens_ConcurrentSameToken_OneWinner(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "pw")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	slot := pair.RefreshToken
	slotStorage(env, acc, &slot)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.RefreshTokens(context.Background(), pair.RefreshToken)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrUnauthorized) {
				t.Errorf("unexpected error kind: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestRefreshTokens_AfterLogout_Unauthorized(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "pw")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	// Слот очищен выходом.
	env.st.EXPECT().AccountByID(gomock.Any(), acc.ID).Return(acc, nil)

	_, err = env.svc.RefreshTokens(context.Background(), pair.RefreshToken)
	requireKind(t, err, ErrUnauthorized, "")
}

func TestRefreshTokens_SwapLost_Unauthorized(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "pw")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)
	acc.RefreshToken = pair.RefreshToken

	env.st.EXPECT().AccountByID(gomock.Any(), acc.ID).Return(acc, nil)
	env.st.EXPECT().SwapRefreshToken(gomock.Any(), acc.ID, pair.RefreshToken, gomock.Any()).Return(false, nil)

	_, err = env.svc.RefreshTokens(context.Background(), pair.RefreshToken)
	requireKind(t, err, ErrUnauthorized, "refresh token is expired or used")
}

func TestRefreshTokens_SwapError_Internal(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "pw")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)
	acc.RefreshToken = pair.RefreshToken

	env.st.EXPECT().AccountByID(gomock.Any(), acc.ID).Return(acc, nil)
	env.st.EXPECT().SwapRefreshToken(gomock.Any(), acc.ID, pair.RefreshToken, gomock.Any()).Return(false, errors.New("db down"))

	_, err = env.svc.RefreshTokens(context.Background(), pair.RefreshToken)
	requireKind(t, err, ErrInternal, "")
}

func TestRefreshTokens_InvalidInputs(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	acc := testAccount(t, "pw")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	_, err = env.svc.RefreshTokens(ctx, "")
	requireKind(t, err, ErrUnauthorized, "unauthorized request")

	_, err = env.svc.RefreshTokens(ctx, "garbage")
	requireKind(t, err, ErrUnauthorized, "invalid refresh token")

	// access-токен не принимается как refresh.
	_, err = env.svc.RefreshTokens(ctx, pair.AccessToken)
	requireKind(t, err, ErrUnauthorized, "invalid refresh token")
}

func TestRefreshTokens_Expired_Unauthorized(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "pw")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	env.clock.Advance(25 * time.Hour)

	_, err = env.svc.RefreshTokens(context.Background(), pair.RefreshToken)
	requireKind(t, err, ErrUnauthorized, "invalid refresh token")
}

func TestRefreshTokens_AccountGone_Unauthorized(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	acc := testAccount(t, "pw")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	env.st.EXPECT().AccountByID(gomock.Any(), acc.ID).Return(nil, storage.ErrNotFound)

	_, err = env.svc.RefreshTokens(context.Background(), pair.RefreshToken)
	requireKind(t, err, ErrUnauthorized, "invalid refresh token")
}

func TestVerifyAccessToken_ExpiredAndForged_SameAnswer(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	acc := testAccount(t, "pw")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	// Подпись чужим ключом.
	cfg := testCfg()
	cfg.AccessTokenSecret = "other"
	forgedSvc := New(nil, nil, cfg, WithClock(env.clock.Now))
	forged, err := forgedSvc.mintPair(acc)
	require.NoError(t, err)

	_, errForged := env.svc.VerifyAccessToken(ctx, forged.AccessToken)
	requireKind(t, errForged, ErrUnauthorized, "invalid access token")

	env.clock.Advance(16 * time.Minute)
	_, errExpired := env.svc.VerifyAccessToken(ctx, pair.AccessToken)
	requireKind(t, errExpired, ErrUnauthorized, "invalid access token")

	var a, b *Error
	require.True(t, errors.As(errForged, &a))
	require.True(t, errors.As(errExpired, &b))
	require.Equal(t, a.Message, b.Message)
}

func TestVerifyAccessToken_Empty(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := env.svc.VerifyAccessToken(context.Background(), "  ")
	requireKind(t, err, ErrUnauthorized, "unauthorized request")
}

func TestVerifyAccessToken_AccountLookup(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	acc := testAccount(t, "pw")
	pair, err := env.svc.mintPair(acc)
	require.NoError(t, err)

	env.st.EXPECT().AccountByID(gomock.Any(), acc.ID).Return(nil, storage.ErrNotFound)
	_, err = env.svc.VerifyAccessToken(ctx, pair.AccessToken)
	requireKind(t, err, ErrUnauthorized, "invalid access token")

	env.st.EXPECT().AccountByID(gomock.Any(), acc.ID).Return(nil, errors.New("db down"))
	_, err = env.svc.VerifyAccessToken(ctx, pair.AccessToken)
	requireKind(t, err, ErrInternal, "")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	env, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	env.st.EXPECT().ClearRefreshToken(gomock.Any(), "id1").Return(nil)
	require.NoError(t, env.svc.Logout(ctx, "id1"))

	env.st.EXPECT().ClearRefreshToken(gomock.Any(), "id2").Return(storage.ErrNotFound)
	require.NoError(t, env.svc.Logout(ctx, "id2"))

	env.st.EXPECT().ClearRefreshToken(gomock.Any(), "id3").Return(errors.New("db down"))
	requireKind(t, env.svc.Logout(ctx, "id3"), ErrInternal, "")
}
