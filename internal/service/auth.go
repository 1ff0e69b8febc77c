package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/videovox/internal/models"
	"github.com/pribylovaa/videovox/internal/pkg/log"
	"github.com/pribylovaa/videovox/internal/pkg/redact"
	"github.com/pribylovaa/videovox/internal/storage"
)

// Сообщения для клиента. Причина отказа по токену наружу не уточняется.
const (
	msgUnauthorizedRequest = "unauthorized request"
	msgInvalidAccessToken  = "invalid access token"
	msgInvalidRefreshToken = "invalid refresh token"
	msgRefreshUsed         = "refresh token is expired or used"
	msgUserNotFound        = "user does not exist"
	msgInvalidCredentials  = "invalid user credentials"
)

// LoginInput — данные входа. Достаточно одного из Username/Email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Session — результат успешного входа.
type Session struct {
	Account *models.Account
	Tokens  *models.TokenPair
}

// IssueTokenPair выпускает пару токенов для аккаунта и записывает refresh-токен в слот сессии.
// Любой сбой (аккаунт не найден, запись не удалась) — ErrInternal: выпущенный,
// но не сохранённый токен не считается успехом.
func (s *Service) IssueTokenPair(ctx context.Context, accountID string) (*models.TokenPair, error) {
	const op = "service.auth.IssueTokenPair"

	lg := log.From(ctx).With("op", op, "account_id", accountID)

	acc, err := s.storage.AccountByID(ctx, accountID)
	if err != nil {
		lg.Error("issue_account_lookup_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	return s.issue(ctx, acc)
}

// issue подписывает пару и безусловно перезаписывает слот сессии.
func (s *Service) issue(ctx context.Context, acc *models.Account) (*models.TokenPair, error) {
	const op = "service.auth.issue"

	lg := log.From(ctx).With("op", op, "account_id", acc.ID)

	pair, err := s.mintPair(acc)
	if err != nil {
		lg.Error("token_sign_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	if err := s.storage.SetRefreshToken(ctx, acc.ID, pair.RefreshToken); err != nil {
		lg.Error("refresh_slot_write_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	return pair, nil
}

// Login проверяет логин (username или email) и пароль, выпускает пару токенов.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	const op = "service.auth.Login"

	username := normalize(in.Username)
	email := normalize(in.Email)

	login := username
	if login == "" {
		login = email
	}

	lg := log.From(ctx).With("op", op, "login", redact.Login(login))

	if username == "" && email == "" {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "username or email is required"))
	}

	if in.Password == "" {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "password is required"))
	}

	acc, err := s.storage.AccountByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("login_user_not_found")
			return nil, fmt.Errorf("%s: %w", op, newError(ErrNotFound, msgUserNotFound))
		}

		lg.Error("login_lookup_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	if !checkPassword(acc.PasswordHash, in.Password) {
		lg.Warn("login_bad_password", slog.String("account_id", acc.ID))
		return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgInvalidCredentials))
	}

	pair, err := s.issue(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("login_ok", slog.String("account_id", acc.ID))

	return &Session{Account: acc.Sanitized(), Tokens: pair}, nil
}

// Logout очищает слот сессии. Повторный выход не ошибка.
func (s *Service) Logout(ctx context.Context, accountID string) error {
	const op = "service.auth.Logout"

	lg := log.From(ctx).With("op", op, "account_id", accountID)

	if err := s.storage.ClearRefreshToken(ctx, accountID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("logout_account_gone")
			return nil
		}

		lg.Error("logout_failed", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, internalError(err))
	}

	return nil
}

// RefreshTokens обменивает refresh-токен на новую пару (ротация).
// Предъявленный токен должен совпадать со слотом байт в байт; запись нового
// значения — compare-and-swap, поэтому из двух конкурентных ротаций
// с одним токеном проходит ровно одна, вторая получает ErrUnauthorized.
func (s *Service) RefreshTokens(ctx context.Context, presented string) (*models.TokenPair, error) {
	const op = "service.auth.RefreshTokens"

	lg := log.From(ctx).With("op", op)

	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgUnauthorizedRequest))
	}

	accountID, err := s.parseRefresh(presented)
	if err != nil {
		lg.Warn("refresh_parse_failed", slog.String("token", redact.Token()))
		return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgInvalidRefreshToken))
	}

	lg = lg.With("account_id", accountID)

	acc, err := s.storage.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_account_not_found")
			return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgInvalidRefreshToken))
		}

		lg.Error("refresh_lookup_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	if acc.RefreshToken == "" || acc.RefreshToken != presented {
		lg.Warn("refresh_slot_mismatch")
		return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgRefreshUsed))
	}

	pair, err := s.mintPair(acc)
	if err != nil {
		lg.Error("token_sign_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	swapped, err := s.storage.SwapRefreshToken(ctx, acc.ID, presented, pair.RefreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh_account_gone")
			return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgInvalidRefreshToken))
		}

		lg.Error("refresh_swap_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	if !swapped {
		// Параллельная ротация успела раньше.
		lg.Warn("refresh_reused")
		return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgRefreshUsed))
	}

	return pair, nil
}

// VerifyAccessToken — единственный шлюз защищённых операций.
// Возвращает аккаунт без пароля и слота сессии. Побочных эффектов нет.
func (s *Service) VerifyAccessToken(ctx context.Context, token string) (*models.Account, error) {
	const op = "service.auth.VerifyAccessToken"

	lg := log.From(ctx).With("op", op)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgUnauthorizedRequest))
	}

	id, err := s.parseAccess(token)
	if err != nil {
		lg.Debug("access_parse_failed")
		return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgInvalidAccessToken))
	}

	acc, err := s.storage.AccountByID(ctx, id.AccountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("access_account_not_found", slog.String("account_id", id.AccountID))
			return nil, fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, msgInvalidAccessToken))
		}

		lg.Error("access_lookup_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	return acc.Sanitized(), nil
}

// normalize приводит username/email к хранимому виду.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
