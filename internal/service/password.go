package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/videovox/internal/pkg/log"
	"github.com/pribylovaa/videovox/internal/pkg/redact"
	"github.com/pribylovaa/videovox/internal/storage"
)

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.password.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ChangePassword меняет пароль после проверки старого.
func (s *Service) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	const op = "service.password.ChangePassword"

	lg := log.From(ctx).With("op", op, "account_id", accountID)

	var fe fieldErrors
	fe.require("oldPassword", oldPassword)
	fe.require("newPassword", newPassword)
	if err := fe.err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	acc, err := s.storage.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, newError(ErrNotFound, msgUserNotFound))
		}

		lg.Error("change_password_lookup_failed", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, internalError(err))
	}

	if !checkPassword(acc.PasswordHash, oldPassword) {
		lg.Warn("change_password_bad_old", slog.String("password", redact.Password()))
		return fmt.Errorf("%s: %w", op, newError(ErrUnauthorized, "invalid old password"))
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		lg.Error("change_password_hash_failed", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, internalError(err))
	}

	if err := s.storage.SetPasswordHash(ctx, accountID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, newError(ErrNotFound, msgUserNotFound))
		}

		lg.Error("change_password_write_failed", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, internalError(err))
	}

	lg.Info("password_changed")

	return nil
}
