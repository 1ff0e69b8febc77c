package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"strings"

	"github.com/pribylovaa/videovox/internal/models"
	"github.com/pribylovaa/videovox/internal/pkg/log"
	"github.com/pribylovaa/videovox/internal/pkg/redact"
	"github.com/pribylovaa/videovox/internal/storage"
)

// RegisterInput — данные регистрации. Пути указывают на временные файлы,
// уже сохранённые транспортом; пустой путь — файл не прислан.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// Register создаёт аккаунт. Аватар обязателен, обложка — нет.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	const op = "service.account.Register"

	var fe fieldErrors
	fe.require("fullname", in.FullName)
	fe.require("email", in.Email)
	fe.require("username", in.Username)
	fe.require("password", in.Password)
	if err := fe.err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	username := normalize(in.Username)
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg := log.From(ctx).With("op", op, "username", username, "email", redact.Email(email))

	_, err = s.storage.AccountByLogin(ctx, username, email)
	switch {
	case err == nil:
		lg.Warn("register_conflict")
		return nil, fmt.Errorf("%s: %w", op, newError(ErrAlreadyExists, "user with email or username already exists"))
	case !errors.Is(err, storage.ErrNotFound):
		lg.Error("register_lookup_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	avatar, ok := s.uploadAsset(ctx, in.AvatarPath)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "avatar file is required"))
	}

	cover, _ := s.uploadAsset(ctx, in.CoverPath)

	hash, err := hashPassword(in.Password)
	if err != nil {
		lg.Error("register_hash_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	acc, err := s.storage.CreateAccount(ctx, &models.Account{
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Avatar:       avatar,
		CoverImage:   cover,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			lg.Warn("register_conflict_on_insert")
			return nil, fmt.Errorf("%s: %w", op, newError(ErrAlreadyExists, "user with email or username already exists"))
		}

		lg.Error("register_create_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	lg.Info("registered", slog.String("account_id", acc.ID))

	return acc.Sanitized(), nil
}

// UpdateAccountDetails меняет отображаемое имя и e-mail.
func (s *Service) UpdateAccountDetails(ctx context.Context, accountID, fullName, email string) (*models.Account, error) {
	const op = "service.account.UpdateAccountDetails"

	var fe fieldErrors
	fe.require("fullname", fullName)
	fe.require("email", email)
	if err := fe.err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	normEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name := strings.TrimSpace(fullName)

	return s.updateDetails(ctx, op, accountID, storage.AccountDetailsUpdate{FullName: &name, Email: &normEmail})
}

// UpdateAvatar загружает новый аватар и сохраняет его URL.
func (s *Service) UpdateAvatar(ctx context.Context, accountID, localPath string) (*models.Account, error) {
	const op = "service.account.UpdateAvatar"

	if localPath == "" {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "avatar file is missing"))
	}

	url, ok := s.uploadAsset(ctx, localPath)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "error while uploading avatar"))
	}

	return s.updateDetails(ctx, op, accountID, storage.AccountDetailsUpdate{Avatar: &url})
}

// UpdateCoverImage загружает новую обложку и сохраняет её URL.
func (s *Service) UpdateCoverImage(ctx context.Context, accountID, localPath string) (*models.Account, error) {
	const op = "service.account.UpdateCoverImage"

	if localPath == "" {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "cover image file is missing"))
	}

	url, ok := s.uploadAsset(ctx, localPath)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "error while uploading cover image"))
	}

	return s.updateDetails(ctx, op, accountID, storage.AccountDetailsUpdate{Cover: &url})
}

func (s *Service) updateDetails(ctx context.Context, op, accountID string, upd storage.AccountDetailsUpdate) (*models.Account, error) {
	lg := log.From(ctx).With("op", op, "account_id", accountID)

	acc, err := s.storage.UpdateAccountDetails(ctx, accountID, upd)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, newError(ErrNotFound, msgUserNotFound))
		case errors.Is(err, storage.ErrAlreadyExists):
			lg.Warn("update_email_taken")
			return nil, fmt.Errorf("%s: %w", op, newError(ErrAlreadyExists, "email is already in use"))
		}

		lg.Error("update_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	return acc.Sanitized(), nil
}

// uploadAsset отправляет временный файл в объектное хранилище и удаляет его.
// Любой сбой, включая ошибку удаления временного файла, означает «файла нет»:
// ok=false, решение о фатальности принимает вызывающий.
func (s *Service) uploadAsset(ctx context.Context, localPath string) (string, bool) {
	const op = "service.account.uploadAsset"

	if localPath == "" {
		return "", false
	}

	lg := log.From(ctx).With("op", op)

	url, err := s.media.Upload(ctx, localPath)
	if rmErr := os.Remove(localPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		lg.Warn("temp_remove_failed", slog.String("err", rmErr.Error()))
		return "", false
	}

	if err != nil {
		lg.Warn("upload_failed", slog.String("err", err.Error()))
		return "", false
	}

	if url == "" {
		return "", false
	}

	return url, true
}

// normalizeEmail обрезает пробелы, приводит к нижнему регистру и проверяет формат.
func normalizeEmail(raw string) (string, error) {
	email := normalize(raw)

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", newError(ErrInvalidArgument, "email is invalid")
	}

	return email, nil
}
