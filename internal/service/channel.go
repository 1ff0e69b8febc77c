package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/videovox/internal/models"
	"github.com/pribylovaa/videovox/internal/pkg/log"
	"github.com/pribylovaa/videovox/internal/storage"
)

// GetChannelProfile возвращает профиль канала для зрителя viewerID.
// Счётчики и флаг подписки приходят из одного запроса агрегации.
func (s *Service) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	const op = "service.channel.GetChannelProfile"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%s: %w", op, newError(ErrInvalidArgument, "username is missing"))
	}

	lg := log.From(ctx).With("op", op, "channel", username)

	profile, err := s.storage.ChannelProfile(ctx, strings.ToLower(username), viewerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, newError(ErrNotFound, "channel does not exist"))
		}

		lg.Error("channel_profile_failed", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	return profile, nil
}

// GetWatchHistory возвращает историю просмотров в порядке хранения.
// Пустая история — пустой срез.
func (s *Service) GetWatchHistory(ctx context.Context, accountID string) ([]models.WatchedVideo, error) {
	const op = "service.channel.GetWatchHistory"

	history, err := s.storage.WatchHistory(ctx, accountID)
	if err != nil {
		log.From(ctx).Error("watch_history_failed",
			slog.String("op", op),
			slog.String("account_id", accountID),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, internalError(err))
	}

	if history == nil {
		history = []models.WatchedVideo{}
	}

	return history, nil
}
