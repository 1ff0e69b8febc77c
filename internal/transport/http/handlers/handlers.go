// handlers — REST-обработчики accounts-сервиса.
// Каждый обработчик разбирает запрос, вызывает сервис и пишет JSON;
// ошибки уходят через apierrors.WriteError.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pribylovaa/videovox/internal/models"
	"github.com/pribylovaa/videovox/internal/service"
)

// Service — операции сервиса, нужные транспорту.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.Account, error)
	Login(ctx context.Context, in service.LoginInput) (*service.Session, error)
	Logout(ctx context.Context, accountID string) error
	RefreshTokens(ctx context.Context, presented string) (*models.TokenPair, error)
	VerifyAccessToken(ctx context.Context, token string) (*models.Account, error)
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error
	UpdateAccountDetails(ctx context.Context, accountID, fullName, email string) (*models.Account, error)
	UpdateAvatar(ctx context.Context, accountID, localPath string) (*models.Account, error)
	UpdateCoverImage(ctx context.Context, accountID, localPath string) (*models.Account, error)
	GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, accountID string) ([]models.WatchedVideo, error)
}

// Options — ограничения тела запроса и параметры cookie.
type Options struct {
	JSONBodyLimit   int64
	MultipartMemory int64
	MaxUploadBytes  int64
	TempDir         string
	CookieSecure    bool
}

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	svc  Service
	opts Options
}

func New(svc Service, opts Options) *Handlers {
	return &Handlers{svc: svc, opts: opts}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля, тело ограничено по размеру.
func (h *Handlers) decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.JSONBodyLimit)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return badRequest(err)
	}

	return nil
}

// decodeOptional — как decodeStrict, но пустое тело (в т.ч. chunked без данных) не ошибка:
// value остаётся нулевым.
func (h *Handlers) decodeOptional(w http.ResponseWriter, r *http.Request, value any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.JSONBodyLimit)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil && !errors.Is(err, io.EOF) {
		return badRequest(err)
	}

	return nil
}

// badRequest — локальная ошибка разбора запроса -> 400.
func badRequest(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return &service.Error{Kind: service.ErrInvalidArgument, Message: "request body too large"}
	}

	if errors.Is(err, io.EOF) {
		return &service.Error{Kind: service.ErrInvalidArgument, Message: "request body is empty"}
	}

	return &service.Error{Kind: service.ErrInvalidArgument, Message: "invalid request body"}
}

type messageResponse struct {
	Message string `json:"message"`
}
