// service содержит бизнес-логику accounts-сервиса:
// жизненный цикл пары токенов (выпуск, проверка, ротация, отзыв),
// операции над учётной записью и read-only агрегации по графу
// аккаунтов, подписок и видео.
//
// Основные аспекты:
//   - Service не хранит состояние запроса и безопасен для конкурентного
//     использования, если переданные хранилища потокобезопасны;
//   - единственный путь изменения слота сессии — методы из auth.go;
//   - ошибки наружу всегда несут один из видов ниже (см. Error),
//     транспорт маппит их на HTTP-коды 400/401/409/404/500.
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/pribylovaa/videovox/internal/config"
	"github.com/pribylovaa/videovox/internal/storage"
)

var (
	// ErrInvalidArgument — отсутствуют или некорректны обязательные поля.
	// Обнаруживается до обращения к хранилищу. HTTP 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized — токен отсутствует, повреждён, истёк или не совпадает
	// со слотом сессии; неверный пароль. Причина наружу не раскрывается. HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists — username или email уже заняты. HTTP 409.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound — аккаунт или канал не найден. HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrInternal — сбой хранилища или внешнего сервиса. HTTP 500.
	ErrInternal = errors.New("internal error")
)

// Error — ошибка сервиса с видом (одна из Err* выше) и сообщением,
// которое можно показать клиенту. Details заполняется при валидации:
// все отсутствующие поля собираются в один список.
type Error struct {
	Kind    error
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}

	return e.Message
}

// Unwrap отдаёт и вид, и исходную причину: errors.Is работает для обоих.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}

	return []error{e.Kind}
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func internalError(cause error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal server error", cause: cause}
}

// fieldErrors копит сообщения вида "<field> is required".
type fieldErrors []string

func (f *fieldErrors) require(name, value string) {
	if strings.TrimSpace(value) == "" {
		*f = append(*f, name+" is required")
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}

	return &Error{Kind: ErrInvalidArgument, Message: strings.Join(f, ", "), Details: f}
}

// Service описывает бизнес-логику accounts-сервиса.
type Service struct {
	storage storage.Storage
	media   storage.MediaStorage
	cfg     config.AuthConfig
	now     func() time.Time
}

// Option настраивает Service при создании.
type Option func(*Service)

// WithClock подменяет источник времени (для выпуска и проверки токенов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, media storage.MediaStorage, cfg config.AuthConfig, opts ...Option) *Service {
	s := &Service{
		storage: st,
		media:   media,
		cfg:     cfg,
		now:     time.Now,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}
