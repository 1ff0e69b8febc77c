// storage содержит контракты слоя хранилищ accounts-сервиса.
//
// storage.go - документы аккаунтов (создание/чтение/частичное обновление, слот сессии)
// и read-only агрегации поверх графа аккаунтов, подписок и видео.
// media.go - контракт объектного хранилища для аватаров и обложек.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/videovox/internal/models"
)

var (
	// ErrNotFound — документ не найден.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username/email).
	ErrAlreadyExists = errors.New("already exists")
)

// AccountDetailsUpdate — частичный апдейт профиля.
// Обновляются только непустые указатели.
type AccountDetailsUpdate struct {
	FullName *string
	Email    *string
	Avatar   *string
	Cover    *string
}

// AccountStorage выполняет операции над документами аккаунтов.
type AccountStorage interface {
	// CreateAccount создаёт аккаунт. Дубликат username/email — ErrAlreadyExists.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	// AccountByID возвращает аккаунт целиком (включая хэш пароля и слот сессии).
	// Некорректный id трактуется как ErrNotFound.
	AccountByID(ctx context.Context, id string) (*models.Account, error)
	// AccountByLogin ищет аккаунт по username ИЛИ email. Пустые значения в фильтр не попадают.
	AccountByLogin(ctx context.Context, username, email string) (*models.Account, error)
	// UpdateAccountDetails применяет апдейт и возвращает новое состояние документа.
	UpdateAccountDetails(ctx context.Context, id string, update AccountDetailsUpdate) (*models.Account, error)
	// SetPasswordHash записывает новый хэш пароля.
	SetPasswordHash(ctx context.Context, id, hash string) error
	// SetRefreshToken безусловно перезаписывает слот сессии.
	SetRefreshToken(ctx context.Context, id, token string) error
	// SwapRefreshToken атомарно меняет слот, только если в нём лежит expected.
	// Возвращает:
	//
	//	(true, nil)  — слот совпал и перезаписан;
	//	(false, nil) — слот уже содержит другое значение (или пуст);
	//	(false, ErrNotFound) — аккаунта нет.
	SwapRefreshToken(ctx context.Context, id, expected, token string) (bool, error)
	// ClearRefreshToken очищает слот сессии.
	ClearRefreshToken(ctx context.Context, id string) error
}

// ChannelStorage — read-only агрегации. Ничего не пишет.
type ChannelStorage interface {
	// ChannelProfile строит профиль канала по username одним запросом агрегации.
	// viewerID может быть пустым — тогда IsSubscribed всегда false.
	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	// WatchHistory возвращает историю просмотров в порядке хранения.
	// Пустая история — пустой срез, не ошибка.
	WatchHistory(ctx context.Context, accountID string) ([]models.WatchedVideo, error)
}

// Storage — верхнеуровневый интерфейс документного хранилища.
type Storage interface {
	AccountStorage
	ChannelStorage
	Close(ctx context.Context) error
}
