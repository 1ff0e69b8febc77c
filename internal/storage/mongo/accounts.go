package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/videovox/internal/models"
	"github.com/pribylovaa/videovox/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// accountDoc — представление аккаунта в коллекции accounts.
type accountDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Username     string               `bson:"username"`
	Email        string               `bson:"email"`
	FullName     string               `bson:"fullname"`
	Avatar       string               `bson:"avatar"`
	CoverImage   string               `bson:"cover_image,omitempty"`
	Password     string               `bson:"password"`
	RefreshToken string               `bson:"refresh_token,omitempty"`
	WatchHistory []primitive.ObjectID `bson:"watch_history"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

func (d *accountDoc) toModel() *models.Account {
	history := make([]string, 0, len(d.WatchHistory))
	for _, id := range d.WatchHistory {
		history = append(history, id.Hex())
	}

	return &models.Account{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		Avatar:       d.Avatar,
		CoverImage:   d.CoverImage,
		PasswordHash: d.Password,
		RefreshToken: d.RefreshToken,
		WatchHistory: history,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// objectID разбирает hex-идентификатор. Некорректный id для хранилища
// неотличим от отсутствующего документа.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, storage.ErrNotFound
	}

	return oid, nil
}

// CreateAccount вставляет новый аккаунт. История просмотров стартует пустым массивом.
func (m *Mongo) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	const op = "storage/mongo/CreateAccount"

	now := toMS(time.Now())
	doc := accountDoc{
		Username:     account.Username,
		Email:        account.Email,
		FullName:     account.FullName,
		Avatar:       account.Avatar,
		CoverImage:   account.CoverImage,
		Password:     account.PasswordHash,
		RefreshToken: account.RefreshToken,
		WatchHistory: []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := m.accounts.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected inserted id type %T", op, res.InsertedID)
	}
	doc.ID = oid

	return doc.toModel(), nil
}

// AccountByID возвращает аккаунт по hex-идентификатору.
func (m *Mongo) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	const op = "storage/mongo/AccountByID"

	oid, err := objectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m.findOne(ctx, op, bson.D{{Key: "_id", Value: oid}})
}

// AccountByLogin ищет по username ИЛИ email (значения уже нормализованы сервисом).
func (m *Mongo) AccountByLogin(ctx context.Context, username, email string) (*models.Account, error) {
	const op = "storage/mongo/AccountByLogin"

	var or bson.A
	if username != "" {
		or = append(or, bson.D{{Key: "username", Value: username}})
	}

	if email != "" {
		or = append(or, bson.D{{Key: "email", Value: email}})
	}

	if len(or) == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return m.findOne(ctx, op, bson.D{{Key: "$or", Value: or}})
}

func (m *Mongo) findOne(ctx context.Context, op string, filter bson.D) (*models.Account, error) {
	var doc accountDoc
	if err := m.accounts.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	return doc.toModel(), nil
}

// UpdateAccountDetails применяет частичный апдейт и возвращает документ после изменения.
func (m *Mongo) UpdateAccountDetails(ctx context.Context, id string, update storage.AccountDetailsUpdate) (*models.Account, error) {
	const op = "storage/mongo/UpdateAccountDetails"

	oid, err := objectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	set := bson.D{{Key: "updated_at", Value: toMS(time.Now())}}
	if update.FullName != nil {
		set = append(set, bson.E{Key: "fullname", Value: *update.FullName})
	}

	if update.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *update.Email})
	}

	if update.Avatar != nil {
		set = append(set, bson.E{Key: "avatar", Value: *update.Avatar})
	}

	if update.Cover != nil {
		set = append(set, bson.E{Key: "cover_image", Value: *update.Cover})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDoc
	err = m.accounts.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongodriver.ErrNoDocuments):
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		case mongodriver.IsDuplicateKeyError(err):
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: update: %w", op, err)
	}

	return doc.toModel(), nil
}

// SetPasswordHash записывает новый хэш пароля.
func (m *Mongo) SetPasswordHash(ctx context.Context, id, hash string) error {
	const op = "storage/mongo/SetPasswordHash"

	return m.updateByID(ctx, op, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "password", Value: hash},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}})
}

// SetRefreshToken безусловно перезаписывает слот сессии.
func (m *Mongo) SetRefreshToken(ctx context.Context, id, token string) error {
	const op = "storage/mongo/SetRefreshToken"

	return m.updateByID(ctx, op, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "refresh_token", Value: token},
	}}})
}

// ClearRefreshToken удаляет поле refresh_token: пустой слот не совпадёт ни с одним токеном.
func (m *Mongo) ClearRefreshToken(ctx context.Context, id string) error {
	const op = "storage/mongo/ClearRefreshToken"

	return m.updateByID(ctx, op, id, bson.D{{Key: "$unset", Value: bson.D{
		{Key: "refresh_token", Value: ""},
	}}})
}

// SwapRefreshToken — compare-and-swap слота сессии одним атомарным UpdateOne.
// Фильтр {_id, refresh_token: expected} гарантирует, что из двух конкурентных
// ротаций с одним и тем же токеном запись выполнит только одна.
func (m *Mongo) SwapRefreshToken(ctx context.Context, id, expected, token string) (bool, error) {
	const op = "storage/mongo/SwapRefreshToken"

	oid, err := objectID(id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if expected == "" {
		return false, nil
	}

	res, err := m.accounts.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "refresh_token", Value: expected}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "refresh_token", Value: token}}}},
	)
	if err != nil {
		return false, fmt.Errorf("%s: update: %w", op, err)
	}

	if res.MatchedCount == 1 {
		return true, nil
	}

	// Не совпало: различаем «нет аккаунта» и «слот другой».
	n, err := m.accounts.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("%s: count: %w", op, err)
	}

	if n == 0 {
		return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return false, nil
}

func (m *Mongo) updateByID(ctx context.Context, op, id string, update bson.D) error {
	oid, err := objectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := m.accounts.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("%s: update: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
