// mongo — документное хранилище accounts-сервиса поверх MongoDB.
//
// Коллекции:
//   - accounts — учётные записи со слотом сессии и историей просмотров;
//   - subscriptions — рёбра subscriber -> channel (только чтение);
//   - videos — видео с полем owner (только чтение).
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pribylovaa/videovox/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	accountsCollection      = "accounts"
	subscriptionsCollection = "subscriptions"
	videosCollection        = "videos"
	defaultDBName           = "videovox"
)

// Mongo - тонкий адаптер для подключения и коллекций MongoDB.
type Mongo struct {
	client        *mongodriver.Client
	db            *mongodriver.Database
	accounts      *mongodriver.Collection
	subscriptions *mongodriver.Collection
	videos        *mongodriver.Collection
}

// New подключается к MongoDB, проверяет соединение, подготавливает коллекции и индексы.
func New(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("mongo: empty url")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = databaseFromURI(cfg.URL)
	}
	db := cli.Database(dbName)

	m := &Mongo{
		client:        cli,
		db:            db,
		accounts:      db.Collection(accountsCollection),
		subscriptions: db.Collection(subscriptionsCollection),
		videos:        db.Collection(videosCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes создаёт индексы:
// - accounts: уникальные username и email;
// - subscriptions: уникальная пара (subscriber, channel) и channel для $lookup
//   (поиск по subscriber покрывается префиксом составного индекса);
// - videos: owner.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	plan := []struct {
		coll   *mongodriver.Collection
		models []mongodriver.IndexModel
	}{
		{
			coll: m.accounts,
			models: []mongodriver.IndexModel{
				{
					Keys:    bson.D{{Key: "username", Value: 1}},
					Options: options.Index().SetName("username_unique").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetName("email_unique").SetUnique(true),
				},
			},
		},
		{
			coll: m.subscriptions,
			models: []mongodriver.IndexModel{
				{
					Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
					Options: options.Index().SetName("subscriber_channel_unique").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "channel", Value: 1}},
					Options: options.Index().SetName("channel"),
				},
			},
		},
		{
			coll: m.videos,
			models: []mongodriver.IndexModel{
				{
					Keys:    bson.D{{Key: "owner", Value: 1}},
					Options: options.Index().SetName("owner"),
				},
			},
		},
	}

	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.models); err != nil {
			return fmt.Errorf("mongo ensure indexes (%s): %w", p.coll.Name(), err)
		}
	}

	return nil
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддается расшифровке, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}
