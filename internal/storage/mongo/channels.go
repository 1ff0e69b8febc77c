package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/pribylovaa/videovox/internal/models"
	"github.com/pribylovaa/videovox/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

type channelProfileDoc struct {
	ID                        primitive.ObjectID `bson:"_id"`
	FullName                  string             `bson:"fullname"`
	Username                  string             `bson:"username"`
	Email                     string             `bson:"email"`
	Avatar                    string             `bson:"avatar"`
	CoverImage                string             `bson:"cover_image"`
	SubscribersCount          int64              `bson:"subscribers_count"`
	ChannelsSubscribedToCount int64              `bson:"channels_subscribed_to_count"`
	IsSubscribed              bool               `bson:"is_subscribed"`
}

type videoOwnerDoc struct {
	FullName string `bson:"fullname"`
	Username string `bson:"username"`
	Avatar   string `bson:"avatar"`
}

type watchedVideoDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	VideoFile   string             `bson:"video_file"`
	Thumbnail   string             `bson:"thumbnail"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Views       int64              `bson:"views"`
	IsPublished bool               `bson:"is_published"`
	Owner       videoOwnerDoc      `bson:"owner"`
	CreatedAt   time.Time          `bson:"created_at"`
}

// channelProfilePipeline — профиль канала для зрителя viewer.
// Пустой зритель заменяется NilObjectID, который не совпадёт ни с одним подписчиком.
func channelProfilePipeline(username string, viewer primitive.ObjectID) mongodriver.Pipeline {
	p := mongodriver.Pipeline{
		Match(bson.D{{Key: "username", Value: username}}),
	}
	p = append(p, subscriptionCounts(viewer)...)
	p = append(p, Project(bson.D{
		{Key: "fullname", Value: 1},
		{Key: "username", Value: 1},
		{Key: "email", Value: 1},
		{Key: "avatar", Value: 1},
		{Key: "cover_image", Value: 1},
		{Key: "subscribers_count", Value: 1},
		{Key: "channels_subscribed_to_count", Value: 1},
		{Key: "is_subscribed", Value: 1},
	}))

	return p
}

// watchHistoryPipeline разворачивает watch_history с сохранением позиции,
// подтягивает видео с владельцем и возвращает документы видео в порядке хранения.
// Видео, которых уже нет в коллекции, выпадают на втором $unwind.
func watchHistoryPipeline(account primitive.ObjectID) mongodriver.Pipeline {
	return mongodriver.Pipeline{
		Match(bson.D{{Key: "_id", Value: account}}),
		Unwind("$watch_history", "pos"),
		videoWithOwnerLookup("$watch_history", "video"),
		Unwind("$video", ""),
		Sort(bson.D{{Key: "pos", Value: 1}}),
		ReplaceRoot("$video"),
	}
}

// ChannelProfile считает профиль канала одним запросом агрегации.
func (m *Mongo) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	const op = "storage/mongo/ChannelProfile"

	viewer := primitive.NilObjectID
	if viewerID != "" {
		if oid, err := primitive.ObjectIDFromHex(viewerID); err == nil {
			viewer = oid
		}
	}

	cur, err := m.accounts.Aggregate(ctx, channelProfilePipeline(username, viewer))
	if err != nil {
		return nil, fmt.Errorf("%s: aggregate: %w", op, err)
	}

	var docs []channelProfileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	d := docs[0]

	return &models.ChannelProfile{
		ID:                        d.ID.Hex(),
		FullName:                  d.FullName,
		Username:                  d.Username,
		Email:                     d.Email,
		Avatar:                    d.Avatar,
		CoverImage:                d.CoverImage,
		SubscribersCount:          d.SubscribersCount,
		ChannelsSubscribedToCount: d.ChannelsSubscribedToCount,
		IsSubscribed:              d.IsSubscribed,
	}, nil
}

// WatchHistory возвращает историю просмотров. Пустая история и отсутствующий
// аккаунт дают пустой срез: существование зрителя проверяется выше, при аутентификации.
func (m *Mongo) WatchHistory(ctx context.Context, accountID string) ([]models.WatchedVideo, error) {
	const op = "storage/mongo/WatchHistory"

	oid, err := objectID(accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cur, err := m.accounts.Aggregate(ctx, watchHistoryPipeline(oid))
	if err != nil {
		return nil, fmt.Errorf("%s: aggregate: %w", op, err)
	}

	var docs []watchedVideoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	out := make([]models.WatchedVideo, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.WatchedVideo{
			ID:          d.ID.Hex(),
			VideoFile:   d.VideoFile,
			Thumbnail:   d.Thumbnail,
			Title:       d.Title,
			Description: d.Description,
			Duration:    d.Duration,
			Views:       d.Views,
			IsPublished: d.IsPublished,
			Owner: models.VideoOwner{
				FullName: d.Owner.FullName,
				Username: d.Owner.Username,
				Avatar:   d.Owner.Avatar,
			},
			CreatedAt: d.CreatedAt,
		})
	}

	return out, nil
}
