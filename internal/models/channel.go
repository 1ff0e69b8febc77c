package models

import "time"

// ChannelProfile — проекция канала для конкретного зрителя.
// Все три вычисляемых поля берутся из одного снимка графа подписок.
type ChannelProfile struct {
	ID                        string
	FullName                  string
	Username                  string
	Email                     string
	Avatar                    string
	CoverImage                string
	SubscribersCount          int64
	ChannelsSubscribedToCount int64
	IsSubscribed              bool
}

// VideoOwner — публичная проекция владельца видео. Учётные данные сюда не попадают.
type VideoOwner struct {
	FullName string
	Username string
	Avatar   string
}

// WatchedVideo — элемент истории просмотров с денормализованным владельцем.
type WatchedVideo struct {
	ID          string
	VideoFile   string
	Thumbnail   string
	Title       string
	Description string
	Duration    float64
	Views       int64
	IsPublished bool
	Owner       VideoOwner
	CreatedAt   time.Time
}
