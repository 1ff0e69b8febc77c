package handlers

import (
	"time"

	"github.com/pribylovaa/videovox/internal/models"
)

// Ответы не содержат пароля и refresh-токена: полей под них нет.

type accountResponse struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullname"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	WatchHistory []string  `json:"watchHistory"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func accountFromModel(a *models.Account) accountResponse {
	history := a.WatchHistory
	if history == nil {
		history = []string{}
	}

	return accountResponse{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		FullName:     a.FullName,
		Avatar:       a.Avatar,
		CoverImage:   a.CoverImage,
		WatchHistory: history,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type loginResponse struct {
	User         accountResponse `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

type channelProfileResponse struct {
	ID                        string `json:"_id"`
	FullName                  string `json:"fullname"`
	Username                  string `json:"username"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

func channelFromModel(p *models.ChannelProfile) channelProfileResponse {
	return channelProfileResponse{
		ID:                        p.ID,
		FullName:                  p.FullName,
		Username:                  p.Username,
		Email:                     p.Email,
		Avatar:                    p.Avatar,
		CoverImage:                p.CoverImage,
		SubscribersCount:          p.SubscribersCount,
		ChannelsSubscribedToCount: p.ChannelsSubscribedToCount,
		IsSubscribed:              p.IsSubscribed,
	}
}

type videoOwnerResponse struct {
	FullName string `json:"fullname"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type watchedVideoResponse struct {
	ID          string             `json:"_id"`
	VideoFile   string             `json:"videoFile"`
	Thumbnail   string             `json:"thumbnail"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Duration    float64            `json:"duration"`
	Views       int64              `json:"views"`
	IsPublished bool               `json:"isPublished"`
	Owner       videoOwnerResponse `json:"owner"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func historyFromModel(videos []models.WatchedVideo) []watchedVideoResponse {
	out := make([]watchedVideoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, watchedVideoResponse{
			ID:          v.ID,
			VideoFile:   v.VideoFile,
			Thumbnail:   v.Thumbnail,
			Title:       v.Title,
			Description: v.Description,
			Duration:    v.Duration,
			Views:       v.Views,
			IsPublished: v.IsPublished,
			Owner: videoOwnerResponse{
				FullName: v.Owner.FullName,
				Username: v.Owner.Username,
				Avatar:   v.Owner.Avatar,
			},
			CreatedAt: v.CreatedAt,
		})
	}

	return out
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}
