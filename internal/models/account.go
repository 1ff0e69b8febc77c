// models содержит доменные сущности accounts-сервиса.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import "time"

// Account — внутренняя доменная модель учётной записи.
// Важно:
//   - ID — ObjectID MongoDB. Наружу/вовнутрь конвертируется в hex-строку;
//   - Username/Email хранятся в нормализованном виде (TrimSpace + ToLower);
//   - PasswordHash — только bcrypt-хэш, наружу никогда не отдаётся;
//   - RefreshToken — единственный слот активной сессии. Пустая строка — сессии нет;
//   - WatchHistory — упорядоченные идентификаторы видео (порядок вставки).
type Account struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Avatar       string
	CoverImage   string
	PasswordHash string
	RefreshToken string
	WatchHistory []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized возвращает копию без пароля и refresh-токена.
func (a *Account) Sanitized() *Account {
	if a == nil {
		return nil
	}

	out := *a
	out.PasswordHash = ""
	out.RefreshToken = ""

	if a.WatchHistory != nil {
		out.WatchHistory = append([]string(nil), a.WatchHistory...)
	}

	return &out
}
