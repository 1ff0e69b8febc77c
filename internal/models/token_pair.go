package models

import "time"

// TokenPair — пара токенов, выдаваемая при входе и ротации.
//
// Описание:
//   - AccessToken — короткоживущий JWT с идентификационными полями аккаунта, не хранится;
//   - RefreshToken — долгоживущий JWT только с id аккаунта, хранится в слоте сессии;
//   - AccessExpiresAt/RefreshExpiresAt — моменты истечения (UTC).
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Identity — данные, зашитые в access-токен.
type Identity struct {
	AccountID string
	Email     string
	Username  string
	FullName  string
}
