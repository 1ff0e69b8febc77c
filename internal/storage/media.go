package storage

import (
	"context"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaStorage — контракт объектного хранилища для изображений профиля.
type MediaStorage interface {
	// Upload загружает локальный файл и возвращает его стабильный публичный URL.
	// Локальный файл адаптер не удаляет.
	Upload(ctx context.Context, localPath string) (string, error)
}

// ObjectKey формирует ключ объекта вида "images/<yyyy>/<mm>/<uuid><ext>".
// Расширение берётся из локального файла в нижнем регистре.
func ObjectKey(localPath string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(localPath))

	return path.Join("images", now.UTC().Format("2006"), now.UTC().Format("01"), uuid.NewString()+ext)
}

// ContentType подбирает Content-Type по расширению файла.
func ContentType(localPath string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(localPath))); ct != "" {
		return ct
	}

	return "application/octet-stream"
}

// PublicURL склеивает базовый URL и ключ объекта.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
