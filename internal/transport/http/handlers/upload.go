package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pribylovaa/videovox/internal/service"
)

// parseMultipart разбирает multipart-форму с ограничением размера тела.
// Вызывающий обязан вызвать cleanup.
func (h *Handlers) parseMultipart(w http.ResponseWriter, r *http.Request) (func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.opts.MultipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return func() {}, &service.Error{Kind: service.ErrInvalidArgument, Message: "request body too large"}
		}

		return func() {}, &service.Error{Kind: service.ErrInvalidArgument, Message: "invalid multipart form"}
	}

	return func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}, nil
}

// spoolFile сохраняет файл из поля формы во временную директорию.
// Возвращает путь к файлу; пустой путь — поле не прислано.
// Временный файл удаляет сервис после загрузки; removeTemp подчищает остатки.
func (h *Handlers) spoolFile(r *http.Request, field string) (string, error) {
	const op = "handlers.spoolFile"

	src, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.opts.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	dst, err := os.CreateTemp(h.opts.TempDir, "upload-*"+strings.ToLower(filepath.Ext(hdr.Filename)))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return dst.Name(), nil
}

func removeTemp(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
