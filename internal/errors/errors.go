// errors стандартизирует ответы об ошибках HTTP-слоя accounts-service.
// На вход принимает ошибку сервисного слоя, на выход даёт:
//   - корректный HTTP-статус;
//   - код для машинной обработки на фронте;
//   - безопасное сообщение (детали внутренних сбоев наружу не уходят).
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/videovox/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Details — список проблем валидации (все отсутствующие поля сразу).
type APIError struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервиса в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - вид ошибки сервиса (service.Err*) определяет статус, сообщение берётся из *service.Error;
//   - «голая» отмена клиентом — 499, истёкший дедлайн — 504 (если ошибку не обернул сервис);
//   - всё остальное — 500/internal без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return internal()
	}

	// Вид ошибки сервиса важнее причины: сбой записи по дедлайну — это 500, а не 504.
	var se *service.Error
	if !stderrors.As(err, &se) {
		switch {
		case stderrors.Is(err, context.Canceled):
			return StatusClientClosedRequest, ErrorResponse{Error: APIError{Code: "canceled", Message: "canceled"}}
		case stderrors.Is(err, context.DeadlineExceeded):
			return http.StatusGatewayTimeout, ErrorResponse{Error: APIError{Code: "deadline_exceeded", Message: "deadline exceeded"}}
		}
	}

	status, code, msg := baseFromKind(err)
	if status == http.StatusInternalServerError {
		return internal()
	}

	resp := ErrorResponse{Error: APIError{Code: code, Message: msg}}

	if se != nil {
		if se.Message != "" {
			resp.Error.Message = se.Message
		}
		resp.Error.Details = se.Details
	}

	return status, resp
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет статус/тело и добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func internal() (int, ErrorResponse) {
	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: "internal error",
		},
	}
}

// baseFromKind — маппинг вида ошибки сервиса на HTTP/код/сообщение по умолчанию:
//   - ErrInvalidArgument -> 400
//   - ErrUnauthorized -> 401
//   - ErrNotFound -> 404
//   - ErrAlreadyExists -> 409
//   - ErrInternal и прочее -> 500
func baseFromKind(err error) (int, string, string) {
	switch {
	case stderrors.Is(err, service.ErrInternal):
		return http.StatusInternalServerError, "internal", "internal error"
	case stderrors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case stderrors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case stderrors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, "already_exists", "already exists"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
