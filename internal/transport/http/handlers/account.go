package handlers

import (
	"context"
	"net/http"

	apierrors "github.com/pribylovaa/videovox/internal/errors"
	"github.com/pribylovaa/videovox/internal/models"
	"github.com/pribylovaa/videovox/internal/transport/http/middleware"
)

func (h *Handlers) CurrentAccount(w http.ResponseWriter, r *http.Request) {
	acc, _ := middleware.AccountFrom(r.Context())
	writeJSON(w, http.StatusOK, accountFromModel(acc))
}

func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	acc, _ := middleware.AccountFrom(r.Context())

	var in updateAccountRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	updated, err := h.svc.UpdateAccountDetails(r.Context(), acc.ID, in.FullName, in.Email)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accountFromModel(updated))
}

func (h *Handlers) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.svc.UpdateAvatar)
}

func (h *Handlers) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.svc.UpdateCoverImage)
}

type imageUpdater func(ctx context.Context, accountID, localPath string) (*models.Account, error)

// updateImage — общий путь PATCH /avatar и PATCH /cover-image.
func (h *Handlers) updateImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdater) {
	acc, _ := middleware.AccountFrom(r.Context())

	cleanup, err := h.parseMultipart(w, r)
	defer cleanup()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	path, err := h.spoolFile(r, field)
	defer removeTemp(path)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	updated, err := update(r.Context(), acc.ID, path)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accountFromModel(updated))
}
