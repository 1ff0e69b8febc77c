package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/videovox/internal/errors"
	"github.com/pribylovaa/videovox/internal/transport/http/middleware"
)

func (h *Handlers) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.AccountFrom(r.Context())

	profile, err := h.svc.GetChannelProfile(r.Context(), chi.URLParam(r, "username"), viewer.ID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, channelFromModel(profile))
}

func (h *Handlers) WatchHistory(w http.ResponseWriter, r *http.Request) {
	acc, _ := middleware.AccountFrom(r.Context())

	videos, err := h.svc.GetWatchHistory(r.Context(), acc.ID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, historyFromModel(videos))
}
