package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/videovox/internal/errors"
	"github.com/pribylovaa/videovox/internal/service"
	"github.com/pribylovaa/videovox/internal/transport/http/middleware"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	cleanup, err := h.parseMultipart(w, r)
	defer cleanup()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	avatar, err := h.spoolFile(r, "avatar")
	defer removeTemp(avatar)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	cover, err := h.spoolFile(r, "coverImage")
	defer removeTemp(cover)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	acc, err := h.svc.Register(r.Context(), service.RegisterInput{
		FullName:   r.FormValue("fullname"),
		Email:      r.FormValue("email"),
		Username:   r.FormValue("username"),
		Password:   r.FormValue("password"),
		AvatarPath: avatar,
		CoverPath:  cover,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountFromModel(acc))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	sess, err := h.svc.Login(r.Context(), service.LoginInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setTokenCookies(w, sess.Tokens)
	writeJSON(w, http.StatusOK, loginResponse{
		User:         accountFromModel(sess.Account),
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	acc, _ := middleware.AccountFrom(r.Context())

	if err := h.svc.Logout(r.Context(), acc.ID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.clearTokenCookies(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "user logged out"})
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.refreshToken(w, r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	pair, err := h.svc.RefreshTokens(r.Context(), token)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, tokensResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	acc, _ := middleware.AccountFrom(r.Context())

	var in changePasswordRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), acc.ID, in.OldPassword, in.NewPassword); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "password changed successfully"})
}
