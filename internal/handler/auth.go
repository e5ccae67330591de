package handler

import (
	"net/http"

	"github.com/xkailive-dev/xkailive/shared/api"
	"github.com/xkailive-dev/xkailive/shared/utils"
)

// GuestLogin mints a guest identity. The token goes out both in the body
// (mobile clients keep it themselves) and as a cookie (browser clients).
func (h *Handler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	var req api.GuestLoginRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, token, err := h.auth.GuestLogin(req.Name, req.AvatarURL)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    token,
		Path:     "/",
		MaxAge:   h.jwtTTLSeconds,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSONStatus(w, http.StatusCreated, api.TokenResponse{
		AccessToken: token,
		User:        user,
	})
}
