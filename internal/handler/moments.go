package handler

import (
	"net/http"

	"github.com/xkailive-dev/xkailive/shared/api"
	"github.com/xkailive-dev/xkailive/shared/domain"
	"github.com/xkailive-dev/xkailive/shared/middleware"
	"github.com/xkailive-dev/xkailive/shared/utils"
)

// Feed lists moments as display-ready posts. Works without a session;
// liked flags need one.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	var userId domain.UserId
	if user := middleware.GetUserFromContext(r); user != nil {
		userId = user.Id
	}

	posts, err := h.feed.List(r.Context(), userId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.FeedResponse{Posts: posts})
}

// PublishMoment stores a new moment authored by the session user.
func (h *Handler) PublishMoment(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}

	var req api.CreateMomentRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.feed.Publish(r.Context(), user, req.ContentText, req.ContentImgURL)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, post)
}
