package handler

import (
	"net/http"

	"github.com/xkailive-dev/xkailive/shared/api"
	"github.com/xkailive-dev/xkailive/shared/utils"
)

// ListComments returns the live top-level comments of a moment, oldest
// first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	momentId, err := pathId(r, "momentId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	comments, err := h.comments.List(r.Context(), momentId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, api.CommentsResponse{Comments: comments})
}

// CreateComment posts a comment or reply on a moment.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	momentId, err := pathId(r, "momentId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var req api.CreateCommentRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), user, momentId, req.Content, req.ParentCommentId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, comment)
}

// DeleteComment soft-deletes the session user's own comment.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	commentId, err := pathId(r, "commentId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.comments.Delete(r.Context(), user, commentId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
