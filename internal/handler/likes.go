package handler

import (
	"net/http"

	"github.com/xkailive-dev/xkailive/shared/api"
	"github.com/xkailive-dev/xkailive/shared/utils"
)

// ToggleLike flips the like state of a moment for the session user and
// answers with the optimistic state. The write settles in the background;
// Settled is false until it does.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	momentId, err := pathId(r, "momentId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	liked, settled := h.likes.Toggle(momentId, user.Id)
	utils.WriteJSON(w, api.ToggleLikeResponse{
		MomentId: momentId,
		Liked:    liked,
		Settled:  settled,
	})
}

// Like sets the like explicitly. Idempotent: liking an already-liked
// moment changes nothing.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, true)
}

// Unlike removes the like explicitly.
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, false)
}

func (h *Handler) setLike(w http.ResponseWriter, r *http.Request, liked bool) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	momentId, err := pathId(r, "momentId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.likes.Set(momentId, user.Id, liked)
	utils.WriteJSON(w, api.ToggleLikeResponse{
		MomentId: momentId,
		Liked:    liked,
		Settled:  h.likes.Settled(momentId, user.Id),
	})
}

// LikeState reports the current optimistic like state of a moment for the
// session user. Clients poll it after a toggle to learn about rollbacks.
func (h *Handler) LikeState(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	momentId, err := pathId(r, "momentId")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, api.ToggleLikeResponse{
		MomentId: momentId,
		Liked:    h.likes.Liked(momentId, user.Id, false),
		Settled:  h.likes.Settled(momentId, user.Id),
	})
}
