package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devlink/internal/service"
)

// PostHandler serves /api/posts. Every route requires a session token.
type PostHandler struct {
	service *service.PostService
	logger  *slog.Logger
}

func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{service: svc, logger: logger}
}

// HandleCreate → POST /api/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.PostInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.service.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleList → GET /api/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGet → GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleDelete → DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Msg: "Post removed"})
}

// HandleLike → PUT /api/posts/like/{id}
func (h *PostHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	likes, err := h.service.Like(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

// HandleUnlike → PUT /api/posts/unlike/{id}
func (h *PostHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	likes, err := h.service.Unlike(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

// HandleComment → POST /api/posts/comment/{id}
func (h *PostHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in service.CommentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.service.AddComment(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleRemoveComment → DELETE /api/posts/comment/{id}/{comment_id}
func (h *PostHandler) HandleRemoveComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	comments, err := h.service.RemoveComment(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "comment_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}
