package post

import (
	"context"
	"net/http"
	"strconv"

	"Agora/internal/api/handlers"
	"Agora/internal/core/posts"
)

// Handler serves the social.agora.post.* endpoints
type Handler struct {
	service posts.Service
}

// NewHandler creates a new post handler
func NewHandler(service posts.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// idInput is the body of delete, like and unlike
type idInput struct {
	ID int64 `json:"id"`
}

// CountOutput is the response of like and unlike
type CountOutput struct {
	Count int `json:"count"`
}

// GetPostOutput wraps an optional post; absence is {"post": null}
type GetPostOutput struct {
	Post *posts.Post `json:"post"`
}

// GetAuthorPostsOutput lists an author's posts, newest first
type GetAuthorPostsOutput struct {
	Posts []*posts.Post `json:"posts"`
}

// HandleCreate creates a post authored by the caller
// POST /xrpc/social.agora.post.create
//
// Request body: { "content": "..." }
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req posts.CreatePostRequest
	if !handlers.DecodeBody(w, r, maxBodyBytes, &req) {
		return
	}
	did, ok := callerDID(w, r)
	if !ok {
		return
	}
	req.AuthorDID = did

	post, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		handleServiceError(w, err, "")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, post)
}

// HandleEdit replaces the content of one of the caller's posts
// POST /xrpc/social.agora.post.edit
//
// Request body: { "id": 1, "content": "..." }
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req posts.EditPostRequest
	if !handlers.DecodeBody(w, r, maxBodyBytes, &req) {
		return
	}
	did, ok := callerDID(w, r)
	if !ok {
		return
	}
	if !requireID(w, req.ID) {
		return
	}
	req.EditorDID = did

	post, err := h.service.EditPost(r.Context(), req)
	if err != nil {
		handleServiceError(w, err, "Only the author can edit")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, post)
}

// HandleDelete removes one of the caller's posts
// POST /xrpc/social.agora.post.delete
//
// Request body: { "id": 1 }
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req idInput
	if !handlers.DecodeBody(w, r, 1024, &req) {
		return
	}
	did, ok := callerDID(w, r)
	if !ok {
		return
	}
	if !requireID(w, req.ID) {
		return
	}

	if err := h.service.DeletePost(r.Context(), did, req.ID); err != nil {
		handleServiceError(w, err, "Only the author can delete")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, struct{}{})
}

// HandleLike adds the caller's like
// POST /xrpc/social.agora.post.like
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.handleLikeChange(w, r, h.service.LikePost)
}

// HandleUnlike removes the caller's like
// POST /xrpc/social.agora.post.unlike
func (h *Handler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.handleLikeChange(w, r, h.service.UnlikePost)
}

func (h *Handler) handleLikeChange(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, callerDID string, id int64) (int, error)) {
	var req idInput
	if !handlers.DecodeBody(w, r, 1024, &req) {
		return
	}
	did, ok := callerDID(w, r)
	if !ok {
		return
	}
	if !requireID(w, req.ID) {
		return
	}

	count, err := apply(r.Context(), did, req.ID)
	if err != nil {
		handleServiceError(w, err, "")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, CountOutput{Count: count})
}

// HandleComment appends a comment and returns the updated post
// POST /xrpc/social.agora.post.comment
//
// Request body: { "id": 1, "content": "..." }
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	var req posts.CommentPostRequest
	if !handlers.DecodeBody(w, r, maxBodyBytes, &req) {
		return
	}
	did, ok := callerDID(w, r)
	if !ok {
		return
	}
	if !requireID(w, req.ID) {
		return
	}
	req.AuthorDID = did

	post, err := h.service.CommentPost(r.Context(), req)
	if err != nil {
		handleServiceError(w, err, "")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, post)
}

// HandleGet returns one post
// GET /xrpc/social.agora.post.get?id={id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "id must be an integer")
		return
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, "")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, GetPostOutput{Post: post})
}

// HandleGetAuthorPosts lists every post by actor, newest first
// GET /xrpc/social.agora.post.getAuthorPosts?actor={did}
func (h *Handler) HandleGetAuthorPosts(w http.ResponseWriter, r *http.Request) {
	actorDID, ok := handlers.ParseDIDParam(w, r, "actor")
	if !ok {
		return
	}

	result, err := h.service.GetUserPosts(r.Context(), actorDID)
	if err != nil {
		handleServiceError(w, err, "")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, GetAuthorPostsOutput{Posts: result})
}
