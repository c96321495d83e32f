package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// listComments returns every comment in insertion order.
func listComments(s Store) ([]Comment, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	if doc.Comments == nil {
		return []Comment{}, nil
	}
	return doc.Comments, nil
}

// createComment appends a new comment with a fresh id and timestamp. The
// author is taken at face value; there is no session to verify it against.
func createComment(s Store, user, text string) (Comment, error) {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.Load()
	if err != nil {
		return Comment{}, err
	}
	c := Comment{
		ID:   newCommentID(),
		User: user,
		Text: text,
		Date: nowISO(),
	}
	doc.Comments = append(doc.Comments, c)
	if err := s.Save(doc); err != nil {
		return Comment{}, err
	}
	return c, nil
}

// findCommentIndex returns the position of the comment with the given id,
// or -1.
func findCommentIndex(doc *Document, id string) int {
	for i := range doc.Comments {
		if doc.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// editComment overwrites the text of an existing comment, marks it edited
// and refreshes its timestamp. Only the stored author may edit; unlike the
// username match at login this comparison is case-sensitive, matching the
// previous server.
func editComment(s Store, id, user, text string) (Comment, error) {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.Load()
	if err != nil {
		return Comment{}, err
	}
	i := findCommentIndex(doc, id)
	if i < 0 {
		return Comment{}, ErrNotFound
	}
	if doc.Comments[i].User != user {
		return Comment{}, ErrForbidden
	}
	doc.Comments[i].Text = text
	doc.Comments[i].Edited = true
	doc.Comments[i].Date = nowISO()
	if err := s.Save(doc); err != nil {
		return Comment{}, err
	}
	return doc.Comments[i], nil
}

// deleteComment removes a comment outright; no tombstone is kept. Same
// not-found/ownership rules as editComment.
func deleteComment(s Store, id, user string) error {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.Load()
	if err != nil {
		return err
	}
	i := findCommentIndex(doc, id)
	if i < 0 {
		return ErrNotFound
	}
	if doc.Comments[i].User != user {
		return ErrForbidden
	}
	doc.Comments = append(doc.Comments[:i], doc.Comments[i+1:]...)
	return s.Save(doc)
}

type commentReq struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// GET /api/comments
func handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := listComments(store)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// POST /api/comments
func handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var in commentReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.User = strings.TrimSpace(in.User)
	in.Text = strings.TrimSpace(in.Text)
	if in.User == "" || in.Text == "" {
		errorJSON(w, http.StatusBadRequest, "user and text required")
		return
	}

	c, err := createComment(store, in.User, in.Text)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// PUT /api/comments/{id}
func handleEditComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in commentReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.User = strings.TrimSpace(in.User)
	in.Text = strings.TrimSpace(in.Text)
	if in.User == "" || in.Text == "" {
		errorJSON(w, http.StatusBadRequest, "user and text required")
		return
	}

	c, err := editComment(store, id, in.User, in.Text)
	switch {
	case errors.Is(err, ErrNotFound):
		errorJSON(w, http.StatusNotFound, "comment not found")
	case errors.Is(err, ErrForbidden):
		errorJSON(w, http.StatusForbidden, "only the author can edit a comment")
	case err != nil:
		errorJSON(w, http.StatusInternalServerError, "storage error")
	default:
		writeJSON(w, http.StatusOK, c)
	}
}

// DELETE /api/comments/{id}
func handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in commentReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.User = strings.TrimSpace(in.User)
	if in.User == "" {
		errorJSON(w, http.StatusBadRequest, "user required")
		return
	}

	err := deleteComment(store, id, in.User)
	switch {
	case errors.Is(err, ErrNotFound):
		errorJSON(w, http.StatusNotFound, "comment not found")
	case errors.Is(err, ErrForbidden):
		errorJSON(w, http.StatusForbidden, "only the author can delete a comment")
	case err != nil:
		errorJSON(w, http.StatusInternalServerError, "storage error")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
