package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/actuallystonmai/bookshelf/internal/service"
)

// GET /books?q=&page=&limit=
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	// Parse and validate page
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 || parsed > 10000 {
			writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, "Invalid page parameter")
			return
		}
		page = parsed
	}

	// Parse and validate limit
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	writeJSON(w, http.StatusOK, h.service.ListBooks(r.URL.Query().Get("q"), page, limit))
}

// GET /books/{bookID}
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, "Invalid book id parameter")
		return
	}

	book, err := h.service.GetBook(bookID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// GET /books/page-range
func (h *Handler) GetPageRange(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.PageRange())
}
