package http

import (
	"net/http"

	"matumizi/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryJSON(cats))
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	cat, err := s.svc.Catalog.AddCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryJSON{ID: cat.ID, Name: cat.Name})
}

func (s *Server) handleListSubcategories(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseOptionalID(r.URL.Query(), "category_id")
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	subs, err := s.svc.Catalog.ListSubcategories(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubcategoryJSON(subs))
}

func (s *Server) handleAddSubcategory(w http.ResponseWriter, r *http.Request) {
	var req subcategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	sub, err := s.svc.Catalog.AddSubcategory(r.Context(), req.CategoryID, req.Name)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, subcategoryJSON{ID: sub.ID, Name: sub.Name, CategoryID: sub.CategoryID})
}
