package httpserver

import (
	"net/http"

	"github.com/and161185/foodgram/internal/convert"
)

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.svc.Catalog.ListTags(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToTags(tags))
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Catalog.GetTag(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToTag(*t))
}

func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Catalog.ListIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToIngredients(items))
}

func (s *Server) getIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	i, err := s.svc.Catalog.GetIngredient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToIngredient(*i))
}
