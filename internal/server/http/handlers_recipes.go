package httpserver

import (
	"fmt"
	"net/http"

	"github.com/and161185/foodgram/internal/convert"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/service"
)

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	p, err := s.page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f := service.ParseRecipeFilter(r.URL.Query())
	recipes, total, err := s.svc.Recipes.List(r.Context(), ViewerFrom(r.Context()), f, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := paginate(r, p, total, convert.ToRecipes(recipes, s.imageURL(r)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Recipes.Get(r.Context(), ViewerFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToRecipe(*rec, s.imageURL(r)))
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	var in convert.RecipeWriteDTO
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Recipes.Create(r.Context(), ViewerFrom(r.Context()), convert.FromRecipeWrite(in))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToRecipe(*rec, s.imageURL(r)))
}

// updateRecipe serves PUT and PATCH alike: tag and ingredient sets are replaced wholesale.
func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in convert.RecipeWriteDTO
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Recipes.Update(r.Context(), ViewerFrom(r.Context()), id, convert.FromRecipeWrite(in))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToRecipe(*rec, s.imageURL(r)))
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Recipes.Delete(r.Context(), ViewerFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	s.addMark(w, r, model.MarkFavorite)
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	s.removeMark(w, r, model.MarkFavorite)
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	s.addMark(w, r, model.MarkCart)
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	s.removeMark(w, r, model.MarkCart)
}

func (s *Server) addMark(w http.ResponseWriter, r *http.Request, kind model.MarkKind) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	short, err := s.svc.Marks.Add(r.Context(), kind, ViewerFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToRecipeShort(*short, s.imageURL(r)))
}

func (s *Server) removeMark(w http.ResponseWriter, r *http.Request, kind model.MarkKind) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Marks.Remove(r.Context(), kind, ViewerFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) downloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Shopping.Download(r.Context(), ViewerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", list.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(list.Body)
}
