package httpserver

import (
	"net"
	"net/http"

	"github.com/and161185/foodgram/internal/convert"
	"github.com/and161185/foodgram/internal/validation"
)

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in convert.LoginDTO
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Struct(in); err != nil {
		s.writeError(w, r, err)
		return
	}
	tok, err := s.svc.Auth.Login(r.Context(), in.Email, in.Password, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.TokenDTO{AuthToken: tok.AccessToken})
}

// logout revokes the bearer token the request was authenticated with.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	tok, _ := bearerToken(r)
	if err := s.svc.Auth.Logout(r.Context(), tok); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in convert.UserCreateDTO
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.svc.Auth.Register(r.Context(), convert.FromUserCreate(in))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToCreatedUser(*u))
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	p, err := s.page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	users, total, err := s.svc.Users.List(r.Context(), ViewerFrom(r.Context()), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := paginate(r, p, total, convert.ToUsers(users))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Users.Me(r.Context(), ViewerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUser(*p))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Users.Get(r.Context(), ViewerFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUser(*p))
}

func (s *Server) setPassword(w http.ResponseWriter, r *http.Request) {
	var in convert.SetPasswordDTO
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Auth.SetPassword(r.Context(), ViewerFrom(r.Context()), in.CurrentPassword, in.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) subscriptions(w http.ResponseWriter, r *http.Request) {
	p, err := s.page(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	authors, total, err := s.svc.Users.Subscriptions(r.Context(), ViewerFrom(r.Context()), p, recipesLimit(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := paginate(r, p, total, convert.ToAuthors(authors, s.imageURL(r)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.svc.Users.Subscribe(r.Context(), ViewerFrom(r.Context()), id, recipesLimit(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToAuthor(*a, s.imageURL(r)))
}

func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Users.Unsubscribe(r.Context(), ViewerFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
