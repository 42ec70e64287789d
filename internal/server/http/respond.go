package httpserver

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/and161185/foodgram/internal/convert"
	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/validation"
)

// maxBody bounds request bodies; recipe images arrive inline as base64.
const maxBody = 16 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Errors string `json:"errors"`
}

// writeError maps domain errors to statuses and payloads.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		writeJSON(w, http.StatusBadRequest, fe)
		return
	}
	var ve *errs.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{ve.Field: {ve.Message}})
		return
	}

	status := http.StatusInternalServerError
	for _, m := range []struct {
		err    error
		status int
	}{
		{errs.ErrValidation, http.StatusBadRequest},
		{errs.ErrSelfFollow, http.StatusBadRequest},
		{errs.ErrAlreadyExists, http.StatusBadRequest},
		{errs.ErrEmptyCart, http.StatusBadRequest},
		{errs.ErrUnauthorized, http.StatusUnauthorized},
		{errs.ErrForbidden, http.StatusForbidden},
		{errs.ErrNotFound, http.StatusNotFound},
		{errs.ErrRateLimited, http.StatusTooManyRequests},
	} {
		if errors.Is(err, m.err) {
			status = m.status
			writeJSON(w, status, errorBody{Errors: message(err, m.err)})
			return
		}
	}

	s.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, status, errorBody{Errors: "internal server error"})
}

// message drops the trailing sentinel text from a wrapped error,
// so "recipe is already in favorites: already exists" reads naturally.
func message(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimSuffix(msg, ": "+sentinel.Error()); trimmed != "" {
		return trimmed
	}
	return msg
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.Invalid("", "request body is empty")
		}
		return errs.Invalid("", "malformed JSON: "+err.Error())
	}
	return nil
}

// pathID parses a numeric URL parameter; anything else is a missing resource.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.ErrNotFound
	}
	return id, nil
}

// page reads ?page and ?limit; limit falls back to the default and is capped.
func (s *Server) page(r *http.Request) (model.Page, error) {
	q := r.URL.Query()
	p := model.Page{Number: 1, Limit: s.opts.PageSize}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("invalid page: %w", errs.ErrNotFound)
		}
		p.Number = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, s.opts.MaxPageSize)
	}
	// keeps Number*Limit and the offset within int
	if p.Number > math.MaxInt/p.Limit {
		return p, fmt.Errorf("invalid page: %w", errs.ErrNotFound)
	}
	return p, nil
}

// paginate wraps results with count and neighbour links. A page past the end is not found.
func paginate[T any](r *http.Request, p model.Page, total int, results []T) (convert.PageDTO[T], error) {
	if p.Number > 1 && p.Offset() >= total {
		return convert.PageDTO[T]{}, fmt.Errorf("invalid page: %w", errs.ErrNotFound)
	}
	out := convert.PageDTO[T]{Count: total, Results: results}
	if p.Number*p.Limit < total {
		next := pageLink(r, p.Number+1)
		out.Next = &next
	}
	if p.Number > 1 {
		prev := pageLink(r, p.Number-1)
		out.Previous = &prev
	}
	return out, nil
}

func pageLink(r *http.Request, n int) string {
	u := *r.URL
	q := u.Query()
	if n == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	u.Scheme = scheme(r)
	u.Host = r.Host
	return u.String()
}

func scheme(r *http.Request) string {
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		return "https"
	}
	return "http"
}

// imageURL makes relative media URLs absolute for the request host.
func (s *Server) imageURL(r *http.Request) convert.URLFunc {
	return func(key string) string {
		u := s.opts.ImageURL(key)
		if strings.HasPrefix(u, "/") {
			return scheme(r) + "://" + r.Host + u
		}
		return u
	}
}

// recipesLimit reads ?recipes_limit; absent or invalid means no limit.
func recipesLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
