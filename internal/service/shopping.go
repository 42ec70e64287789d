package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/metrics"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
)

// ShoppingList is a rendered shopping list ready to be sent as an attachment.
type ShoppingList struct {
	Filename string
	Body     []byte
}

// ShoppingService renders the viewer's aggregated shopping list.
type ShoppingService interface {
	// Download fails with errs.ErrEmptyCart when the cart holds no recipes.
	Download(ctx context.Context, viewer model.Viewer) (*ShoppingList, error)
}

type ShoppingServiceImpl struct {
	lines repository.ShoppingRepository
	users repository.UserRepository
	now   func() time.Time
}

var _ ShoppingService = (*ShoppingServiceImpl)(nil)

// NewShoppingService constructs ShoppingService.
func NewShoppingService(lines repository.ShoppingRepository, users repository.UserRepository) *ShoppingServiceImpl {
	return &ShoppingServiceImpl{lines: lines, users: users, now: time.Now}
}

func (s *ShoppingServiceImpl) Download(ctx context.Context, viewer model.Viewer) (*ShoppingList, error) {
	if !viewer.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	lines, err := s.lines.ShoppingList(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("shopping list: %w", err)
	}
	if len(lines) == 0 {
		return nil, errs.ErrEmptyCart
	}
	metrics.ShoppingListDownloads.Inc()
	return &ShoppingList{
		Filename: u.Username + "_shopping_list.txt",
		Body:     RenderShoppingList(u.Username, s.now(), lines),
	}, nil
}

// RenderShoppingList formats aggregated lines as plain text, one "- name - amount unit" per line.
func RenderShoppingList(username string, date time.Time, lines []model.ShoppingLine) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Shopping list for %s\n", username)
	fmt.Fprintf(&b, "Date: %s\n\n", date.Format("2006-01-02"))
	for _, l := range lines {
		fmt.Fprintf(&b, "- %s - %d %s\n", l.Name, l.Amount, l.Unit)
	}
	return b.Bytes()
}
