package httpserver

import (
	"context"

	"github.com/and161185/foodgram/internal/model"
)

type ctxKey string

const viewerKey ctxKey = "foodgram.viewer"

// WithViewer stores the requesting identity in context.
func WithViewer(ctx context.Context, v model.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// ViewerFrom fetches the requesting identity; requests without one are anonymous.
func ViewerFrom(ctx context.Context) model.Viewer {
	v, _ := ctx.Value(viewerKey).(model.Viewer)
	return v
}
