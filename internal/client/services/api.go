package services

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/mcpanel/internal/client/client"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// API is the part of the request pipeline the services use.
// *client.Client implements it.
type API interface {
	JSON(ctx context.Context, method, path string, in, out any) error
	Text(ctx context.Context, path string, query url.Values) (string, error)
	Multipart(ctx context.Context, path string, fields map[string]string, file *client.FilePart, out any) error
}

// Navigator moves the client to another route.
type Navigator interface {
	Redirect(ctx context.Context, route string)
}

func seg(s string) string { return url.PathEscape(s) }

func orDiscard(log logging.Logger) logging.Logger {
	if log == nil {
		return logging.Discard()
	}
	return log
}
