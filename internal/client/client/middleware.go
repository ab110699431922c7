package client

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mcpanel/internal/client/credentials"
	"github.com/dmitrijs2005/mcpanel/internal/common"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
	"github.com/google/uuid"
)

// Handler sends a prepared request.
type Handler func(req *http.Request) (*http.Response, error)

// Middleware wraps a Handler with one pipeline stage.
type Middleware func(next Handler) Handler

// UnauthorizedHandler terminates the session. It runs synchronously, before
// the 401 response reaches the caller.
type UnauthorizedHandler func(ctx context.Context)

// CredentialReader is the part of the credential store the pipeline needs.
type CredentialReader interface {
	Get(ctx context.Context) (*credentials.Credential, error)
}

func chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func requestID() Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(common.RequestIDHeaderName) == "" {
				req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
			}
			return next(req)
		}
	}
}

func logRequests(log logging.Logger) Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)

			args := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"request_id", req.Header.Get(common.RequestIDHeaderName),
				"duration", time.Since(start),
			}
			if err != nil {
				log.Warn(req.Context(), "request failed", append(args, "error", err)...)
				return resp, err
			}
			log.Debug(req.Context(), "request", append(args, "status", resp.StatusCode)...)
			return resp, nil
		}
	}
}

func interceptUnauthorized(onUnauthorized UnauthorizedHandler) Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			if err == nil && resp.StatusCode == http.StatusUnauthorized {
				onUnauthorized(req.Context())
			}
			return resp, err
		}
	}
}

func injectCredential(creds CredentialReader, log logging.Logger) Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			req.Header.Del(common.AuthorizationHeaderName)

			cred, err := creds.Get(req.Context())
			if err != nil {
				log.Warn(req.Context(), "credential store read failed", "error", err)
			}
			if cred != nil && cred.Token != "" {
				req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+cred.Token)
			}
			return next(req)
		}
	}
}
