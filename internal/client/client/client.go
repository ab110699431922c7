package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

const contentTypeJSON = "application/json"

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Request describes one backend call. Path is relative to the API base and
// may carry its own query string; Query is merged into it.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   io.Reader
}

// Client is the request pipeline.
type Client struct {
	baseURL *url.URL
	handler Handler
}

// New builds the pipeline. onUnauthorized is mandatory: every 401 must end
// the session. extra middlewares run after credential injection, right before
// the transport.
func New(opts Options, creds CredentialReader, onUnauthorized UnauthorizedHandler, extra ...Middleware) (*Client, error) {
	if onUnauthorized == nil {
		return nil, errors.New("client: unauthorized handler is required")
	}
	if creds == nil {
		return nil, errors.New("client: credential reader is required")
	}

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("component", "pipeline")

	mws := []Middleware{
		requestID(),
		logRequests(log),
		interceptUnauthorized(onUnauthorized),
		injectCredential(creds, log),
	}
	mws = append(mws, extra...)

	return &Client{
		baseURL: base,
		handler: chain(hc.Do, mws...),
	}, nil
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + ref.Path
	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Do sends r through the pipeline and returns the raw response, whatever its
// status. Transport failures wrap ErrUnavailable.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.resolve(r.Path, r.Query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, r.Body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.handler(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, r.Path, ErrUnavailable, err)
	}
	return resp, nil
}

// JSON sends in (when non-nil) as the request body and decodes the response
// into out (when non-nil).
func (c *Client) JSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	resp, err := c.Do(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// Text fetches a raw text body.
func (c *Client) Text(ctx context.Context, path string, query url.Values) (string, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
		Header: http.Header{"Accept": {"text/plain, */*"}},
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errorFromResponse(resp)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return string(b), nil
}

// FilePart is the file section of a multipart request.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Multipart posts a multipart/form-data body made of fields and an optional
// file, decoding the response into out.
func (c *Client) Multipart(ctx context.Context, path string, fields map[string]string, file *FilePart, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(fw, file.Content); err != nil {
			return fmt.Errorf("copy form file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   path,
		Header: http.Header{"Content-Type": {w.FormDataContentType()}},
		Body:   &buf,
	})
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
