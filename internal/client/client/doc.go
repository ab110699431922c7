// Package client is the single request pipeline every backend call goes
// through.
//
// # Overview
//
// A Client resolves request paths against the configured API base, applies
// JSON defaults (caller headers win), injects the bearer credential when one
// is stored and hands the request to net/http. The stages are ordinary
// middlewares, outermost first:
//
//  1. request id (X-Request-ID)
//  2. logging
//  3. unauthorized interception (any 401 ends the session)
//  4. credential injection
//
// The credential store is consulted on every request, so a credential cleared
// by one call is gone for the next one.
//
// # Error Handling
//
// Non-2xx responses are turned into *HTTPError by the JSON, Text and Multipart
// helpers. HTTPError matches one of the status-class sentinels with errors.Is:
// ErrUnauthorized, ErrNotFound, ErrValidation, ErrServer. Transport failures
// wrap ErrUnavailable, undecodable bodies wrap ErrMalformedResponse.
//
// The pipeline never retries.
package client
