// Package common defines shared constants and sentinel errors used across
// the client layers. Callers should use errors.Is to match these values.
package common

import "errors"

// ErrorInvalidArgument is raised by validation that runs before a request
// leaves the client.
var ErrorInvalidArgument = errors.New("invalid argument")
