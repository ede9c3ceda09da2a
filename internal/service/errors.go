// Package service hosts the chat sessions and the captured leads behind the
// HTTP and CLI surfaces.
package service

import "errors"

// ErrSessionNotFound is returned for an unknown or expired session id.
var ErrSessionNotFound = errors.New("session not found")
