package tmdb

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch matches every FetchError: network failures and non-2xx statuses.
	ErrFetch = errors.New("tmdb fetch failed")
	// ErrDecode matches every DecodeError: a 2xx response with a malformed body.
	ErrDecode = errors.New("tmdb decode failed")
	// ErrAPIKeyMissing is wrapped in a FetchError when no API key is configured.
	ErrAPIKeyMissing = errors.New("TMDb API key is not configured")
	// ErrUnknownKind is returned by FetchPage and ParseKind for unsupported kinds.
	ErrUnknownKind = errors.New("unknown list kind")
)

// FetchError reports a request that did not produce a usable response.
// Status is 0 when the request never got an HTTP response.
type FetchError struct {
	Kind    Kind
	Page    int
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	msg := "tmdb: fetch " + e.target()
	switch {
	case e.Status != 0 && e.Message != "":
		msg += fmt.Sprintf(": status %d: %s", e.Status, e.Message)
	case e.Status != 0:
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) target() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s page %d", e.Kind, e.Page)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Path)
}

// DecodeError reports a successful response whose body could not be decoded.
type DecodeError struct {
	Kind Kind
	Page int
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	target := fmt.Sprintf("%s %s", e.Kind, e.Path)
	if e.Page > 0 {
		target = fmt.Sprintf("%s page %d", e.Kind, e.Page)
	}
	return fmt.Sprintf("tmdb: decode %s: %v", target, e.Err)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Err }
