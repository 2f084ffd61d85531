package domain

import "errors"

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrMissingField     = errors.New("URL and nickname are required")
)

// Bookmark is a user-owned (url, nickname) pair. Its id is the key in
// User.URLs and is never reused.
type Bookmark struct {
	URL      string
	Nickname string
}
