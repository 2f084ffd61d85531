// Package snapshot defines the persisted document layout of the vault and
// converts it to and from domain.State.
//
// The layout is a single JSON object with two top-level maps:
//
//	{
//	    "users":  {"<username>": {"pin": "1234"|null, "created": <unix seconds>|null, "urls": {...}, "is_admin": bool}},
//	    "tokens": {"<token>": {"expires": <unix seconds>, "username": "<username>"}}
//	}
//
// Timestamps are fractional unix seconds.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/go-playground/validator/v10"
)

type document struct {
	Users  map[string]*userRecord `json:"users"  validate:"dive,required"`
	Tokens map[string]tokenRecord `json:"tokens" validate:"dive"`
}

type userRecord struct {
	Pin     *string                   `json:"pin"`
	Created *float64                  `json:"created"`
	URLs    map[string]bookmarkRecord `json:"urls"     validate:"dive"`
	IsAdmin bool                      `json:"is_admin"`
}

type bookmarkRecord struct {
	URL      string `json:"url"      validate:"required"`
	Nickname string `json:"nickname" validate:"required"`
}

type tokenRecord struct {
	Expires  float64 `json:"expires"  validate:"gt=0"`
	Username string  `json:"username" validate:"required"`
}

var validate = validator.New()

// Encode renders st as an indented JSON document.
func Encode(st *domain.State) ([]byte, error) {
	doc := document{
		Users:  make(map[string]*userRecord, len(st.Users)),
		Tokens: make(map[string]tokenRecord, len(st.Tokens)),
	}
	for name, u := range st.Users {
		rec := &userRecord{
			Pin:     u.Pin,
			IsAdmin: u.IsAdmin,
			URLs:    make(map[string]bookmarkRecord, len(u.URLs)),
		}
		if u.Created != nil {
			sec := unixSeconds(*u.Created)
			rec.Created = &sec
		}
		for id, b := range u.URLs {
			rec.URLs[id] = bookmarkRecord{URL: b.URL, Nickname: b.Nickname}
		}
		doc.Users[name] = rec
	}
	for value, t := range st.Tokens {
		doc.Tokens[value] = tokenRecord{Expires: unixSeconds(t.ExpiresAt), Username: t.Username}
	}

	out, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return out, nil
}

// Decode parses and validates a document. Malformed records are rejected
// as a whole rather than partially loaded. Tokens that reference a user not
// present in the document are dropped.
func Decode(data []byte) (*domain.State, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	st := domain.NewState()
	for name, rec := range doc.Users {
		if !domain.ValidUsername(name) {
			return nil, fmt.Errorf("invalid snapshot: %w: %q", domain.ErrInvalidUsername, name)
		}
		if rec.Pin != nil && !domain.ValidPin(*rec.Pin) {
			return nil, fmt.Errorf("invalid snapshot: user %q: %w", name, domain.ErrInvalidPin)
		}
		u := &domain.User{
			Username: name,
			Pin:      rec.Pin,
			IsAdmin:  rec.IsAdmin,
			URLs:     make(map[string]domain.Bookmark, len(rec.URLs)),
		}
		if rec.Created != nil {
			created := fromUnixSeconds(*rec.Created)
			u.Created = &created
		}
		for id, b := range rec.URLs {
			u.URLs[id] = domain.Bookmark{URL: b.URL, Nickname: b.Nickname}
		}
		st.Users[name] = u
	}
	for value, rec := range doc.Tokens {
		if _, ok := st.Users[rec.Username]; !ok {
			continue
		}
		st.Tokens[value] = domain.Token{
			Value:     value,
			Username:  rec.Username,
			ExpiresAt: fromUnixSeconds(rec.Expires),
		}
	}
	return st, nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

func fromUnixSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e6))*int64(time.Microsecond))
}
