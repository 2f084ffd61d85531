package store

import (
	"encoding/base64"
	"fmt"
	"io"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/metrics"
)

const tokenBytes = 32

// IssueToken creates a fresh token for username valid for domain.TokenTTL.
func (tx *Tx) IssueToken(username string) (domain.Token, error) {
	if _, err := tx.user(username); err != nil {
		return domain.Token{}, err
	}
	if err := tx.mutate(); err != nil {
		return domain.Token{}, err
	}

	var value string
	for {
		raw := make([]byte, tokenBytes)
		if _, err := io.ReadFull(tx.random, raw); err != nil {
			return domain.Token{}, fmt.Errorf("generate token: %w", err)
		}
		value = base64.RawURLEncoding.EncodeToString(raw)
		if _, taken := tx.st.Tokens[value]; !taken {
			break
		}
	}

	tok := domain.Token{
		Value:     value,
		Username:  username,
		ExpiresAt: tx.now.Add(domain.TokenTTL),
	}
	tx.st.Tokens[value] = tok
	tx.afterCommit(metrics.TokensIssuedTotal.Inc)
	return tok, nil
}

// ValidateToken resolves value to a username. An expired token is evicted
// when the Tx is writable; in a read-only Tx it is only reported invalid.
func (tx *Tx) ValidateToken(value string) (string, error) {
	tok, ok := tx.st.Tokens[value]
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	if tok.ValidAt(tx.now) {
		return tok.Username, nil
	}

	if tx.mutate() == nil {
		delete(tx.st.Tokens, value)
		tx.afterCommit(func() { metrics.TokensEvictedTotal.WithLabelValues("expired").Inc() })
	}
	return "", domain.ErrTokenInvalid
}

// RevokeAll removes every token bound to username and returns how many
// were removed.
func (tx *Tx) RevokeAll(username string) int {
	var revoked []string
	for value, tok := range tx.st.Tokens {
		if tok.Username == username {
			revoked = append(revoked, value)
		}
	}
	if len(revoked) == 0 || tx.mutate() != nil {
		return 0
	}

	for _, value := range revoked {
		delete(tx.st.Tokens, value)
	}
	n := len(revoked)
	tx.afterCommit(func() { metrics.TokensEvictedTotal.WithLabelValues("revoked").Add(float64(n)) })
	return n
}
