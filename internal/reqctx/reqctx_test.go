package reqctx

import (
	"context"
	"testing"
)

func TestValidRequestID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{NewRequestID(), true},
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"", false},
		{"not-a-uuid", false},
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8\nX-Injected: 1", false},
		{"urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
	}
	for _, tc := range cases {
		if got := ValidRequestID(tc.id); got != tc.want {
			t.Errorf("ValidRequestID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" || Actor(ctx) != "" {
		t.Fatal("empty context must yield empty values")
	}

	ctx = WithActor(WithRequestID(ctx, "rid"), "admin")
	if got := RequestID(ctx); got != "rid" {
		t.Errorf("RequestID = %q, want rid", got)
	}
	if got := Actor(ctx); got != "admin" {
		t.Errorf("Actor = %q, want admin", got)
	}
}
