package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/store"
	"github.com/ErlanBelekov/pin-vault/internal/usecase"
)

// ---- Authenticate ----

func TestAuthenticate_SeedAdmin_ReturnsTokenAndAdminFlag(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewAuthUsecase(f.store)

	res, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "admin", Pin: "7197"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected a token")
	}
	if !res.IsAdmin {
		t.Error("expected is_admin = true")
	}
	if res.PinSet {
		t.Error("verify branch must not report PinSet")
	}

	username, err := uc.VerifyToken(context.Background(), res.Token)
	if err != nil || username != "admin" {
		t.Errorf("VerifyToken = (%q, %v), want (admin, nil)", username, err)
	}
}

func TestAuthenticate_UnknownUser_NeverIssuesToken(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewAuthUsecase(f.store)
	before := len(f.repo.persisted().Tokens)

	for _, in := range []usecase.AuthenticateInput{
		{Username: "ghost", Pin: "7197"},
		{Username: "ghost", Pin: "1234", IsSettingPin: true},
	} {
		_, err := uc.Authenticate(context.Background(), in)
		if !errors.Is(err, domain.ErrInvalidUsername) {
			t.Errorf("want ErrInvalidUsername, got %v", err)
		}
	}

	if got := len(f.repo.persisted().Tokens); got != before {
		t.Errorf("tokens = %d, want %d", got, before)
	}
}

func TestAuthenticate_IncorrectPin(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewAuthUsecase(f.store)

	_, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "admin", Pin: "0000"})
	if !errors.Is(err, domain.ErrIncorrectPin) {
		t.Errorf("want ErrIncorrectPin, got %v", err)
	}
}

func TestAuthenticate_PinUnset_WithoutSettingFlag_RequiresPin(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", false)
	uc := usecase.NewAuthUsecase(f.store)

	_, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "bob", Pin: "1234"})
	if !errors.Is(err, domain.ErrPinRequired) {
		t.Errorf("want ErrPinRequired, got %v", err)
	}
}

func TestAuthenticate_PinUnset_InvalidFormat(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", false)
	uc := usecase.NewAuthUsecase(f.store)

	_, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "bob", Pin: "12", IsSettingPin: true})
	if !errors.Is(err, domain.ErrInvalidPin) {
		t.Errorf("want ErrInvalidPin, got %v", err)
	}
	if f.repo.persisted().Users["bob"].Pin != nil {
		t.Error("invalid PIN must not be stored")
	}
}

func TestAuthenticate_SetThenVerify(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", false)
	uc := usecase.NewAuthUsecase(f.store)
	ctx := context.Background()

	f.now = testEpoch.Add(time.Minute)
	first, err := uc.Authenticate(ctx, usecase.AuthenticateInput{Username: "bob", Pin: "1234", IsSettingPin: true})
	if err != nil {
		t.Fatalf("set pin: %v", err)
	}
	if !first.PinSet || first.IsAdmin {
		t.Errorf("got %+v, want PinSet and not admin", first)
	}
	bob := f.repo.persisted().Users["bob"]
	if bob.Created == nil || !bob.Created.Equal(testEpoch.Add(time.Minute)) {
		t.Errorf("created = %v, want %v", bob.Created, testEpoch.Add(time.Minute))
	}

	second, err := uc.Authenticate(ctx, usecase.AuthenticateInput{Username: "bob", Pin: "1234"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if second.PinSet {
		t.Error("second call must take the verify branch")
	}
	if second.Token == first.Token {
		t.Error("re-authentication must issue a distinct token")
	}
}

func TestAuthenticate_PinSetIsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", false)
	uc := usecase.NewAuthUsecase(f.store)
	ctx := context.Background()

	if _, err := uc.Authenticate(ctx, usecase.AuthenticateInput{Username: "bob", Pin: "1234", IsSettingPin: true}); err != nil {
		t.Fatalf("set pin: %v", err)
	}

	// A second "set" with a different PIN goes through verify and fails.
	_, err := uc.Authenticate(ctx, usecase.AuthenticateInput{Username: "bob", Pin: "9999", IsSettingPin: true})
	if !errors.Is(err, domain.ErrIncorrectPin) {
		t.Errorf("want ErrIncorrectPin, got %v", err)
	}
	if pin := *f.repo.persisted().Users["bob"].Pin; pin != "1234" {
		t.Errorf("pin = %q, want 1234", pin)
	}
}

func TestAuthenticate_ConcurrentPinSet_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", false)
	uc := usecase.NewAuthUsecase(f.store)

	pins := []string{"1111", "2222", "3333", "4444", "5555", "6666", "7777", "8888"}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []string
	)
	for _, pin := range pins {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "bob", Pin: pin, IsSettingPin: true})
			if err == nil {
				mu.Lock()
				wins = append(wins, pin)
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrIncorrectPin) {
				t.Errorf("pin %s: want ErrIncorrectPin, got %v", pin, err)
			}
		}()
	}
	wg.Wait()

	if len(wins) != 1 {
		t.Fatalf("winners = %v, want exactly one", wins)
	}
	if pin := *f.repo.persisted().Users["bob"].Pin; pin != wins[0] {
		t.Errorf("stored pin = %q, want %q", pin, wins[0])
	}
}

func TestAuthenticate_PersistFailure_NoTokenNoPin(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", false)
	uc := usecase.NewAuthUsecase(f.store)
	f.repo.failSaves(errDiskFull)

	_, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "bob", Pin: "1234", IsSettingPin: true})
	if !errors.Is(err, store.ErrPersist) {
		t.Fatalf("want ErrPersist, got %v", err)
	}

	status, err := uc.CheckUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("check username: %v", err)
	}
	if !status.NeedsPin {
		t.Error("PIN must still be unset after a failed write")
	}
}

// ---- CheckUsername ----

func TestCheckUsername(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", false)
	uc := usecase.NewAuthUsecase(f.store)

	cases := []struct {
		username string
		want     usecase.UsernameStatus
	}{
		{"admin", usecase.UsernameStatus{Exists: true, NeedsPin: false}},
		{"bob", usecase.UsernameStatus{Exists: true, NeedsPin: true}},
		{"ghost", usecase.UsernameStatus{}},
	}
	for _, tc := range cases {
		got, err := uc.CheckUsername(context.Background(), tc.username)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.username, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.username, got, tc.want)
		}
	}
}

// ---- VerifyToken ----

func TestVerifyToken_ExpiresAfter24Hours(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewAuthUsecase(f.store)
	ctx := context.Background()

	res, err := uc.Authenticate(ctx, usecase.AuthenticateInput{Username: "admin", Pin: "7197"})
	if err != nil {
		t.Fatalf("auth: %v", err)
	}

	f.now = testEpoch.Add(24*time.Hour - time.Second)
	if _, err := uc.VerifyToken(ctx, res.Token); err != nil {
		t.Errorf("token must be valid before expiry: %v", err)
	}

	f.now = testEpoch.Add(24 * time.Hour)
	if _, err := uc.VerifyToken(ctx, res.Token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid at expiry, got %v", err)
	}
	if _, ok := f.repo.persisted().Tokens[res.Token]; ok {
		t.Error("expired token must be purged")
	}
}

func TestVerifyToken_Empty(t *testing.T) {
	f := newFixture(t)

	_, err := usecase.NewAuthUsecase(f.store).VerifyToken(context.Background(), "")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}
