package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/store"
	"github.com/ErlanBelekov/pin-vault/internal/transport/http/handler"
	"github.com/ErlanBelekov/pin-vault/internal/usecase"
	"github.com/gin-gonic/gin"
)

type fakeAdminUsecase struct {
	listUsers  func(ctx context.Context, actor string) ([]usecase.UserSummary, error)
	createUser func(ctx context.Context, actor, username string, isAdmin bool) error
	updateUser func(ctx context.Context, actor string, input usecase.UpdateUserInput) error
	deleteUser func(ctx context.Context, actor, username string) error
}

func (f *fakeAdminUsecase) ListUsers(ctx context.Context, actor string) ([]usecase.UserSummary, error) {
	return f.listUsers(ctx, actor)
}

func (f *fakeAdminUsecase) CreateUser(ctx context.Context, actor, username string, isAdmin bool) error {
	return f.createUser(ctx, actor, username, isAdmin)
}

func (f *fakeAdminUsecase) UpdateUser(ctx context.Context, actor string, input usecase.UpdateUserInput) error {
	return f.updateUser(ctx, actor, input)
}

func (f *fakeAdminUsecase) DeleteUser(ctx context.Context, actor, username string) error {
	return f.deleteUser(ctx, actor, username)
}

func newAdminEngine(uc *fakeAdminUsecase) *gin.Engine {
	h := handler.NewAdminHandler(uc, discard)

	r := gin.New()
	users := r.Group("/admin/users", asUser("admin"))
	users.GET("", h.List)
	users.POST("", h.Create)
	users.PUT("", h.Update)
	users.DELETE("", h.Delete)
	return r
}

func TestListUsers(t *testing.T) {
	created := time.Unix(420, 0)
	uc := &fakeAdminUsecase{
		listUsers: func(_ context.Context, actor string) ([]usecase.UserSummary, error) {
			if actor != "admin" {
				t.Errorf("actor = %q, want admin", actor)
			}
			return []usecase.UserSummary{
				{Username: "admin", Created: &created, IsAdmin: true, HasPin: true, Pin: "7197"},
				{Username: "bob", Pin: usecase.PinNotSet},
			}, nil
		},
	}
	w := send(newAdminEngine(uc), http.MethodGet, "/admin/users", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	want := `{"users":{` +
		`"admin":{"created":420,"is_admin":true,"has_pin":true,"pin":"7197"},` +
		`"bob":{"created":null,"is_admin":false,"has_pin":false,"pin":"Not Set"}}}`
	if got := w.Body.String(); got != want {
		t.Errorf("body = %s\nwant   %s", got, want)
	}
}

func TestAdmin_AuthorizationErrors(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
	}{
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrTokenInvalid, http.StatusUnauthorized},
		{store.ErrPersist, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		uc := &fakeAdminUsecase{
			listUsers:  func(_ context.Context, _ string) ([]usecase.UserSummary, error) { return nil, tc.err },
			createUser: func(_ context.Context, _, _ string, _ bool) error { return tc.err },
			updateUser: func(_ context.Context, _ string, _ usecase.UpdateUserInput) error { return tc.err },
			deleteUser: func(_ context.Context, _, _ string) error { return tc.err },
		}
		r := newAdminEngine(uc)

		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
			w := send(r, method, "/admin/users", `{"username":"carol"}`)
			if w.Code != tc.wantCode {
				t.Errorf("%s with %v: status = %d, want %d", method, tc.err, w.Code, tc.wantCode)
			}
		}
	}
}

func TestCreateUser(t *testing.T) {
	uc := &fakeAdminUsecase{
		createUser: func(_ context.Context, _, username string, isAdmin bool) error {
			if username != "carol" || !isAdmin {
				t.Errorf("args = %q %v", username, isAdmin)
			}
			return nil
		},
	}
	w := send(newAdminEngine(uc), http.MethodPost, "/admin/users", `{"username":"carol","is_admin":true}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != `{"success":true}` {
		t.Errorf("body = %s", got)
	}
}

func TestCreateUser_InvalidOrExisting_Returns400(t *testing.T) {
	for _, err := range []error{domain.ErrInvalidUsername, domain.ErrUserExists} {
		uc := &fakeAdminUsecase{
			createUser: func(_ context.Context, _, _ string, _ bool) error { return err },
		}
		w := send(newAdminEngine(uc), http.MethodPost, "/admin/users", `{"username":"carol"}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%v: status = %d, want 400", err, w.Code)
		}
	}
}

func TestUpdateUser_ForwardsOptionalFields(t *testing.T) {
	var got usecase.UpdateUserInput
	uc := &fakeAdminUsecase{
		updateUser: func(_ context.Context, _ string, in usecase.UpdateUserInput) error {
			got = in
			return nil
		},
	}
	r := newAdminEngine(uc)

	send(r, http.MethodPut, "/admin/users", `{"username":"bob","pin":"4321"}`)
	if got.Username != "bob" || got.Pin == nil || *got.Pin != "4321" || got.IsAdmin != nil {
		t.Errorf("input = %+v", got)
	}

	send(r, http.MethodPut, "/admin/users", `{"username":"bob","is_admin":false}`)
	if got.Pin != nil || got.IsAdmin == nil || *got.IsAdmin {
		t.Errorf("input = %+v", got)
	}
}

func TestUpdateUser_Errors(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{domain.ErrInvalidPin, http.StatusBadRequest, "PIN must be 4 digits"},
	}
	for _, tc := range cases {
		uc := &fakeAdminUsecase{
			updateUser: func(_ context.Context, _ string, _ usecase.UpdateUserInput) error { return tc.err },
		}
		w := send(newAdminEngine(uc), http.MethodPut, "/admin/users", `{"username":"bob","pin":"12"}`)

		if w.Code != tc.wantCode {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.wantCode)
		}
		if msg := decode(t, w)["message"]; msg != tc.wantMsg {
			t.Errorf("%v: message = %v", tc.err, msg)
		}
	}
}

func TestDeleteUser(t *testing.T) {
	uc := &fakeAdminUsecase{
		deleteUser: func(_ context.Context, actor, username string) error {
			switch username {
			case actor:
				return domain.ErrSelfDelete
			case "bob":
				return nil
			default:
				return domain.ErrUserNotFound
			}
		},
	}
	r := newAdminEngine(uc)

	if w := send(r, http.MethodDelete, "/admin/users", `{"username":"bob"}`); w.Code != http.StatusOK {
		t.Errorf("delete bob: status = %d, want 200", w.Code)
	}

	w := send(r, http.MethodDelete, "/admin/users", `{"username":"admin"}`)
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != "Cannot delete yourself" {
		t.Errorf("self delete: %d %s", w.Code, w.Body.String())
	}

	w = send(r, http.MethodDelete, "/admin/users", `{"username":"ghost"}`)
	if w.Code != http.StatusBadRequest || decode(t, w)["message"] != "Invalid username" {
		t.Errorf("unknown user: %d %s", w.Code, w.Body.String())
	}
}
