package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dsavelev/userpost/internal/common"
	"github.com/dsavelev/userpost/internal/logging"
	"github.com/dsavelev/userpost/internal/server/models"
	"github.com/dsavelev/userpost/internal/server/services"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// fakeUserService returns canned values; each field nil means "fail with
// the stored error".
type fakeUserService struct {
	user *models.User
	pair *services.TokenPair
	err  error

	gotEmail    string
	gotPassword string
	gotRefresh  string
	gotPage     int
	gotPageSize int
}

func (f *fakeUserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.user, f.err
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.pair, f.err
}

func (f *fakeUserService) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	f.gotRefresh = refreshToken
	return f.pair, f.err
}

func (f *fakeUserService) Logout(ctx context.Context, refreshToken string) error {
	f.gotRefresh = refreshToken
	return f.err
}

func (f *fakeUserService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, error) {
	f.gotPage, f.gotPageSize = page, pageSize
	if f.err != nil {
		return nil, f.err
	}
	return []*models.User{f.user}, nil
}

func (f *fakeUserService) UpdateUser(ctx context.Context, id int64, params services.UpdateUserParams) (*models.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) DeleteUser(ctx context.Context, id int64) error {
	return f.err
}

type fakePostService struct {
	post *models.Post
	err  error
}

func (f *fakePostService) CreatePost(ctx context.Context, userID int64, title, content string) (*models.Post, error) {
	return f.post, f.err
}

func (f *fakePostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Post{f.post}, nil
}

func (f *fakePostService) ListUserPosts(ctx context.Context, userID int64) ([]*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Post{f.post}, nil
}

func doRequest(t *testing.T, us UserService, ps PostService, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	srv := NewServer("127.0.0.1:0", nopLogger{}, us, ps)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echoHeaderContentType, echoMIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

const (
	echoHeaderContentType   = "Content-Type"
	echoMIMEApplicationJSON = "application/json"
)

func TestRegisterUser(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{"created", `{"name":"alice","email":"a@x.com","password":"password123"}`, nil, http.StatusCreated},
		{"duplicate email", `{"email":"a@x.com","password":"password123"}`, common.ErrorAlreadyExists, http.StatusConflict},
		{"bad email", `{"email":"not-an-email","password":"password123"}`, nil, http.StatusBadRequest},
		{"missing password", `{"email":"a@x.com"}`, nil, http.StatusBadRequest},
		{"password too long", `{"email":"a@x.com","password":"` + strings.Repeat("x", 73) + `"}`, nil, http.StatusBadRequest},
		{"malformed json", `{"email":`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			us := &fakeUserService{user: &models.User{ID: 1, Name: "alice", Email: "a@x.com"}, err: tt.svcErr}
			rec := doRequest(t, us, &fakePostService{}, http.MethodPost, "/users", tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRegisterUser_ResponseOmitsPasswordHash(t *testing.T) {
	us := &fakeUserService{user: &models.User{ID: 1, Email: "a@x.com", PasswordHash: "$2a$10$secret"}}
	rec := doRequest(t, us, &fakePostService{}, http.MethodPost, "/users",
		`{"email":"a@x.com","password":"password123"}`, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("response leaks password hash: %s", rec.Body.String())
	}
}

func TestLogin(t *testing.T) {
	pair := &services.TokenPair{AccessToken: "acc", RefreshToken: "ref", TokenType: "bearer"}

	t.Run("success", func(t *testing.T) {
		us := &fakeUserService{pair: pair}
		rec := doRequest(t, us, &fakePostService{}, http.MethodPost, "/login",
			`{"email":"a@x.com","password":"password123"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
		}

		var resp tokenPairResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.AccessToken != "acc" || resp.RefreshToken != "ref" || resp.TokenType != "bearer" {
			t.Fatalf("unexpected pair: %+v", resp)
		}
	})

	t.Run("invalid credentials is 400", func(t *testing.T) {
		us := &fakeUserService{err: common.ErrInvalidCredentials}
		rec := doRequest(t, us, &fakePostService{}, http.MethodPost, "/login",
			`{"email":"a@x.com","password":"wrong"}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid credentials") {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		us := &fakeUserService{pair: pair}
		rec := doRequest(t, us, &fakePostService{}, http.MethodPost, "/login", `{"email":"a@x.com"}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Run("success keeps refresh token out of response", func(t *testing.T) {
		us := &fakeUserService{pair: &services.TokenPair{AccessToken: "acc2", RefreshToken: "ref", TokenType: "bearer"}}
		rec := doRequest(t, us, &fakePostService{}, http.MethodPost, "/refresh",
			`{"refresh_token":"ref"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
		}
		if us.gotRefresh != "ref" {
			t.Fatalf("service got token %q", us.gotRefresh)
		}
		if strings.Contains(rec.Body.String(), "refresh_token") {
			t.Fatalf("refresh response must not re-send the refresh token: %s", rec.Body.String())
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		us := &fakeUserService{err: common.ErrorUnauthorized}
		rec := doRequest(t, us, &fakePostService{}, http.MethodPost, "/refresh",
			`{"refresh_token":"stale"}`, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, &fakeUserService{}, &fakePostService{}, http.MethodPost, "/refresh", `{}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestLogout_AlwaysOK(t *testing.T) {
	us := &fakeUserService{}
	rec := doRequest(t, us, &fakePostService{}, http.MethodPost, "/logout",
		`{"refresh_token":"whatever"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if us.gotRefresh != "whatever" {
		t.Fatalf("service got token %q", us.gotRefresh)
	}
}

func TestCurrentUserEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		us := &fakeUserService{user: &models.User{ID: 7, Email: "a@x.com"}}
		rec := doRequest(t, us, &fakePostService{}, http.MethodGet, "/users/me", "",
			map[string]string{"Authorization": "Bearer sometoken"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
		}

		var resp userResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.ID != 7 {
			t.Fatalf("unexpected user: %+v", resp)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		rec := doRequest(t, &fakeUserService{}, &fakePostService{}, http.MethodGet, "/users/me", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := doRequest(t, &fakeUserService{}, &fakePostService{}, http.MethodGet, "/users/me", "",
			map[string]string{"Authorization": "Basic Zm9vOmJhcg=="})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		us := &fakeUserService{err: common.ErrorUnauthorized}
		rec := doRequest(t, us, &fakePostService{}, http.MethodGet, "/users/me", "",
			map[string]string{"Authorization": "Bearer expired"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestGetUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		us := &fakeUserService{user: &models.User{ID: 1, Email: "a@x.com"}}
		rec := doRequest(t, us, &fakePostService{}, http.MethodGet, "/users/1", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		us := &fakeUserService{err: common.ErrorNotFound}
		rec := doRequest(t, us, &fakePostService{}, http.MethodGet, "/users/404", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		rec := doRequest(t, &fakeUserService{}, &fakePostService{}, http.MethodGet, "/users/abc", "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestListUsers_PassesPagination(t *testing.T) {
	us := &fakeUserService{user: &models.User{ID: 1, Email: "a@x.com"}}
	rec := doRequest(t, us, &fakePostService{}, http.MethodGet, "/users?page=2&page_size=5", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if us.gotPage != 2 || us.gotPageSize != 5 {
		t.Fatalf("got page=%d size=%d", us.gotPage, us.gotPageSize)
	}
}

func TestUpdateUser(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		us := &fakeUserService{user: &models.User{ID: 1, Name: "renamed", Email: "a@x.com"}}
		rec := doRequest(t, us, &fakePostService{}, http.MethodPut, "/users/1", `{"name":"renamed"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("bad email rejected before service", func(t *testing.T) {
		rec := doRequest(t, &fakeUserService{}, &fakePostService{}, http.MethodPut, "/users/1",
			`{"email":"nope"}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		rec := doRequest(t, &fakeUserService{}, &fakePostService{}, http.MethodDelete, "/users/1", "", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		us := &fakeUserService{err: common.ErrorNotFound}
		rec := doRequest(t, us, &fakePostService{}, http.MethodDelete, "/users/404", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestCreatePost(t *testing.T) {
	post := &models.Post{ID: 1, Title: "hello", UserID: 1}

	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{"created", `{"title":"hello","content":"world"}`, nil, http.StatusCreated},
		{"unknown user", `{"title":"hello"}`, common.ErrorNotFound, http.StatusNotFound},
		{"missing title", `{"content":"world"}`, nil, http.StatusBadRequest},
		{"title too long", `{"title":"` + strings.Repeat("x", 101) + `"}`, nil, http.StatusBadRequest},
		{"content too long", `{"title":"ok","content":"` + strings.Repeat("x", 501) + `"}`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := &fakePostService{post: post, err: tt.svcErr}
			rec := doRequest(t, &fakeUserService{}, ps, http.MethodPost, "/users/1/posts", tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestListPosts(t *testing.T) {
	ps := &fakePostService{post: &models.Post{ID: 1, Title: "hello", UserID: 2}}
	rec := doRequest(t, &fakeUserService{}, ps, http.MethodGet, "/posts", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp []postResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 1 || resp[0].UserID != 2 {
		t.Fatalf("unexpected posts: %+v", resp)
	}
}

func TestListUserPosts_UnknownUser(t *testing.T) {
	ps := &fakePostService{err: common.ErrorNotFound}
	rec := doRequest(t, &fakeUserService{}, ps, http.MethodGet, "/users/404/posts", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Run("generated when absent", func(t *testing.T) {
		rec := doRequest(t, &fakeUserService{}, &fakePostService{}, http.MethodGet, "/health", "", nil)
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatal("expected a generated X-Request-Id")
		}
	})

	t.Run("client id preserved", func(t *testing.T) {
		rec := doRequest(t, &fakeUserService{}, &fakePostService{}, http.MethodGet, "/health", "",
			map[string]string{"X-Request-Id": "my-id"})
		if got := rec.Header().Get("X-Request-Id"); got != "my-id" {
			t.Fatalf("X-Request-Id = %q, want my-id", got)
		}
	})
}
