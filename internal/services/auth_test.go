package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/cache"
	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
)

func newAuthService(t *testing.T, users *fakeUserRepo, cfg AuthConfig) AuthService {
	t.Helper()

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	avatars, err := NewAvatarService(logger.NewNop(), users)
	if err != nil {
		t.Fatalf("NewAvatarService: %v", err)
	}
	svc, err := NewAuthService(logger.NewNop(), users, avatars, cache.New(nil), cfg)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	users := &fakeUserRepo{}
	svc := newAuthService(t, users, AuthConfig{})
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{
		Email:     "Ada@Example.com",
		Username:  "Ada",
		Password:  "engine-no-9",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if created.Email != "ada@example.com" || created.Username != "ada" {
		t.Fatalf("normalization failed: %q / %q", created.Email, created.Username)
	}
	if created.PasswordHash == "engine-no-9" || created.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("engine-no-9")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if created.AvatarURL != "/api/users/ada/avatar" {
		t.Fatalf("avatar URL = %q", created.AvatarURL)
	}
	if len(created.AvatarPNG) == 0 {
		t.Fatal("initials avatar not generated on register")
	}

	token, user, err := svc.Login(ctx, "ada@example.com", "engine-no-9")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("login returned wrong user %s", user.ID)
	}
	parsedID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if parsedID != created.ID {
		t.Fatalf("token subject = %s, want %s", parsedID, created.ID)
	}

	if _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Fatalf("wrong password err = %v, want unauthorized", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Fatalf("unknown email err = %v, want unauthorized", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	users := &fakeUserRepo{}
	svc := newAuthService(t, users, AuthConfig{})
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
		code  apperr.ErrorCode
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Username: "ada", Password: "longenough"}, apperr.CodeValidation},
		{"short password", RegisterInput{Email: "a@b.co", Username: "ada", Password: "short"}, apperr.CodeValidation},
		{"bad username", RegisterInput{Email: "a@b.co", Username: "a!", Password: "longenough"}, apperr.CodeValidation},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.input); !apperr.IsCode(err, tc.code) {
			t.Errorf("%s: err = %v, want %s", tc.name, err, tc.code)
		}
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Username: "ada", Password: "longenough"}); err != nil {
		t.Fatalf("seed Register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Username: "other", Password: "longenough"}); !apperr.IsCode(err, apperr.CodeConflict) {
		t.Errorf("duplicate email err = %v, want conflict", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "other@example.com", Username: "ada", Password: "longenough"}); !apperr.IsCode(err, apperr.CodeConflict) {
		t.Errorf("duplicate username err = %v, want conflict", err)
	}
}

func TestParseTokenRejectsForgeries(t *testing.T) {
	users := &fakeUserRepo{}
	svc := newAuthService(t, users, AuthConfig{JWTSecret: "real-secret"})
	other := newAuthService(t, users, AuthConfig{JWTSecret: "other-secret"})

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "ada@example.com", Username: "ada", Password: "longenough"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	forged, _, err := other.Login(context.Background(), "ada@example.com", "longenough")
	if err != nil {
		t.Fatalf("Login on other service: %v", err)
	}

	if _, err := svc.ParseToken(forged); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Fatalf("forged token err = %v, want unauthorized", err)
	}
	if _, err := svc.ParseToken("not.a.jwt"); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Fatalf("garbage token err = %v, want unauthorized", err)
	}
}

func TestGitHubConnectFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"gho_test","token_type":"bearer"}`)
		case "/user":
			if got := r.Header.Get("Authorization"); got != "Bearer gho_test" {
				t.Errorf("Authorization = %q, want Bearer gho_test", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"login":"octo","avatar_url":"https://example.com/octo.png"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	users := &fakeUserRepo{}
	user := &types.User{ID: uuid.New(), Email: "ada@example.com", Username: "ada"}
	users.add(user)

	svc := newAuthService(t, users, AuthConfig{
		GitHubClientID:     "client-id",
		GitHubClientSecret: "client-secret",
		GitHubAPIURL:       srv.URL,
		GitHubEndpoint: oauth2.Endpoint{
			AuthURL:  srv.URL + "/authorize",
			TokenURL: srv.URL + "/token",
		},
	})

	authURL, err := svc.GitHubAuthURL(user.ID)
	if err != nil {
		t.Fatalf("GitHubAuthURL: %v", err)
	}
	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parsing auth URL: %v", err)
	}
	state := parsed.Query().Get("state")
	if state == "" {
		t.Fatal("auth URL carries no state")
	}

	updated, err := svc.CompleteGitHubConnect(context.Background(), state, "code-123")
	if err != nil {
		t.Fatalf("CompleteGitHubConnect: %v", err)
	}
	if updated.GithubUsername != "octo" {
		t.Fatalf("github username = %q", updated.GithubUsername)
	}
	if updated.GithubAccessToken != "gho_test" {
		t.Fatalf("github token = %q", updated.GithubAccessToken)
	}
	if updated.AvatarURL != "https://example.com/octo.png" {
		t.Fatalf("avatar URL = %q", updated.AvatarURL)
	}

	// State is single-use.
	if _, err := svc.CompleteGitHubConnect(context.Background(), state, "code-123"); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Fatalf("replayed state err = %v, want unauthorized", err)
	}
}

func TestGitHubAuthURLRequiresConfig(t *testing.T) {
	svc := newAuthService(t, &fakeUserRepo{}, AuthConfig{})

	if _, err := svc.GitHubAuthURL(uuid.New()); !apperr.IsCode(err, apperr.CodePreconditionFailed) {
		t.Fatalf("err = %v, want precondition_failed", err)
	}
}
