package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/policy"
	"github.com/projectforge/projectforge-api/internal/core/ports"
	"github.com/projectforge/projectforge-api/internal/core/service"
	"github.com/projectforge/projectforge-api/internal/infrastructure/db/memory"
	"github.com/projectforge/projectforge-api/internal/infrastructure/security"
)

type app struct {
	auth     *service.AuthService
	projects *service.ProjectService
	issues   *service.IssueService
	tokens   *security.JWTService
	clock    *time.Time
}

func newApp() *app {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &app{clock: &now}
	store := memory.NewStore()
	a.tokens = security.NewJWTService("scenario-secret-scenario-secret-!!", time.Hour).
		WithClock(func() time.Time { return *a.clock })
	a.auth = service.NewAuthService(store.Users(), security.NewBcryptHasher(bcrypt.MinCost), a.tokens, zerolog.Nop())
	authz := policy.NewOwnerOrAdmin()
	a.projects = service.NewProjectService(store.Projects(), authz, nil, zerolog.Nop())
	a.issues = service.NewIssueService(store.Issues(), store.Projects(), authz, nil, zerolog.Nop())
	return a
}

func (a *app) signIn(t *testing.T, username, email string) domain.Principal {
	t.Helper()
	ctx := context.Background()
	if _, err := a.auth.Register(ctx, ports.RegisterInput{Username: username, Email: email, Password: "pw-" + username}); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	res, err := a.auth.Login(ctx, email, "pw-"+username)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	p, err := a.auth.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("authenticate %s: %v", username, err)
	}
	if p.UserID != res.User.ID {
		t.Fatalf("token subject %q != user id %q", p.UserID, res.User.ID)
	}
	return p
}

func TestScenario_RegisterLoginCreateList(t *testing.T) {
	a := newApp()
	ctx := context.Background()
	alice := a.signIn(t, "alice", "alice@example.com")

	created, err := a.projects.Create(ctx, alice, ports.ProjectInput{Title: "Website"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	list, err := a.projects.List(ctx, alice)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID || list[0].OwnerUserID != alice.UserID {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestScenario_CrossUserForbidden(t *testing.T) {
	a := newApp()
	ctx := context.Background()
	alice := a.signIn(t, "alice", "alice@example.com")
	bob := a.signIn(t, "bob", "bob@example.com")

	p, _ := a.projects.Create(ctx, alice, ports.ProjectInput{Title: "Alice only"})
	issue, _ := a.issues.Create(ctx, alice, ports.IssueInput{Title: "todo", ProjectID: p.ID})

	if _, err := a.projects.Update(ctx, bob, p.ID, ports.ProjectInput{Title: "mine now"}); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("project update: expected forbidden, got %v", err)
	}
	if err := a.issues.Delete(ctx, bob, issue.ID); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("issue delete: expected forbidden, got %v", err)
	}
	bobs, _ := a.projects.List(ctx, bob)
	if len(bobs) != 0 {
		t.Fatalf("bob sees alice's projects: %+v", bobs)
	}
}

func TestScenario_AdminBypass(t *testing.T) {
	a := newApp()
	ctx := context.Background()
	alice := a.signIn(t, "alice", "alice@example.com")

	if _, err := a.auth.EnsureAdmin(ctx, "root", "root@example.com", "root-pass"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	res, err := a.auth.Login(ctx, "root@example.com", "root-pass")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	root, _ := a.auth.Authenticate(ctx, res.Token)
	if root.Role != domain.RoleAdmin {
		t.Fatalf("expected admin principal, got %+v", root)
	}

	p, _ := a.projects.Create(ctx, alice, ports.ProjectInput{Title: "Alice's"})
	if _, err := a.projects.Update(ctx, root, p.ID, ports.ProjectInput{Title: "Moderated"}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if err := a.projects.Delete(ctx, root, p.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestScenario_ExpiredTokenRejected(t *testing.T) {
	a := newApp()
	ctx := context.Background()
	_ = a.signIn(t, "alice", "alice@example.com")

	res, _ := a.auth.Login(ctx, "alice@example.com", "pw-alice")
	*a.clock = a.clock.Add(2 * time.Hour)

	if _, err := a.auth.Authenticate(ctx, res.Token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
