package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

func TestAuditFilter(t *testing.T) {
	got := auditFilter(ports.AuditFilter{EntityType: "issue", EntityID: "i-1"})
	if len(got) != 2 || got["entity_type"] != "issue" || got["entity_id"] != "i-1" {
		t.Fatalf("unexpected filter: %v", got)
	}
	if len(auditFilter(ports.AuditFilter{})) != 0 {
		t.Fatalf("empty filter should match everything")
	}
}

func TestAuditFindOptions(t *testing.T) {
	opts := auditFindOptions(ports.AuditFilter{Limit: 25})
	if opts.Limit == nil || *opts.Limit != 25 {
		t.Fatalf("limit not applied: %v", opts.Limit)
	}
	sort, ok := opts.Sort.(bson.D)
	if !ok || len(sort) != 1 || sort[0].Key != "created_at" || sort[0].Value != -1 {
		t.Fatalf("expected newest-first sort, got %v", opts.Sort)
	}
	if auditFindOptions(ports.AuditFilter{}).Limit != nil {
		t.Fatalf("zero limit should leave the cursor unbounded")
	}
}

func TestConfigTimeout(t *testing.T) {
	if got := (Config{}).timeout(); got != defaultTimeout {
		t.Fatalf("timeout = %s, want %s", got, defaultTimeout)
	}
	if got := (Config{Timeout: time.Second}).timeout(); got != time.Second {
		t.Fatalf("timeout = %s, want 1s", got)
	}
}

func TestOpen_RequiresDatabase(t *testing.T) {
	if _, err := Open(context.Background(), Config{URI: "mongodb://localhost:27017"}); err == nil {
		t.Fatalf("expected error for empty database name")
	}
}

func TestConfirmParent_RemovesOrphanWhenProjectGone(t *testing.T) {
	undone := 0
	err := confirmParent(context.Background(),
		func(context.Context) (bool, error) { return false, nil },
		func(context.Context) error { undone++; return nil },
	)
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if undone != 1 {
		t.Fatalf("undo called %d times, want 1", undone)
	}
}

func TestConfirmParent_KeepsIssueWhenProjectExists(t *testing.T) {
	err := confirmParent(context.Background(),
		func(context.Context) (bool, error) { return true, nil },
		func(context.Context) error { t.Fatal("undo must not run"); return nil },
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfirmParent_UndoFailureKeepsNotFound(t *testing.T) {
	boom := errors.New("delete failed")
	err := confirmParent(context.Background(),
		func(context.Context) (bool, error) { return false, nil },
		func(context.Context) error { return boom },
	)
	if !errors.Is(err, domain.ErrProjectNotFound) || !errors.Is(err, boom) {
		t.Fatalf("expected both errors, got %v", err)
	}
}
