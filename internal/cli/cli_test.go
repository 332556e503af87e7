package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tbourn/go-bookclub-guard/internal/app"
	"github.com/tbourn/go-bookclub-guard/internal/config"
	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/services"
)

// run executes the CLI against dbPath and returns stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--db", dbPath, "--store", "sqlite", "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// mustRun is run for commands expected to succeed.
func mustRun(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	out, err := run(t, dbPath, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func wantErrIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func newDBPath(t *testing.T) string {
	t.Helper()
	t.Setenv("HOTMART_WEBHOOK_ENABLED", "false")
	t.Setenv("LOG_PRETTY", "false")
	return filepath.Join(t.TempDir(), "bookclub.db")
}

// seed stores a transaction through the same App wiring the CLI uses.
func seed(t *testing.T, dbPath string, tx domain.AccessTransaction) {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.DBPath = dbPath
	cfg.Store.Backend = "sqlite"

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	if _, err := a.Access.UpsertTransaction(context.Background(), tx); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}

func TestWords_AddListRemove(t *testing.T) {
	db := newDBPath(t)

	mustRun(t, db, "words", "add", "Spoiler", "Ending", "spoiler")
	if out := mustRun(t, db, "words", "list"); out != "spoiler\nending\n" {
		t.Fatalf("list=%q", out)
	}

	mustRun(t, db, "words", "remove", "ENDING")
	if out := mustRun(t, db, "words", "list"); out != "spoiler\n" {
		t.Fatalf("list after remove=%q", out)
	}

	_, err := run(t, db, "words", "add", "   ")
	wantErrIs(t, err, services.ErrInvalidWord)
}

func TestModerate_UsesStoredWords(t *testing.T) {
	db := newDBPath(t)
	mustRun(t, db, "words", "add", "spoiler")

	out := mustRun(t, db, "moderate", "big", "Spoiler", "inside")
	var res domain.ModerationResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.IsApproved || !reflect.DeepEqual(res.BlockedWords, []string{"spoiler"}) {
		t.Fatalf("unexpected result: %+v", res)
	}

	if out := mustRun(t, db, "moderate", "--filter", "big", "Spoiler", "inside"); out != "big *** inside\n" {
		t.Fatalf("filter=%q", out)
	}
}

func TestAccess_CheckAndSetStatus(t *testing.T) {
	db := newDBPath(t)
	seed(t, db, domain.AccessTransaction{
		BuyerEmail:    "reader@example.com",
		TransactionID: "HP100",
		ProductID:     "42",
		Status:        domain.StatusApproved,
	})

	decide := func(args ...string) domain.AccessDecision {
		t.Helper()
		out := mustRun(t, db, args...)
		var d domain.AccessDecision
		if err := json.Unmarshal([]byte(out), &d); err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
		return d
	}
	if d := decide("access", "check", "Reader@Example.com"); !d.HasAccess {
		t.Fatalf("expected access, got %+v", d)
	}
	if d := decide("access", "check", "reader@example.com", "--product", "7"); d.HasAccess {
		t.Fatalf("other product must be denied, got %+v", d)
	}

	if out := mustRun(t, db, "access", "set-status", "HP100", "refunded"); out != "HP100 -> REFUNDED\n" {
		t.Fatalf("set-status=%q", out)
	}
	if out := mustRun(t, db, "access", "get", "reader@example.com"); !strings.Contains(out, `"status": "REFUNDED"`) {
		t.Fatalf("get=%s", out)
	}
	if out := mustRun(t, db, "access", "get", "--tx", "HP100"); !strings.Contains(out, `"buyer_email": "reader@example.com"`) {
		t.Fatalf("get --tx=%s", out)
	}

	_, err := run(t, db, "access", "get", "--tx", "HP-missing")
	wantErrIs(t, err, services.ErrTransactionNotFound)

	_, err = run(t, db, "access", "set-status", "HP100", "LOST")
	wantErrIs(t, err, services.ErrInvalidStatus)

	_, err = run(t, db, "access", "set-status", "HP-missing", "CANCELED")
	wantErrIs(t, err, services.ErrTransactionNotFound)
}

func TestStoreKeys_AndWebhooksPrune(t *testing.T) {
	db := newDBPath(t)
	mustRun(t, db, "words", "add", "spoiler")

	if out := mustRun(t, db, "store", "keys", "--prefix", "moderation:"); out != "moderation:global_words\n" {
		t.Fatalf("keys=%q", out)
	}
	if out := mustRun(t, db, "webhooks", "prune", "--older-than", "1h"); out != "deleted 0\n" {
		t.Fatalf("prune=%q", out)
	}
	if _, err := run(t, db, "webhooks", "prune", "--older-than", "0s"); err == nil {
		t.Fatal("zero retention must fail")
	}
}

func TestStoreKeys_UnsupportedBackend(t *testing.T) {
	db := newDBPath(t)
	_, err := run(t, db, "--store", "memory", "store", "keys")
	if err == nil || !strings.Contains(err.Error(), "memory") {
		t.Fatalf("expected unsupported backend error, got %v", err)
	}
}

func TestVersionAndArgs(t *testing.T) {
	db := newDBPath(t)
	if out := mustRun(t, db, "version"); strings.TrimSpace(out) != app.Version {
		t.Fatalf("version=%q want %q", out, app.Version)
	}
	if _, err := run(t, db, "access", "check"); err == nil {
		t.Fatal("missing email must fail")
	}
}

func TestWho(t *testing.T) {
	t.Setenv("BOOKCLUB_ADMIN_USER", "ops")
	if got := (&options{}).who(); got != "ops" {
		t.Fatalf("who=%q", got)
	}
	if got := (&options{actor: "alice"}).who(); got != "alice" {
		t.Fatalf("who=%q", got)
	}
}
