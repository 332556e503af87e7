package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/moderation"
	"github.com/tbourn/go-bookclub-guard/internal/repo"
	"github.com/tbourn/go-bookclub-guard/internal/services"
	"github.com/tbourn/go-bookclub-guard/internal/store"
)

// ---------- fixtures ----------

type fixture struct {
	r       *gin.Engine
	mod     *services.ModerationService
	access  *services.AccessService
	hotmart *services.HotmartService
}

func newWebhookDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newFixture wires real services over a memory store and mounts every route
// the way the router does.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	channels := services.NewChannelService(st)
	mod, err := services.NewModerationService(context.Background(), st, moderation.New(), channels)
	if err != nil {
		t.Fatalf("moderation service: %v", err)
	}
	acc := services.NewAccessService(st)
	hm := services.NewHotmartService(newWebhookDB(t), acc, "hottok")

	h := New(mod, channels, acc, hm)
	r := gin.New()
	mount(r, h)
	return &fixture{r: r, mod: mod, access: acc, hotmart: hm}
}

func mount(r *gin.Engine, h *Handlers) {
	r.POST("/moderation/check", h.CheckMessage)
	r.POST("/moderation/filter", h.FilterMessage)
	r.GET("/moderation/words", h.ListWords)
	r.POST("/moderation/words", h.AddWord)
	r.DELETE("/moderation/words/:word", h.RemoveWord)
	r.GET("/channels", h.ListChannels)
	r.GET("/channels/:id", h.GetChannel)
	r.PUT("/channels/:id", h.PutChannel)
	r.DELETE("/channels/:id", h.DeleteChannel)
	r.POST("/access/validate", h.ValidateAccess)
	r.GET("/access/transactions", h.ListTransactions)
	r.PUT("/access/transactions", h.UpsertTransaction)
	r.GET("/access/transactions/:key", h.GetTransaction)
	r.DELETE("/access/transactions/:key", h.DeleteTransaction)
	r.PATCH("/access/transactions/:key/status", h.UpdateTransactionStatus)
	r.POST("/webhooks/hotmart", h.HotmartWebhook)
}

func do(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v; body=%s", err, w.Body.String())
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d; body=%s", w.Code, status, w.Body.String())
	}
	if er := decode[ErrorResponse](t, w); er.Code != code {
		t.Fatalf("code=%q want %q", er.Code, code)
	}
}

// ---------- helpers ----------

func Test_actor_and_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=0&page_size=500", nil)
	if got := actor(c); got != "anonymous" {
		t.Fatalf("actor fallback = %q", got)
	}
	c.Request.Header.Set("X-Admin-User", " ops ")
	if got := actor(c); got != "ops" {
		t.Fatalf("actor header = %q", got)
	}
	c.Set("actor", "from-ctx")
	if got := actor(c); got != "from-ctx" {
		t.Fatalf("actor ctx = %q", got)
	}

	page, size := clampPagination(c)
	if page != 1 || size != 100 {
		t.Fatalf("clamp = (%d,%d)", page, size)
	}
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&page_size=-2", nil)
	page, size = clampPagination(c)
	if page != 3 || size != 1 {
		t.Fatalf("clamp = (%d,%d)", page, size)
	}

	p := newPagination(2, 10, 25)
	if p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination = %+v", p)
	}
}

// ---------- moderation ----------

func TestModeration_WordsLifecycle(t *testing.T) {
	f := newFixture(t)

	w := do(f.r, http.MethodPost, "/moderation/words", WordRequest{Word: " Spoiler "}, "X-Admin-User", "ops")
	if w.Code != http.StatusCreated {
		t.Fatalf("add status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decode[WordsResponse](t, w); len(got.Words) != 1 || got.Words[0] != "spoiler" {
		t.Fatalf("words=%v", got.Words)
	}

	expectError(t, do(f.r, http.MethodPost, "/moderation/words", WordRequest{Word: "   "}), http.StatusBadRequest, ErrCodeInvalidWord)
	expectError(t, do(f.r, http.MethodPost, "/moderation/words", "{"), http.StatusBadRequest, ErrCodeInvalidWord)

	w = do(f.r, http.MethodDelete, "/moderation/words/SPOILER", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", w.Code)
	}
	w = do(f.r, http.MethodGet, "/moderation/words", nil)
	if got := decode[WordsResponse](t, w); len(got.Words) != 0 {
		t.Fatalf("words after delete=%v", got.Words)
	}
}

func TestModeration_CheckAndFilter(t *testing.T) {
	f := newFixture(t)
	if err := f.mod.AddGlobalWord(context.Background(), "spoiler"); err != nil {
		t.Fatal(err)
	}

	// Inline channel rules.
	w := do(f.r, http.MethodPost, "/moderation/check", ModerateRequest{
		Content: "Spoiler: the villain lives",
		Channel: &ChannelRules{RequireModeration: true, BannedWords: []string{"villain"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	res := decode[domain.ModerationResult](t, w)
	if res.IsApproved || len(res.BlockedWords) != 2 || res.Reason != moderation.ReasonForbiddenWords {
		t.Fatalf("unexpected result: %+v", res)
	}

	// No channel: default rules, global words only.
	w = do(f.r, http.MethodPost, "/moderation/check", ModerateRequest{Content: "the villain lives"})
	if res := decode[domain.ModerationResult](t, w); !res.IsApproved {
		t.Fatalf("expected approval: %+v", res)
	}

	w = do(f.r, http.MethodPost, "/moderation/filter", ModerateRequest{
		Content: "Spoiler: the villain lives",
		Channel: &ChannelRules{BannedWords: []string{"villain"}},
	})
	if got := decode[FilterResponse](t, w); got.Content != "***: the *** lives" {
		t.Fatalf("filtered=%q", got.Content)
	}

	// Stored channel by id.
	w = do(f.r, http.MethodPut, "/channels/club", ChannelRules{RequireModeration: true, BannedWords: []string{"Villain"}})
	if w.Code != http.StatusOK {
		t.Fatalf("put channel status=%d", w.Code)
	}
	w = do(f.r, http.MethodPost, "/moderation/filter", ModerateRequest{Content: "the villain lives", ChannelID: "club"})
	if got := decode[FilterResponse](t, w); got.Content != "the *** lives" {
		t.Fatalf("filtered by id=%q", got.Content)
	}

	expectError(t, do(f.r, http.MethodPost, "/moderation/check", "not json"), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, do(f.r, http.MethodPost, "/moderation/filter", "not json"), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestModeration_TooLongIsA200(t *testing.T) {
	f := newFixture(t)
	long := bytes.Repeat([]byte("a"), moderation.DefaultMaxMessageLength+1)
	w := do(f.r, http.MethodPost, "/moderation/check", ModerateRequest{Content: string(long)})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	res := decode[domain.ModerationResult](t, w)
	if res.IsApproved || res.Reason != "message too long (max 5000 characters)" {
		t.Fatalf("unexpected: %+v", res)
	}
}

// ---------- channels ----------

func TestChannels_CRUD(t *testing.T) {
	f := newFixture(t)

	expectError(t, do(f.r, http.MethodGet, "/channels/nope", nil), http.StatusNotFound, ErrCodeChannelNotFound)
	expectError(t, do(f.r, http.MethodPut, "/channels/x", "{"), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, do(f.r, http.MethodPut, "/channels/%20", ChannelRules{}), http.StatusBadRequest, ErrCodeInvalidChannel)

	w := do(f.r, http.MethodPut, "/channels/club", ChannelRules{RequireModeration: true, BannedWords: []string{"A", "a", ""}})
	saved := decode[domain.ChannelModerationConfig](t, w)
	if saved.ID != "club" || len(saved.BannedWords) != 1 || saved.BannedWords[0] != "a" {
		t.Fatalf("saved=%+v", saved)
	}

	w = do(f.r, http.MethodGet, "/channels", nil)
	if got := decode[ListChannelsResponse](t, w); len(got.Channels) != 1 {
		t.Fatalf("list=%+v", got)
	}
	w = do(f.r, http.MethodGet, "/channels/club", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d", w.Code)
	}

	if w = do(f.r, http.MethodDelete, "/channels/club", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", w.Code)
	}
	expectError(t, do(f.r, http.MethodDelete, "/channels/club", nil), http.StatusNotFound, ErrCodeChannelNotFound)
}

// ---------- access ----------

func TestAccess_UpsertValidateAndStatus(t *testing.T) {
	f := newFixture(t)
	f.access.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	tx := domain.AccessTransaction{
		TransactionID: "HP1",
		BuyerEmail:    "Reader@Example.com",
		ProductID:     "P1",
		Status:        domain.StatusApproved,
	}
	w := do(f.r, http.MethodPut, "/access/transactions", tx)
	if w.Code != http.StatusOK {
		t.Fatalf("upsert status=%d body=%s", w.Code, w.Body.String())
	}
	saved := decode[domain.AccessTransaction](t, w)
	if saved.ID == "" || saved.BuyerEmail != "reader@example.com" {
		t.Fatalf("saved=%+v", saved)
	}

	w = do(f.r, http.MethodPost, "/access/validate", ValidateAccessRequest{Email: "reader@example.com"})
	if d := decode[domain.AccessDecision](t, w); !d.HasAccess || d.TransactionID != "HP1" {
		t.Fatalf("decision=%+v", d)
	}
	w = do(f.r, http.MethodPost, "/access/validate", ValidateAccessRequest{Email: "reader@example.com", ProductID: "P2"})
	if d := decode[domain.AccessDecision](t, w); d.HasAccess || d.Reason == "" {
		t.Fatalf("product decision=%+v", d)
	}

	w = do(f.r, http.MethodPatch, "/access/transactions/HP1/status", UpdateStatusRequest{Status: "refunded"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("patch status=%d body=%s", w.Code, w.Body.String())
	}
	w = do(f.r, http.MethodPost, "/access/validate", ValidateAccessRequest{Email: "reader@example.com"})
	if d := decode[domain.AccessDecision](t, w); d.HasAccess || d.Reason != "purchase refunded" {
		t.Fatalf("after refund=%+v", d)
	}

	expectError(t, do(f.r, http.MethodPatch, "/access/transactions/HP1/status", UpdateStatusRequest{Status: "PENDING"}), http.StatusBadRequest, ErrCodeInvalidStatus)
	expectError(t, do(f.r, http.MethodPatch, "/access/transactions/HP9/status", UpdateStatusRequest{Status: "CANCELED"}), http.StatusNotFound, ErrCodeTransactionNotFound)
	expectError(t, do(f.r, http.MethodPatch, "/access/transactions/HP1/status", "{}"), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestAccess_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	expectError(t, do(f.r, http.MethodPost, "/access/validate", ValidateAccessRequest{Email: "nope"}), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, do(f.r, http.MethodPut, "/access/transactions", domain.AccessTransaction{BuyerEmail: "bad"}), http.StatusUnprocessableEntity, ErrCodeInvalidTransaction)
	expectError(t, do(f.r, http.MethodPut, "/access/transactions", "["), http.StatusBadRequest, ErrCodeBadRequest)

	w := do(f.r, http.MethodPost, "/access/validate", ValidateAccessRequest{Email: "ghost@example.com"})
	if d := decode[domain.AccessDecision](t, w); d.HasAccess || d.Reason != "no purchase found for this email" {
		t.Fatalf("decision=%+v", d)
	}
}

func TestAccess_ListGetDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, e := range []string{"b@example.com", "a@example.com"} {
		if _, err := f.access.UpsertTransaction(ctx, domain.AccessTransaction{BuyerEmail: e, Status: domain.StatusApproved}); err != nil {
			t.Fatal(err)
		}
	}

	w := do(f.r, http.MethodGet, "/access/transactions?page=1&page_size=1", nil)
	list := decode[ListTransactionsResponse](t, w)
	if len(list.Transactions) != 1 || list.Transactions[0].BuyerEmail != "a@example.com" || list.Pagination.Total != 2 || !list.Pagination.HasNext {
		t.Fatalf("list=%+v", list)
	}

	w = do(f.r, http.MethodGet, "/access/transactions/B@example.com", nil)
	if got := decode[domain.AccessTransaction](t, w); got.BuyerEmail != "b@example.com" {
		t.Fatalf("get=%+v", got)
	}
	expectError(t, do(f.r, http.MethodGet, "/access/transactions/z@example.com", nil), http.StatusNotFound, ErrCodeTransactionNotFound)

	if w = do(f.r, http.MethodDelete, "/access/transactions/b@example.com", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", w.Code)
	}
	expectError(t, do(f.r, http.MethodDelete, "/access/transactions/b@example.com", nil), http.StatusNotFound, ErrCodeTransactionNotFound)
}

// ---------- store failures ----------

type brokenAccess struct{ AccessService }

func (brokenAccess) ValidateAccess(context.Context, string) (domain.AccessDecision, error) {
	return domain.AccessDecision{}, fmt.Errorf("%w: key %q: eof", store.ErrCorrupt, "access:transactions")
}

func (brokenAccess) ListTransactions(context.Context, int, int) ([]domain.AccessTransaction, int64, error) {
	return nil, 0, errors.New("redis down")
}

func TestAccess_StoreFailuresAre500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(nil, nil, brokenAccess{}, nil)
	r.POST("/access/validate", h.ValidateAccess)
	r.GET("/access/transactions", h.ListTransactions)

	expectError(t, do(r, http.MethodPost, "/access/validate", ValidateAccessRequest{Email: "a@b.co"}), http.StatusInternalServerError, ErrCodeStoreFailed)
	expectError(t, do(r, http.MethodGet, "/access/transactions", nil), http.StatusInternalServerError, ErrCodeInternal)
}

// ---------- webhooks ----------

func hotmartBody(id, event, email, txID string) map[string]any {
	return map[string]any{
		"id":    id,
		"event": event,
		"data": map[string]any{
			"product":  map[string]any{"id": 4711, "name": "Club"},
			"buyer":    map[string]any{"email": email, "name": "Ada"},
			"purchase": map[string]any{"transaction": txID, "status": "APPROVED"},
		},
	}
}

func TestHotmartWebhook(t *testing.T) {
	f := newFixture(t)
	body := hotmartBody("ev-1", "PURCHASE_APPROVED", "ada@example.com", "HP1")

	expectError(t, do(f.r, http.MethodPost, "/webhooks/hotmart", body), http.StatusUnauthorized, ErrCodeInvalidSignature)
	expectError(t, do(f.r, http.MethodPost, "/webhooks/hotmart", body, HeaderHotmartHottok, "wrong"), http.StatusUnauthorized, ErrCodeInvalidSignature)
	expectError(t, do(f.r, http.MethodPost, "/webhooks/hotmart", "{", HeaderHotmartHottok, "hottok"), http.StatusBadRequest, ErrCodeInvalidEvent)
	expectError(t, do(f.r, http.MethodPost, "/webhooks/hotmart", hotmartBody("", "PURCHASE_APPROVED", "ada@example.com", "HP1"), HeaderHotmartHottok, "hottok"), http.StatusBadRequest, ErrCodeInvalidEvent)

	w := do(f.r, http.MethodPost, "/webhooks/hotmart", body, HeaderHotmartHottok, "hottok")
	if got := decode[WebhookResponse](t, w); w.Code != http.StatusOK || got.Status != services.OutcomeApplied {
		t.Fatalf("first delivery: %d %+v", w.Code, got)
	}
	w = do(f.r, http.MethodPost, "/webhooks/hotmart", body, HeaderHotmartHottok, "hottok")
	if got := decode[WebhookResponse](t, w); w.Code != http.StatusOK || got.Status != services.OutcomeDuplicate {
		t.Fatalf("redelivery: %d %+v", w.Code, got)
	}

	tx, err := f.access.GetTransaction(context.Background(), "ada@example.com")
	if err != nil || tx.ProductID != "4711" {
		t.Fatalf("transaction: %+v, %v", tx, err)
	}
}
