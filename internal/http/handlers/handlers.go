// Handler wiring.
//
// The admin API exposes four resource groups:
//   - /moderation  (message checks and the global word list)
//   - /channels    (per-channel moderation configs)
//   - /access      (buyer access validation and transaction admin)
//   - /webhooks    (Hotmart postbacks)
//
// Handlers are transport-thin: they bind and validate input, call services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/services"
	"github.com/tbourn/go-bookclub-guard/internal/utils"
)

//
// Service contracts (context-aware)
//

// ModerationService checks messages and manages the global word list.
type ModerationService interface {
	Moderate(ctx context.Context, content string, ch domain.ChannelModerationConfig) domain.ModerationResult
	FilterMessage(ctx context.Context, content string, ch domain.ChannelModerationConfig) string
	ModerateChannel(ctx context.Context, channelID, content string) (domain.ModerationResult, error)
	FilterChannel(ctx context.Context, channelID, content string) (string, error)
	ListGlobalWords(ctx context.Context) []string
	AddGlobalWord(ctx context.Context, word string) error
	RemoveGlobalWord(ctx context.Context, word string) error
}

// ChannelService provides CRUD over channel moderation configs.
type ChannelService interface {
	Get(ctx context.Context, id string) (domain.ChannelModerationConfig, error)
	Put(ctx context.Context, cfg domain.ChannelModerationConfig) (domain.ChannelModerationConfig, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]domain.ChannelModerationConfig, error)
}

// AccessService validates buyer access and administers transactions.
type AccessService interface {
	ValidateAccess(ctx context.Context, email string) (domain.AccessDecision, error)
	ValidateProductAccess(ctx context.Context, email, productID string) (domain.AccessDecision, error)
	UpsertTransaction(ctx context.Context, tx domain.AccessTransaction) (*domain.AccessTransaction, error)
	GetTransaction(ctx context.Context, email string) (*domain.AccessTransaction, error)
	UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, sub *domain.SubscriptionStatus) (bool, error)
	ListTransactions(ctx context.Context, page, pageSize int) ([]domain.AccessTransaction, int64, error)
	DeleteTransaction(ctx context.Context, email string) (bool, error)
}

// WebhookService verifies and applies Hotmart deliveries.
type WebhookService interface {
	Verify(token string) error
	Process(ctx context.Context, ev services.HotmartEvent) (string, error)
}

// Handlers groups the admin API endpoints. Any service may be nil when the
// router does not mount its routes.
type Handlers struct {
	modSvc     ModerationService
	channelSvc ChannelService
	accessSvc  AccessService
	webhookSvc WebhookService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(mod ModerationService, ch ChannelService, acc AccessService, wh WebhookService) *Handlers {
	return &Handlers{modSvc: mod, channelSvc: ch, accessSvc: acc, webhookSvc: wh}
}

// actor returns the admin identity for audit logs: the "actor" context value
// set by upstream middleware, then the X-Admin-User header, then "anonymous".
func actor(c *gin.Context) string {
	if v, ok := c.Get("actor"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Admin-User")); h != "" {
			return h
		}
	}
	return "anonymous"
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
