// Moderation HTTP handlers.
//
//   - POST   /moderation/check        (moderate a message)
//   - POST   /moderation/filter       (mask banned words)
//   - GET    /moderation/words        (list global words)
//   - POST   /moderation/words        (add a global word)
//   - DELETE /moderation/words/{word} (remove a global word)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/http/middleware"
	"github.com/tbourn/go-bookclub-guard/internal/services"
)

// ChannelRules is an inline channel policy sent with a moderation request.
type ChannelRules struct {
	RequireModeration bool     `json:"require_moderation" example:"true"`
	BannedWords       []string `json:"banned_words"       example:"villain,twist"`
}

// ModerateRequest is the JSON payload for check and filter. When Channel is
// set it is used as-is; otherwise ChannelID is resolved against stored
// configs (unknown ids moderate with no channel words).
type ModerateRequest struct {
	Content   string        `json:"content"              example:"Has anyone reached the ending yet?"`
	ChannelID string        `json:"channel_id,omitempty" example:"book-of-the-month"`
	Channel   *ChannelRules `json:"channel,omitempty"`
}

// FilterResponse carries the masked message.
type FilterResponse struct {
	Content string `json:"content" example:"Has anyone reached the *** yet?"`
}

// WordRequest is the JSON payload for adding a global word.
type WordRequest struct {
	Word string `json:"word" binding:"required" example:"spoiler"`
}

// WordsResponse lists the global banned words in display order.
type WordsResponse struct {
	Words []string `json:"words" example:"spoiler,ending"`
}

func (r ModerateRequest) inline() domain.ChannelModerationConfig {
	return domain.ChannelModerationConfig{
		ID:                strings.TrimSpace(r.ChannelID),
		RequireModeration: r.Channel.RequireModeration,
		BannedWords:       r.Channel.BannedWords,
	}
}

// CheckMessage godoc
// @ID          checkMessage
// @Summary     Moderate a message
// @Description Applies the length, external-link and banned-word rules. A blocked message is a 200 with is_approved=false.
// @Tags        Moderation
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ModerateRequest  true  "Message and channel"
// @Success     200   {object}  domain.ModerationResult
// @Failure     400   {object}  handlers.ErrorResponse "Bad request"
// @Failure     500   {object}  handlers.ErrorResponse "Internal error"
// @Router      /moderation/check [post]
func (h *Handlers) CheckMessage(c *gin.Context) {
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()

	var res domain.ModerationResult
	if req.Channel != nil {
		res = h.modSvc.Moderate(ctx, req.Content, req.inline())
	} else {
		var err error
		res, err = h.modSvc.ModerateChannel(ctx, req.ChannelID, req.Content)
		if err != nil {
			failErr(c, err)
			return
		}
	}

	if !res.IsApproved {
		middleware.LoggerFrom(c).Info().
			Str("channel_id", req.ChannelID).
			Str("reason", res.Reason).
			Int("blocked_words", len(res.BlockedWords)).
			Msg("message blocked")
	}
	ok(c, http.StatusOK, res)
}

// FilterMessage godoc
// @ID          filterMessage
// @Summary     Mask banned words
// @Description Replaces every whole-word occurrence of a global or channel word with the mask token.
// @Tags        Moderation
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ModerateRequest  true  "Message and channel"
// @Success     200   {object}  handlers.FilterResponse
// @Failure     400   {object}  handlers.ErrorResponse "Bad request"
// @Failure     500   {object}  handlers.ErrorResponse "Internal error"
// @Router      /moderation/filter [post]
func (h *Handlers) FilterMessage(c *gin.Context) {
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()

	var out string
	if req.Channel != nil {
		out = h.modSvc.FilterMessage(ctx, req.Content, req.inline())
	} else {
		var err error
		out, err = h.modSvc.FilterChannel(ctx, req.ChannelID, req.Content)
		if err != nil {
			failErr(c, err)
			return
		}
	}
	ok(c, http.StatusOK, FilterResponse{Content: out})
}

// ListWords godoc
// @ID          listWords
// @Summary     List global banned words
// @Tags        Moderation
// @Produce     json
// @Success     200  {object}  handlers.WordsResponse
// @Router      /moderation/words [get]
func (h *Handlers) ListWords(c *gin.Context) {
	ok(c, http.StatusOK, WordsResponse{Words: h.modSvc.ListGlobalWords(c.Request.Context())})
}

// AddWord godoc
// @ID          addWord
// @Summary     Add a global banned word
// @Description Normalizes the word (lowercase, trimmed). Adding a present word is a no-op.
// @Tags        Moderation
// @Accept      json
// @Produce     json
// @Param       X-Admin-User  header  string                false "Admin identity for audit logs"
// @Param       body          body    handlers.WordRequest  true  "Word"
// @Success     201  {object}  handlers.WordsResponse
// @Failure     400  {object}  handlers.ErrorResponse "Empty word"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /moderation/words [post]
func (h *Handlers) AddWord(c *gin.Context) {
	var req WordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidWord, "word is required")
		return
	}
	if _, err := services.CheckWord(req.Word); err != nil {
		failErr(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.modSvc.AddGlobalWord(ctx, req.Word); err != nil {
		failErr(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().Str("actor", actor(c)).Msg("global word added")
	ok(c, http.StatusCreated, WordsResponse{Words: h.modSvc.ListGlobalWords(ctx)})
}

// RemoveWord godoc
// @ID          removeWord
// @Summary     Remove a global banned word
// @Description Removing an absent word is a no-op.
// @Tags        Moderation
// @Param       X-Admin-User  header  string  false "Admin identity for audit logs"
// @Param       word          path    string  true  "Word"  example(spoiler)
// @Success     204  {string}  string "No Content"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /moderation/words/{word} [delete]
func (h *Handlers) RemoveWord(c *gin.Context) {
	if err := h.modSvc.RemoveGlobalWord(c.Request.Context(), c.Param("word")); err != nil {
		failErr(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().Str("actor", actor(c)).Msg("global word removed")
	noContent(c)
}
