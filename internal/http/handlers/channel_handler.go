// Channel HTTP handlers.
//
//   - GET    /channels       (list)
//   - GET    /channels/{id}  (get)
//   - PUT    /channels/{id}  (create or replace)
//   - DELETE /channels/{id}  (delete)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bookclub-guard/internal/domain"
	"github.com/tbourn/go-bookclub-guard/internal/http/middleware"
)

// ListChannelsResponse wraps the stored channel configs.
type ListChannelsResponse struct {
	Channels []domain.ChannelModerationConfig `json:"channels"`
}

// ListChannels godoc
// @ID          listChannels
// @Summary     List channel moderation configs
// @Tags        Channels
// @Produce     json
// @Success     200  {object}  handlers.ListChannelsResponse
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /channels [get]
func (h *Handlers) ListChannels(c *gin.Context) {
	items, err := h.channelSvc.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListChannelsResponse{Channels: items})
}

// GetChannel godoc
// @ID          getChannel
// @Summary     Get a channel moderation config
// @Tags        Channels
// @Produce     json
// @Param       id   path      string  true  "Channel ID"  example(book-of-the-month)
// @Success     200  {object}  domain.ChannelModerationConfig
// @Failure     404  {object}  handlers.ErrorResponse "Channel not found"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /channels/{id} [get]
func (h *Handlers) GetChannel(c *gin.Context) {
	ch, err := h.channelSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ch)
}

// PutChannel godoc
// @ID          putChannel
// @Summary     Create or replace a channel moderation config
// @Description Banned words are normalized; empties and repeats are dropped.
// @Tags        Channels
// @Accept      json
// @Produce     json
// @Param       X-Admin-User  header  string                 false "Admin identity for audit logs"
// @Param       id            path    string                 true  "Channel ID"  example(book-of-the-month)
// @Param       body          body    handlers.ChannelRules  true  "Channel rules"
// @Success     200  {object}  domain.ChannelModerationConfig
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /channels/{id} [put]
func (h *Handlers) PutChannel(c *gin.Context) {
	var req ChannelRules
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	saved, err := h.channelSvc.Put(c.Request.Context(), domain.ChannelModerationConfig{
		ID:                c.Param("id"),
		RequireModeration: req.RequireModeration,
		BannedWords:       req.BannedWords,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().
		Str("actor", actor(c)).
		Str("channel_id", saved.ID).
		Int("banned_words", len(saved.BannedWords)).
		Msg("channel config saved")
	ok(c, http.StatusOK, saved)
}

// DeleteChannel godoc
// @ID          deleteChannel
// @Summary     Delete a channel moderation config
// @Tags        Channels
// @Param       X-Admin-User  header  string  false "Admin identity for audit logs"
// @Param       id            path    string  true  "Channel ID"  example(book-of-the-month)
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Channel not found"
// @Failure     500  {object}  handlers.ErrorResponse "Store failure"
// @Router      /channels/{id} [delete]
func (h *Handlers) DeleteChannel(c *gin.Context) {
	found, err := h.channelSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, ErrCodeChannelNotFound, "channel not found")
		return
	}
	middleware.LoggerFrom(c).Info().Str("actor", actor(c)).Str("channel_id", c.Param("id")).Msg("channel config deleted")
	noContent(c)
}
