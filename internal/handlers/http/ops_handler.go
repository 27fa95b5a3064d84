package http

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/ports"
	"vidgate/pkg/errors"

	"github.com/gin-gonic/gin"
)

// OpsHandler exposes a read-only operational view of the catalog and the
// premium roster over HTTP. Errors are attached to the context and rendered
// by the error middleware.
type OpsHandler struct {
	videoService       ports.VideoService
	channelService     ports.ChannelService
	entitlementService ports.EntitlementService
}

func NewOpsHandler(
	videoService ports.VideoService,
	channelService ports.ChannelService,
	entitlementService ports.EntitlementService,
) *OpsHandler {
	return &OpsHandler{
		videoService:       videoService,
		channelService:     channelService,
		entitlementService: entitlementService,
	}
}

func (h *OpsHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/videos", h.ListVideos)
		api.GET("/videos/:id", h.GetVideo)
		api.GET("/channels", h.ListChannels)
		api.GET("/premium", h.ListPremium)
	}
}

func (h *OpsHandler) ListVideos(c *gin.Context) {
	videos, err := h.videoService.ListVideos(c.Request.Context())
	if err != nil {
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to list videos", http.StatusInternalServerError))
		return
	}

	out := make([]gin.H, 0, len(videos))
	for _, v := range videos {
		out = append(out, videoJSON(v))
	}
	c.JSON(http.StatusOK, gin.H{"videos": out})
}

func (h *OpsHandler) GetVideo(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NewInvalidInputError("invalid video id"))
		return
	}

	video, err := h.videoService.GetVideo(c.Request.Context(), id)
	if err != nil {
		if stderrors.Is(err, domain.ErrVideoNotFound) {
			c.Error(errors.NewNotFoundError("video"))
			return
		}
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to load video", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": videoJSON(video)})
}

func (h *OpsHandler) ListChannels(c *gin.Context) {
	channels, err := h.channelService.List(c.Request.Context())
	if err != nil {
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to list channels", http.StatusInternalServerError))
		return
	}

	out := make([]gin.H, 0, len(channels))
	for _, ch := range channels {
		out = append(out, gin.H{
			"channel_id": ch.ID,
			"title":      ch.Title,
			"added_by":   ch.AddedBy,
			"added_on":   ch.AddedOn,
		})
	}
	c.JSON(http.StatusOK, gin.H{"channels": out})
}

func (h *OpsHandler) ListPremium(c *gin.Context) {
	users, err := h.entitlementService.ListPremium(c.Request.Context())
	if err != nil {
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to list premium users", http.StatusInternalServerError))
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"user_id":        u.UserID,
			"username":       u.Username,
			"premium_expiry": u.Expiry.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"premium_users": out})
}

func videoJSON(v *domain.Video) gin.H {
	out := gin.H{
		"id":       v.ID,
		"title":    v.Title,
		"added_by": v.AddedBy,
		"added_on": v.AddedOn,
	}
	if v.ShortURL != nil {
		out["short_url"] = *v.ShortURL
	}
	return out
}
