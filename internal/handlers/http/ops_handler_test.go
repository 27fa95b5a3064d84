package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vidgate/internal/core/domain"
	"vidgate/internal/infrastructure/middleware"
)

type stubVideoService struct {
	videos map[int64]*domain.Video
}

func (s *stubVideoService) AddVideo(ctx context.Context, title, fileID string, addedBy int64) (*domain.Video, error) {
	return nil, nil
}

func (s *stubVideoService) GetVideo(ctx context.Context, id int64) (*domain.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	return video, nil
}

func (s *stubVideoService) ListVideos(ctx context.Context) ([]*domain.Video, error) {
	out := make([]*domain.Video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, v)
	}
	return out, nil
}

func (s *stubVideoService) IngestChannelPost(ctx context.Context, channelID int64, channelTitle, caption, fileID string) (*domain.Video, error) {
	return nil, nil
}

type stubChannelService struct{}

func (stubChannelService) Register(ctx context.Context, id int64, title string, addedBy int64) error {
	return nil
}

func (stubChannelService) List(ctx context.Context) ([]*domain.Channel, error) {
	return []*domain.Channel{{ID: -100123, Title: "Movies"}}, nil
}

type stubEntitlementService struct {
	premium []domain.PremiumUser
}

func (s *stubEntitlementService) RegisterUser(ctx context.Context, id int64, username string) error {
	return nil
}

func (s *stubEntitlementService) GrantToken(ctx context.Context, id int64, hours int) (time.Time, error) {
	return time.Time{}, nil
}

func (s *stubEntitlementService) CheckToken(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (s *stubEntitlementService) TokenExpiry(ctx context.Context, id int64) (*time.Time, error) {
	return nil, nil
}

func (s *stubEntitlementService) GrantPremiumDays(ctx context.Context, id int64, days int) (time.Time, error) {
	return time.Time{}, nil
}

func (s *stubEntitlementService) GrantPremiumMonths(ctx context.Context, id int64, months int) (time.Time, error) {
	return time.Time{}, nil
}

func (s *stubEntitlementService) RevokePremium(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (s *stubEntitlementService) CheckPremium(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (s *stubEntitlementService) PremiumExpiry(ctx context.Context, id int64) (*time.Time, error) {
	return nil, nil
}

func (s *stubEntitlementService) EffectiveState(ctx context.Context, id int64) (domain.AccessClass, error) {
	return domain.NoAccess, nil
}

func (s *stubEntitlementService) ListPremium(ctx context.Context) ([]domain.PremiumUser, error) {
	return s.premium, nil
}

func newTestEngine(t *testing.T, videos map[int64]*domain.Video, premium []domain.PremiumUser) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(middleware.ErrorHandlerMiddleware(zap.NewNop().Sugar()))

	handler := NewOpsHandler(&stubVideoService{videos: videos}, stubChannelService{}, &stubEntitlementService{premium: premium})
	handler.SetupRoutes(engine)
	return engine
}

func doRequest(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestGetVideo(t *testing.T) {
	url := "https://t.me/testbot?start=video_1"
	engine := newTestEngine(t, map[int64]*domain.Video{
		1: {ID: 1, Title: "Trailer", FileID: "file-1", ShortURL: &url},
	}, nil)

	t.Run("found", func(t *testing.T) {
		w := doRequest(engine, "/api/v1/videos/1")
		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Video map[string]interface{} `json:"video"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Trailer", body.Video["title"])
		assert.Equal(t, url, body.Video["short_url"])
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doRequest(engine, "/api/v1/videos/999")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("malformed id", func(t *testing.T) {
		w := doRequest(engine, "/api/v1/videos/abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_INPUT")
	})
}

func TestListPremium(t *testing.T) {
	expiry := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	engine := newTestEngine(t, nil, []domain.PremiumUser{
		{UserID: 42, Username: "alice", Expiry: expiry},
	})

	w := doRequest(engine, "/api/v1/premium")
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		PremiumUsers []map[string]interface{} `json:"premium_users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.PremiumUsers, 1)
	assert.Equal(t, "alice", body.PremiumUsers[0]["username"])
	assert.Equal(t, "2025-12-01T00:00:00Z", body.PremiumUsers[0]["premium_expiry"])
}

func TestListChannels(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	w := doRequest(engine, "/api/v1/channels")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Movies")
}
