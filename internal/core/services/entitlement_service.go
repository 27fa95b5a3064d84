package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/ports"
)

const (
	// DefaultTokenHours is the ad-token lifetime granted by a refresh.
	DefaultTokenHours = 24

	// monthDays is the fixed month multiplier used by the historical
	// documents; it is deliberately not calendar-month arithmetic.
	monthDays = 30

	// premiumTokenDays keeps the token expiry of a premium holder far
	// enough out that the token check always passes.
	premiumTokenDays = 365
)

type entitlementService struct {
	users  ports.UserRepository
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewEntitlementService(users ports.UserRepository, logger *zap.SugaredLogger) ports.EntitlementService {
	return &entitlementService{
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

func (s *entitlementService) RegisterUser(ctx context.Context, id int64, username string) error {
	_, err := s.users.Upsert(ctx, id, func(user *domain.User, created bool) {
		if username == "" {
			user.Username = nil
			return
		}
		user.Username = &username
	})
	if err != nil {
		return fmt.Errorf("register user %d: %w", id, err)
	}
	return nil
}

func (s *entitlementService) GrantToken(ctx context.Context, id int64, hours int) (time.Time, error) {
	if hours <= 0 {
		return time.Time{}, domain.ErrInvalidDuration
	}
	expiry := s.now().Add(time.Duration(hours) * time.Hour)
	_, err := s.users.Upsert(ctx, id, func(user *domain.User, created bool) {
		user.TokenExpiry = &expiry
		user.IsActive = true
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("grant token to user %d: %w", id, err)
	}
	s.logger.Infow("token granted", "user_id", id, "hours", hours, "expires", expiry)
	return expiry, nil
}

func (s *entitlementService) CheckToken(ctx context.Context, id int64) (bool, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if user.TokenExpiry == nil {
		return false, nil
	}
	return s.now().Before(*user.TokenExpiry), nil
}

func (s *entitlementService) TokenExpiry(ctx context.Context, id int64) (*time.Time, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.TokenExpiry, nil
}

func (s *entitlementService) GrantPremiumDays(ctx context.Context, id int64, days int) (time.Time, error) {
	if days <= 0 {
		return time.Time{}, domain.ErrInvalidDuration
	}

	now := s.now()
	added := time.Duration(days) * 24 * time.Hour
	var newExpiry time.Time

	_, err := s.users.Upsert(ctx, id, func(user *domain.User, created bool) {
		// An unexpired grant extends from its current expiry; an expired
		// one is treated as absent and restarts from now.
		newExpiry = now.Add(added)
		if user.PremiumExpiry.Valid() && user.PremiumExpiry.Time.After(now) {
			newExpiry = user.PremiumExpiry.Time.Add(added)
		}

		premium := true
		user.PremiumExpiry = domain.TimeValue(newExpiry)
		user.IsPremium = &premium

		tokenExpiry := now.Add(premiumTokenDays * 24 * time.Hour)
		user.TokenExpiry = &tokenExpiry
		if created {
			user.IsActive = true
		}
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("grant premium to user %d: %w", id, err)
	}
	s.logger.Infow("premium granted", "user_id", id, "days", days, "expires", newExpiry)
	return newExpiry, nil
}

func (s *entitlementService) GrantPremiumMonths(ctx context.Context, id int64, months int) (time.Time, error) {
	if months <= 0 {
		return time.Time{}, domain.ErrInvalidDuration
	}
	return s.GrantPremiumDays(ctx, id, months*monthDays)
}

func (s *entitlementService) RevokePremium(ctx context.Context, id int64) (bool, error) {
	_, err := s.users.Update(ctx, id, func(user *domain.User) {
		premium := false
		user.IsPremium = &premium
		user.PremiumExpiry = domain.TimeNull()
	})
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("revoke premium from user %d: %w", id, err)
	}
	s.logger.Infow("premium revoked", "user_id", id)
	return true, nil
}

func (s *entitlementService) CheckPremium(ctx context.Context, id int64) (bool, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.premiumValid(user), nil
}

func (s *entitlementService) premiumValid(user *domain.User) bool {
	if !user.PremiumFlag() {
		return false
	}
	if !user.PremiumExpiry.Valid() {
		return false
	}
	return s.now().Before(*user.PremiumExpiry.Time)
}

func (s *entitlementService) PremiumExpiry(ctx context.Context, id int64) (*time.Time, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.PremiumExpiry.Valid() {
		return nil, nil
	}
	return user.PremiumExpiry.Time, nil
}

func (s *entitlementService) EffectiveState(ctx context.Context, id int64) (domain.AccessClass, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.NoAccess, nil
	}
	if err != nil {
		return domain.NoAccess, err
	}

	// Premium takes precedence over the bare token check.
	if s.premiumValid(user) {
		return domain.Premium, nil
	}
	if user.TokenExpiry != nil && s.now().Before(*user.TokenExpiry) {
		return domain.TokenValid, nil
	}
	return domain.NoAccess, nil
}

func (s *entitlementService) ListPremium(ctx context.Context) ([]domain.PremiumUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list premium users: %w", err)
	}

	premium := make([]domain.PremiumUser, 0)
	for _, user := range users {
		if !s.premiumValid(user) {
			continue
		}
		premium = append(premium, domain.PremiumUser{
			UserID:   user.ID,
			Username: user.DisplayName(),
			Expiry:   *user.PremiumExpiry.Time,
		})
	}
	return premium, nil
}
