package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"vidgate/internal/core/domain"
	"vidgate/internal/infrastructure/telegram"
)

// handleCallback routes inline keyboard presses. Every callback is answered
// first so the client stops its spinner even when handling fails.
func (r *Router) handleCallback(ctx context.Context, log *zap.SugaredLogger, query *telegram.CallbackQuery) error {
	if err := r.tg.AnswerCallbackQuery(ctx, query.ID); err != nil {
		log.Warnw("answer callback failed", "error", err)
	}
	if query.Message == nil {
		return nil
	}

	switch {
	case query.Data == "refresh_token":
		return r.refreshTokenCallback(ctx, query)
	case query.Data == "membership_confirmed":
		return r.membershipConfirmedCallback(ctx, query)
	case query.Data == "membership_rejected":
		return r.membershipRejectedCallback(ctx, query)
	case query.Data == "how_to_open_links":
		return r.reply(ctx, query.Message.Chat.ID, howToOpenLinksText)
	case query.Data == "remove_ads":
		return r.removeAdsCallback(ctx, query)
	case query.Data == "close_premium_menu":
		return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID, "Menu closed.", "", nil)

	// admin premium panel
	case query.Data == "premium_enter_user":
		return r.premiumEnterUserCallback(ctx, query, false)
	case query.Data == "premium_quick_options":
		return r.premiumEnterUserCallback(ctx, query, true)
	case query.Data == "list_premium_users":
		return r.listPremiumUsersCallback(ctx, query)
	case strings.HasPrefix(query.Data, "premium_duration_"):
		return r.premiumDurationCallback(ctx, query)
	default:
		log.Debugw("unknown callback ignored", "data", query.Data)
		return nil
	}
}

func (r *Router) refreshTokenCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	url := r.links.TokenLink(ctx, query.From.ID)
	return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
		"Please click the button below to refresh your token.\n\n"+
			"After clicking, you'll be redirected to a page with ads.\n"+
			"Complete the process and your token will be refreshed for 24 hours.",
		"",
		telegram.Keyboard(telegram.Row(telegram.URLButton("Open Link", url))),
	)
}

// membershipConfirmedCallback records the retry signal as membership proof
// and re-reports the access state in place.
func (r *Router) membershipConfirmedCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	premium, err := r.entitlements.CheckPremium(ctx, userID)
	if err != nil {
		return err
	}
	if premium {
		expiry, err := r.entitlements.PremiumExpiry(ctx, userID)
		if err != nil {
			return err
		}
		return r.tg.EditMessageText(ctx, chatID, messageID,
			premiumGreetingText(query.From.FirstName, expiry, time.Now()), "", nil)
	}

	if err := r.gate.ConfirmMembership(ctx, userID); err != nil {
		return err
	}

	tokenValid, err := r.entitlements.CheckToken(ctx, userID)
	if err != nil {
		return err
	}
	if tokenValid {
		return r.tg.EditMessageText(ctx, chatID, messageID,
			tokenActiveText(query.From.FirstName), "", r.tokenActiveKeyboard())
	}
	return r.tg.EditMessageText(ctx, chatID, messageID,
		tokenExpiredText(query.From.FirstName), "HTML", r.tokenExpiredKeyboard())
}

func (r *Router) membershipRejectedCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
		membershipPromptText(query.From.FirstName), "", r.membershipKeyboard())
}

func (r *Router) removeAdsCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
		premiumPlansText(query.From.FirstName, r.cfg.Payments.UPIID),
		"HTML", r.premiumPlansKeyboard())
}

func (r *Router) premiumEnterUserCallback(ctx context.Context, query *telegram.CallbackQuery, quickOptions bool) error {
	if !r.isAdmin(query.From.ID) {
		return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
			"This function is only available to admins.", "", nil)
	}

	if err := r.sessions.Save(ctx, &domain.Session{
		UserID:       query.From.ID,
		State:        domain.AwaitingPremiumUserID,
		QuickOptions: quickOptions,
	}); err != nil {
		return err
	}

	return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
		"Please enter the user ID to grant premium access.\n\n"+
			"Send the user ID as a message.", "", nil)
}

func (r *Router) listPremiumUsersCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	if !r.isAdmin(query.From.ID) {
		return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
			"This function is only available to admins.", "", nil)
	}

	text, err := r.premiumListText(ctx)
	if err != nil {
		return err
	}
	return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID, text, "", nil)
}

func (r *Router) premiumDurationCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	if !r.isAdmin(query.From.ID) {
		return nil
	}

	session, err := r.sessions.Get(ctx, query.From.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
				"Error: User ID not found. Please start over.", "", nil)
		}
		return err
	}
	if session.TargetUserID == 0 {
		return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
			"Error: User ID not found. Please start over.", "", nil)
	}

	if query.Data == "premium_duration_custom" {
		session.State = domain.AwaitingPremiumDays
		if err := r.sessions.Save(ctx, session); err != nil {
			return err
		}
		return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
			fmt.Sprintf("User ID: %d\n\nPlease enter the number of days for premium access:", session.TargetUserID),
			"", nil)
	}

	// callback data: premium_duration_<days>_...
	parts := strings.Split(query.Data, "_")
	if len(parts) < 3 {
		return nil
	}
	days, err := strconv.Atoi(parts[2])
	if err != nil || days <= 0 {
		return nil
	}

	expiry, err := r.entitlements.GrantPremiumDays(ctx, session.TargetUserID, days)
	if err != nil {
		return err
	}
	r.metrics.IncPremiumGrant()
	if err := r.sessions.Delete(ctx, query.From.ID); err != nil {
		return err
	}

	return r.tg.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
		fmt.Sprintf("✅ Premium access granted to user %d for %s.\nExpires on: %s",
			session.TargetUserID, durationText(days), expiry.Format("2006-01-02 15:04:05")),
		"", nil)
}
