package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vidgate/internal/core/domain"
	"vidgate/internal/infrastructure/telegram"
)

// handleSessionMessage continues a pending admin conversation. Messages
// from users without a session are ignored.
func (r *Router) handleSessionMessage(ctx context.Context, log *zap.SugaredLogger, msg *telegram.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return nil
	}

	session, err := r.sessions.Get(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	switch session.State {
	case domain.AwaitingVideoTitle:
		return r.videoTitleReceived(ctx, msg, session)
	case domain.AwaitingVideoFile:
		return r.videoFileReceived(ctx, log, msg, session)
	case domain.AwaitingPremiumUserID:
		return r.premiumUserIDReceived(ctx, msg, session)
	case domain.AwaitingPremiumMonths:
		return r.premiumMonthsReceived(ctx, msg, session)
	case domain.AwaitingPremiumDays:
		return r.premiumDaysReceived(ctx, msg, session)
	default:
		return nil
	}
}

func (r *Router) videoTitleReceived(ctx context.Context, msg *telegram.Message, session *domain.Session) error {
	session.VideoTitle = strings.TrimSpace(msg.Text)
	session.State = domain.AwaitingVideoFile
	if err := r.sessions.Save(ctx, session); err != nil {
		return err
	}
	return r.reply(ctx, msg.Chat.ID, "Now please send me the video file:")
}

func (r *Router) videoFileReceived(ctx context.Context, log *zap.SugaredLogger, msg *telegram.Message, session *domain.Session) error {
	if msg.Video == nil {
		return r.reply(ctx, msg.Chat.ID, "Please send a video file.")
	}

	video, err := r.videos.AddVideo(ctx, session.VideoTitle, msg.Video.FileID, msg.From.ID)
	if err != nil {
		log.Errorw("add video failed", "error", err)
		return r.reply(ctx, msg.Chat.ID, "There was an error saving the video. Please try again.")
	}
	r.metrics.IncVideoStored()

	if err := r.sessions.Delete(ctx, msg.From.ID); err != nil {
		return err
	}

	if video.ShortURL == nil {
		return r.reply(ctx, msg.Chat.ID, fmt.Sprintf(
			"Video '%s' added successfully, but there was an error generating the short URL.",
			video.Title))
	}
	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"Video '%s' added successfully!\n\n"+
			"Short URL: %s\n\n"+
			"Share this link with your users to access the video.",
		video.Title, *video.ShortURL))
}

func (r *Router) premiumUserIDReceived(ctx context.Context, msg *telegram.Message, session *domain.Session) error {
	userID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil {
		return r.reply(ctx, msg.Chat.ID, "Invalid user ID. Please enter a valid numeric ID.")
	}
	session.TargetUserID = userID

	if session.QuickOptions {
		session.State = domain.AwaitingPremiumChoice
		if err := r.sessions.Save(ctx, session); err != nil {
			return err
		}
		return r.tg.SendMessage(ctx, telegram.SendMessageParams{
			ChatID:      msg.Chat.ID,
			Text:        fmt.Sprintf("User ID: %d\n\nSelect premium duration:", userID),
			ReplyMarkup: premiumDurationKeyboard(),
		})
	}

	session.State = domain.AwaitingPremiumMonths
	if err := r.sessions.Save(ctx, session); err != nil {
		return err
	}
	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"User ID: %d\n\n"+
			"How many months of premium access would you like to grant?\n\n"+
			"Send a number of months as a message.",
		userID))
}

func (r *Router) premiumMonthsReceived(ctx context.Context, msg *telegram.Message, session *domain.Session) error {
	months, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil {
		return r.reply(ctx, msg.Chat.ID, "Invalid duration. Please enter a valid number of months.")
	}
	if months <= 0 {
		return r.reply(ctx, msg.Chat.ID, "Months must be a positive number.")
	}

	expiry, err := r.entitlements.GrantPremiumMonths(ctx, session.TargetUserID, months)
	if err != nil {
		return err
	}
	r.metrics.IncPremiumGrant()
	if err := r.sessions.Delete(ctx, msg.From.ID); err != nil {
		return err
	}

	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"✅ Premium access granted to user %d for %d months.\nExpires on: %s",
		session.TargetUserID, months, expiry.Format("2006-01-02 15:04:05")))
}

func (r *Router) premiumDaysReceived(ctx context.Context, msg *telegram.Message, session *domain.Session) error {
	days, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil {
		return r.reply(ctx, msg.Chat.ID, "Invalid number of days. Please enter a valid number.")
	}
	if days <= 0 {
		return r.reply(ctx, msg.Chat.ID, "Days must be a positive number.")
	}

	expiry, err := r.entitlements.GrantPremiumDays(ctx, session.TargetUserID, days)
	if err != nil {
		return err
	}
	r.metrics.IncPremiumGrant()
	if err := r.sessions.Delete(ctx, msg.From.ID); err != nil {
		return err
	}

	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"✅ Premium access granted to user %d for %d days.\nExpires on: %s",
		session.TargetUserID, days, expiry.Format("2006-01-02 15:04:05")))
}
