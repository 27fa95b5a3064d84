package bot

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/services"
	"vidgate/internal/infrastructure/telegram"
	"vidgate/pkg/tracing"
)

// handleStart drives the welcome and deep-link flows. Premium holders are
// greeted before any other stage runs; everyone else goes through the gate.
func (r *Router) handleStart(ctx context.Context, log *zap.SugaredLogger, msg *telegram.Message, args []string) error {
	user := msg.From
	if err := r.entitlements.RegisterUser(ctx, user.ID, user.Username); err != nil {
		return fmt.Errorf("register user %d: %w", user.ID, err)
	}

	premium, err := r.entitlements.CheckPremium(ctx, user.ID)
	if err != nil {
		return err
	}
	if premium {
		expiry, err := r.entitlements.PremiumExpiry(ctx, user.ID)
		if err != nil {
			return err
		}
		return r.reply(ctx, msg.Chat.ID, premiumGreetingText(user.FirstName, expiry, time.Now()))
	}

	if len(args) > 0 {
		param := domain.ParseStartParam(args[0])
		switch param.Kind {
		case domain.StartToken:
			if param.ID == user.ID {
				if _, err := r.entitlements.GrantToken(ctx, user.ID, services.DefaultTokenHours); err != nil {
					return fmt.Errorf("grant token to user %d: %w", user.ID, err)
				}
				r.metrics.IncTokenGrant()
				return r.reply(ctx, msg.Chat.ID,
					"Congratulations! Ads token refreshed successfully!\n\n"+
						"It will expire after 24 Hour")
			}
			// Someone else's token link; fall through to the plain flow.
			log.Warnw("token deep link user mismatch", "link_user_id", param.ID, "user_id", user.ID)
		case domain.StartVideo:
			return r.deliverVideo(ctx, msg, param.ID)
		}
	}

	return r.sendAccessState(ctx, msg.Chat.ID, user)
}

// deliverVideo runs the full gate for a video deep link.
func (r *Router) deliverVideo(ctx context.Context, msg *telegram.Message, videoID int64) error {
	ctx, span := tracing.TraceGate(ctx, msg.From.ID)
	defer span.End()

	result, err := r.gate.Authorize(ctx, msg.From.ID, videoID)
	if err != nil {
		return err
	}
	tracing.AddSpanAttributes(ctx, attribute.String("gate.outcome", result.Outcome.String()))
	r.metrics.IncGateOutcome(result.Outcome)

	switch result.Outcome {
	case domain.GateMembershipRequired:
		return r.sendMembershipPrompt(ctx, msg.Chat.ID, msg.From.FirstName)
	case domain.GateEntitlementRequired:
		return r.sendTokenExpired(ctx, msg.Chat.ID, msg.From.FirstName)
	case domain.GateVideoNotFound:
		return r.reply(ctx, msg.Chat.ID, "Video not found.")
	default:
		return r.tg.SendVideo(ctx, msg.Chat.ID, result.Video.FileID, "Video: "+result.Video.Title)
	}
}

// sendAccessState reports the gate state without delivering content.
func (r *Router) sendAccessState(ctx context.Context, chatID int64, user *telegram.User) error {
	ctx, span := tracing.TraceGate(ctx, user.ID)
	defer span.End()

	result, err := r.gate.CheckAccess(ctx, user.ID)
	if err != nil {
		return err
	}
	tracing.AddSpanAttributes(ctx, attribute.String("gate.outcome", result.Outcome.String()))
	r.metrics.IncGateOutcome(result.Outcome)

	switch result.Outcome {
	case domain.GateMembershipRequired:
		return r.sendMembershipPrompt(ctx, chatID, user.FirstName)
	case domain.GateEntitlementRequired:
		return r.sendTokenExpired(ctx, chatID, user.FirstName)
	default:
		return r.tg.SendMessage(ctx, telegram.SendMessageParams{
			ChatID:      chatID,
			Text:        tokenActiveText(user.FirstName),
			ReplyMarkup: r.tokenActiveKeyboard(),
		})
	}
}

func (r *Router) sendMembershipPrompt(ctx context.Context, chatID int64, firstName string) error {
	return r.tg.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        membershipPromptText(firstName),
		ReplyMarkup: r.membershipKeyboard(),
	})
}

func (r *Router) sendTokenExpired(ctx context.Context, chatID int64, firstName string) error {
	return r.tg.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        tokenExpiredText(firstName),
		ParseMode:   "HTML",
		ReplyMarkup: r.tokenExpiredKeyboard(),
	})
}

func (r *Router) handleHelp(ctx context.Context, msg *telegram.Message) error {
	text := userHelpText
	if r.isAdmin(msg.From.ID) {
		text = adminHelpText
	}
	return r.reply(ctx, msg.Chat.ID, text)
}
