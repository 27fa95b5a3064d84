package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vidgate/internal/core/domain"
	"vidgate/internal/infrastructure/telegram"
)

func (r *Router) handleAdmin(ctx context.Context, msg *telegram.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, adminOnlyText)
	}
	return r.tg.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:    msg.Chat.ID,
		Text:      adminReferenceText,
		ParseMode: "HTML",
	})
}

// handleAddVideo opens the two-step add-video conversation.
func (r *Router) handleAddVideo(ctx context.Context, msg *telegram.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, adminOnlyText)
	}

	if err := r.sessions.Save(ctx, &domain.Session{
		UserID: msg.From.ID,
		State:  domain.AwaitingVideoTitle,
	}); err != nil {
		return err
	}
	return r.reply(ctx, msg.Chat.ID, "Please send me the title for the new video:")
}

func (r *Router) handleCancel(ctx context.Context, msg *telegram.Message) error {
	if err := r.sessions.Delete(ctx, msg.From.ID); err != nil {
		return err
	}
	return r.reply(ctx, msg.Chat.ID, "Operation cancelled.")
}

func (r *Router) handleListVideos(ctx context.Context, msg *telegram.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, adminOnlyText)
	}

	videos, err := r.videos.ListVideos(ctx)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		return r.reply(ctx, msg.Chat.ID, "No videos found in the database.")
	}

	lines := make([]string, 0, len(videos))
	for _, v := range videos {
		line := fmt.Sprintf("ID: %d\nTitle: %s\n", v.ID, v.Title)
		if v.ShortURL != nil {
			line += fmt.Sprintf("URL: %s\n", *v.ShortURL)
		}
		lines = append(lines, line)
	}
	return r.reply(ctx, msg.Chat.ID, videoListText(lines))
}

func (r *Router) handleAddChannel(ctx context.Context, msg *telegram.Message, args []string) error {
	if !r.isAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, adminOnlyText)
	}
	if len(args) == 0 {
		return r.reply(ctx, msg.Chat.ID,
			"Please provide a channel ID.\n"+
				"Usage: /add_channel [channel_id] [channel_name]")
	}

	channelID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return r.reply(ctx, msg.Chat.ID, "Invalid channel ID. Please provide a valid numeric ID.")
	}

	name := fmt.Sprintf("Channel %d", channelID)
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	}

	if err := r.channels.Register(ctx, channelID, name, msg.From.ID); err != nil {
		return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Error adding channel: %v", err))
	}
	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Channel '%s' added successfully.", name))
}

func (r *Router) handleListChannels(ctx context.Context, msg *telegram.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, adminOnlyText)
	}

	channels, err := r.channels.List(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return r.reply(ctx, msg.Chat.ID, "No channels found in the database.")
	}

	var sb strings.Builder
	sb.WriteString("List of channels:\n\n")
	for _, ch := range channels {
		fmt.Fprintf(&sb, "ID: %d\nTitle: %s\n\n", ch.ID, ch.Title)
	}
	return r.reply(ctx, msg.Chat.ID, sb.String())
}

// handleSetupSpecialChannel registers the channel named in the config and
// posts a confirmation into it.
func (r *Router) handleSetupSpecialChannel(ctx context.Context, msg *telegram.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, adminOnlyText)
	}

	channelID := r.cfg.Channels.SpecialID
	if channelID == 0 {
		return r.reply(ctx, msg.Chat.ID, "No special channel is configured.")
	}
	name := r.cfg.Channels.SpecialTitle
	if name == "" {
		name = fmt.Sprintf("Channel %d", channelID)
	}

	if err := r.channels.Register(ctx, channelID, name, msg.From.ID); err != nil {
		return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Error adding special channel: %v", err))
	}
	if err := r.reply(ctx, msg.Chat.ID,
		fmt.Sprintf("Special channel %s (ID: %d) added successfully.", name, channelID)); err != nil {
		return err
	}

	err := r.reply(ctx, channelID,
		"Bot has been configured to work with this channel. "+
			"Videos posted here will generate access links automatically.")
	if err != nil {
		return r.reply(ctx, msg.Chat.ID,
			fmt.Sprintf("Channel added to database but couldn't send test message: %v", err))
	}
	return r.reply(ctx, msg.Chat.ID, "Test message sent to the channel successfully.")
}

// handleAddPremium grants premium directly when arguments are given, or
// opens the interactive panel otherwise. Argument forms:
//
//	/add_premium <user_id>                 1 month
//	/add_premium <user_id> <months>        months
//	/add_premium <user_id> <n> days        days
func (r *Router) handleAddPremium(ctx context.Context, msg *telegram.Message, args []string) error {
	if !r.isAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, adminOnlyText)
	}

	if len(args) == 0 {
		return r.tg.SendMessage(ctx, telegram.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   "Premium Management Panel\n\nPlease select an option:",
			ReplyMarkup: telegram.Keyboard(
				telegram.Row(telegram.CallbackButton("Enter User ID", "premium_enter_user")),
				telegram.Row(telegram.CallbackButton("Quick Premium Options", "premium_quick_options")),
				telegram.Row(telegram.CallbackButton("List Premium Users", "list_premium_users")),
			),
		})
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return r.reply(ctx, msg.Chat.ID, "Invalid user ID. Please provide a valid numeric ID.")
	}

	days := 30
	durationLabel := "1 month"
	if len(args) > 1 {
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return r.reply(ctx, msg.Chat.ID, "Invalid duration. Please provide a number.")
		}
		if len(args) > 2 && isDaysUnit(args[2]) {
			days = value
			durationLabel = fmt.Sprintf("%d day(s)", value)
		} else {
			days = value * 30
			durationLabel = fmt.Sprintf("%d month(s)", value)
		}
		if days <= 0 {
			return r.reply(ctx, msg.Chat.ID, "Duration must be a positive number.")
		}
	}

	expiry, err := r.entitlements.GrantPremiumDays(ctx, userID, days)
	if err != nil {
		return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Error adding premium: %v", err))
	}
	r.metrics.IncPremiumGrant()

	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf(
		"Premium access granted to user %d for %s.\nExpires on: %s",
		userID, durationLabel, expiry.Format("2006-01-02 15:04:05")))
}

func (r *Router) handleRemovePremium(ctx context.Context, msg *telegram.Message, args []string) error {
	if !r.isAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, adminOnlyText)
	}
	if len(args) == 0 {
		return r.reply(ctx, msg.Chat.ID,
			"Please provide a user ID.\n"+
				"Usage: /remove_premium [user_id]")
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return r.reply(ctx, msg.Chat.ID, "Invalid user ID. Please provide a valid numeric ID.")
	}

	removed, err := r.entitlements.RevokePremium(ctx, userID)
	if err != nil {
		return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Error removing premium: %v", err))
	}
	if !removed {
		return r.reply(ctx, msg.Chat.ID,
			fmt.Sprintf("User %d not found or doesn't have premium access.", userID))
	}
	r.metrics.IncPremiumRevoke()
	return r.reply(ctx, msg.Chat.ID, fmt.Sprintf("Premium access removed from user %d.", userID))
}

func (r *Router) handleListPremium(ctx context.Context, msg *telegram.Message) error {
	if !r.isAdmin(msg.From.ID) {
		return r.reply(ctx, msg.Chat.ID, adminOnlyText)
	}

	text, err := r.premiumListText(ctx)
	if err != nil {
		return err
	}
	return r.reply(ctx, msg.Chat.ID, text)
}

func (r *Router) premiumListText(ctx context.Context) (string, error) {
	users, err := r.entitlements.ListPremium(ctx)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "No premium users found.", nil
	}

	now := time.Now()
	var sb strings.Builder
	sb.WriteString("List of premium users:\n\n")
	for _, u := range users {
		daysLeft := int(u.Expiry.Sub(now).Hours() / 24)
		fmt.Fprintf(&sb, "User ID: %d\nUsername: %s\nExpires: %s (%d days left)\n\n",
			u.UserID, u.Username, u.Expiry.Format("2006-01-02"), daysLeft)
	}
	return sb.String(), nil
}

func isDaysUnit(s string) bool {
	switch strings.ToLower(s) {
	case "d", "day", "days":
		return true
	}
	return false
}
