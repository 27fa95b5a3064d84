package bot

import (
	"fmt"
	"strings"
	"time"

	"vidgate/internal/infrastructure/telegram"
)

const (
	userHelpText = "Bot Commands:\n\n" +
		"/start - Start the bot and check token status\n" +
		"/help - Show this help message\n\n" +
		"What is Token?\n" +
		"This is an ads token. If you pass 1 ad, you can use the bot for 24 hours after passing the ad."

	adminHelpText = "Bot Admin Commands:\n\n" +
		"/start - Start the bot\n" +
		"/admin - Show detailed admin commands and usage\n" +
		"/add_video - Add a new video\n" +
		"/list_videos - List all videos\n" +
		"/add_channel [channel_id] [name] - Add a channel\n" +
		"/list_channels - List all channels\n" +
		"/add_premium [user_id] [months] - Add premium access to a user\n" +
		"/remove_premium [user_id] - Remove premium access from a user\n" +
		"/list_premium - List all premium users\n" +
		"/help - Show this help message\n"

	adminReferenceText = "🔐 <b>ADMIN COMMANDS</b> 🔐\n\n" +
		"<b>User Management:</b>\n" +
		"/add_premium [user_id] [months] - Add premium access to a user for months\n" +
		"  Example: /add_premium 123456789 3\n\n" +
		"/add_premium [user_id] [number] days - Add premium for specific days\n" +
		"  Example: /add_premium 123456789 7 days\n\n" +
		"/remove_premium [user_id] - Remove premium access from a user\n" +
		"  Example: /remove_premium 123456789\n\n" +
		"/list_premium - List all premium users with expiration dates\n\n" +
		"<b>Video Management:</b>\n" +
		"/add_video - Start process to add a new video\n" +
		"  • Bot will ask for title\n" +
		"  • Then upload the video file\n\n" +
		"/list_videos - Show all videos in database\n\n" +
		"<b>Channel Management:</b>\n" +
		"/add_channel [channel_id] [name] - Add a channel for monitoring\n" +
		"  Example: /add_channel -1001234567890 My Channel\n\n" +
		"/list_channels - List all channels in database\n\n" +
		"/setup_special_channel - Register the configured special channel\n\n" +
		"<b>Other Commands:</b>\n" +
		"/help - Show general help message\n" +
		"/admin - Show this admin help message"

	adminOnlyText = "This command is only available to admins."

	howToOpenLinksText = "How to open links:\n\n" +
		"1. Click on the link\n" +
		"2. Wait for the page to load\n" +
		"3. Click on the 'Continue' button\n" +
		"4. Complete the captcha if required\n" +
		"5. Wait for the ad page to load\n" +
		"6. Close the ad and return to Telegram"
)

func premiumGreetingText(firstName string, expiry *time.Time, now time.Time) string {
	days := 0
	if expiry != nil {
		days = int(expiry.Sub(now).Hours() / 24)
	}
	return fmt.Sprintf(
		"Hello %s!\n\n"+
			"You have premium access! Your subscription is valid for %d more days.\n\n"+
			"You can access all videos without any ads or token restrictions.",
		firstName, days,
	)
}

func tokenActiveText(firstName string) string {
	return fmt.Sprintf(
		"Hello %s!\n\n"+
			"Your token is active. You can now access videos from our channels.",
		firstName,
	)
}

func tokenExpiredText(firstName string) string {
	return fmt.Sprintf(
		"Hey 👑 %s\n\n"+
			"<b><i>Your Ads token is expired, refresh your token and try again</i></b>\n\n"+
			"<u>Token Timeout: 24 hour</u>\n\n"+
			"<b>What is Token?</b>\n"+
			"This is an ads token If you pass 1 ad, you can use the bot for 24 hour after passing the ad\n\n"+
			"🚨 For Apple/iphone users copy the token link and Open in the Chrome Browser 🚨",
		firstName,
	)
}

func membershipPromptText(firstName string) string {
	return fmt.Sprintf(
		"🚨 CHANNEL JOINED REQUIRED 🚨\n\n"+
			"Hello, %s\n\n"+
			"To use this bot, you must join our official updates channel.\n\n"+
			"📍 Why join?\n"+
			"• Get latest updates and announcements\n"+
			"• Be the first to know about new features\n"+
			"• Receive important notifications\n\n"+
			"👇 Click 'Join' below, then click 'Try Again' to continue.",
		firstName,
	)
}

func premiumPlansText(firstName, upiID string) string {
	return fmt.Sprintf(
		"👋 Hey %s\n\n"+
			"🎖️ <b>Available Plans :</b>\n"+
			"● 30 rs For 7 Days Prime Membership\n\n"+
			"● 110 rs For 1 Month Prime Membership\n\n"+
			"● 299 rs For 3 Months Prime Membership\n\n"+
			"● 550 rs For 6 Months Prime Membership\n\n"+
			"● 999 rs For 1 Year Prime Membership\n\n"+
			"💵 <b>UPI ID</b> - %s\n"+
			"(Tap to copy UPI Id)\n\n"+
			"🚨 Send a payment screenshot to the admin after paying 🚨",
		firstName, upiID,
	)
}

func (r *Router) membershipKeyboard() *telegram.InlineKeyboardMarkup {
	var joinRow []telegram.InlineKeyboardButton
	for _, ch := range r.cfg.Channels.Required {
		joinRow = append(joinRow, telegram.URLButton("Join "+ch.Title, ch.URL))
	}

	rows := [][]telegram.InlineKeyboardButton{}
	if len(joinRow) > 0 {
		rows = append(rows, joinRow)
	}
	rows = append(rows, telegram.Row(telegram.CallbackButton("Try Again", "membership_confirmed")))
	return telegram.Keyboard(rows...)
}

func (r *Router) tokenExpiredKeyboard() *telegram.InlineKeyboardMarkup {
	rows := [][]telegram.InlineKeyboardButton{
		telegram.Row(telegram.CallbackButton("Click Here To Refresh Token", "refresh_token")),
	}
	if r.cfg.Links.HowToOpen != "" {
		rows = append(rows, telegram.Row(telegram.URLButton("How To Open Links?", r.cfg.Links.HowToOpen)))
	} else {
		rows = append(rows, telegram.Row(telegram.CallbackButton("How To Open Links?", "how_to_open_links")))
	}
	rows = append(rows, telegram.Row(telegram.CallbackButton("Remove All Ads In One Click", "remove_ads")))
	return telegram.Keyboard(rows...)
}

func (r *Router) tokenActiveKeyboard() *telegram.InlineKeyboardMarkup {
	if r.cfg.Links.VideosChannel == "" {
		return nil
	}
	return telegram.Keyboard(telegram.Row(telegram.URLButton("Videos Links", r.cfg.Links.VideosChannel)))
}

func (r *Router) premiumPlansKeyboard() *telegram.InlineKeyboardMarkup {
	rows := [][]telegram.InlineKeyboardButton{}
	if r.cfg.Payments.Contact != "" {
		rows = append(rows, telegram.Row(telegram.URLButton("Send Payment Screenshot (ADMIN)", r.cfg.Payments.Contact)))
	}
	rows = append(rows, telegram.Row(telegram.CallbackButton("CLOSE", "close_premium_menu")))
	return telegram.Keyboard(rows...)
}

func premiumDurationKeyboard() *telegram.InlineKeyboardMarkup {
	return telegram.Keyboard(
		telegram.Row(telegram.CallbackButton("1 Day", "premium_duration_1_day")),
		telegram.Row(telegram.CallbackButton("7 Days (1 Week)", "premium_duration_7_days")),
		telegram.Row(telegram.CallbackButton("30 Days (1 Month)", "premium_duration_30_days")),
		telegram.Row(telegram.CallbackButton("90 Days (3 Months)", "premium_duration_90_days")),
		telegram.Row(telegram.CallbackButton("365 Days (1 Year)", "premium_duration_365_days")),
		telegram.Row(telegram.CallbackButton("Custom Duration", "premium_duration_custom")),
	)
}

func durationText(days int) string {
	switch days {
	case 1:
		return "1 day"
	case 7:
		return "7 days (1 week)"
	case 30:
		return "30 days (1 month)"
	case 90:
		return "90 days (3 months)"
	case 365:
		return "365 days (1 year)"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

func videoListText(lines []string) string {
	return "List of videos:\n\n" + strings.Join(lines, "\n")
}
