package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vidgate/internal/infrastructure/telegram"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		command string
		args    []string
		isCmd   bool
	}{
		{"plain command", "/start", "start", []string{}, true},
		{"command with payload", "/start token_42", "start", []string{"token_42"}, true},
		{"command with bot mention", "/help@testbot", "help", []string{}, true},
		{"multiple args", "/add_premium 123 2", "add_premium", []string{"123", "2"}, true},
		{"not a command", "hello there", "", nil, false},
		{"bare slash", "/", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, args, isCmd := parseCommand(tt.text)
			assert.Equal(t, tt.isCmd, isCmd)
			if !tt.isCmd {
				return
			}
			assert.Equal(t, tt.command, command)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "message", updateKind(&telegram.Update{Message: &telegram.Message{}}))
	assert.Equal(t, "callback_query", updateKind(&telegram.Update{CallbackQuery: &telegram.CallbackQuery{}}))
	assert.Equal(t, "channel_post", updateKind(&telegram.Update{ChannelPost: &telegram.Message{}}))
	assert.Equal(t, "other", updateKind(&telegram.Update{}))
}

func TestDurationText(t *testing.T) {
	assert.Equal(t, "1 day", durationText(1))
	assert.Equal(t, "30 days (1 month)", durationText(30))
	assert.Equal(t, "365 days (1 year)", durationText(365))
}
