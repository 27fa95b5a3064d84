package bot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vidgate/internal/core/ports"
	"vidgate/internal/infrastructure/monitoring"
	"vidgate/internal/infrastructure/telegram"
	"vidgate/pkg/config"
	"vidgate/pkg/logger"
	"vidgate/pkg/tracing"
)

// Router dispatches inbound Telegram updates to command, callback and
// channel-post handlers. It owns no state beyond an update counter; all
// conversation state lives in the session repository.
type Router struct {
	tg           *telegram.Client
	cfg          *config.Config
	gate         ports.GateService
	entitlements ports.EntitlementService
	videos       ports.VideoService
	channels     ports.ChannelService
	links        ports.LinkProvider
	sessions     ports.SessionRepository
	metrics      *monitoring.PrometheusCollector
	logger       *zap.SugaredLogger
}

func NewRouter(
	tg *telegram.Client,
	cfg *config.Config,
	gate ports.GateService,
	entitlements ports.EntitlementService,
	videos ports.VideoService,
	channels ports.ChannelService,
	links ports.LinkProvider,
	sessions ports.SessionRepository,
	metrics *monitoring.PrometheusCollector,
	logger *zap.SugaredLogger,
) *Router {
	return &Router{
		tg:           tg,
		cfg:          cfg,
		gate:         gate,
		entitlements: entitlements,
		videos:       videos,
		channels:     channels,
		links:        links,
		sessions:     sessions,
		metrics:      metrics,
		logger:       logger,
	}
}

// Run polls for updates until the context is cancelled. Poll errors are
// logged and retried after a short pause; they never stop the loop.
func (r *Router) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := r.tg.GetUpdates(ctx, offset, r.cfg.Bot.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Errorw("poll failed", "error", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for i := range updates {
			update := &updates[i]
			offset = update.UpdateID + 1
			r.Dispatch(ctx, update)
		}
	}
}

// Dispatch routes one update. Handler errors end up in the log, not back
// at the user; user-visible failures are sent by the handlers themselves.
func (r *Router) Dispatch(ctx context.Context, update *telegram.Update) {
	kind := updateKind(update)
	start := time.Now()
	r.metrics.IncUpdate(kind)
	defer func() {
		r.metrics.ObserveUpdateDuration(time.Since(start))
	}()

	updateID := uuid.NewString()
	log := r.logger.With("update_id", updateID, "kind", kind)

	ctx = logger.ContextWithUpdateID(ctx, updateID)
	if userID := updateUserID(update); userID != 0 {
		ctx = logger.ContextWithUserID(ctx, userID)
	}

	ctx, span := tracing.TraceUpdate(ctx, kind, updateUserID(update))
	defer span.End()

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = r.handleCallback(ctx, log, update.CallbackQuery)
	case update.ChannelPost != nil:
		err = r.handleChannelPost(ctx, log, update.ChannelPost)
	case update.Message != nil && update.Message.From != nil:
		if command, args, ok := parseCommand(update.Message.Text); ok {
			ctx = logger.ContextWithCommand(ctx, command)
			ctx, cmdSpan := tracing.StartSpan(ctx, "bot.command."+command)
			err = r.handleCommand(ctx, log.With("command", command), update.Message, command, args)
			cmdSpan.End()
		} else {
			err = r.handleSessionMessage(ctx, log, update.Message)
		}
	}
	if err != nil {
		tracing.RecordError(ctx, err)
		log.Errorw("update handling failed", "error", err)
	}
}

func (r *Router) handleCommand(ctx context.Context, log *zap.SugaredLogger, msg *telegram.Message, command string, args []string) error {
	switch command {
	case "start":
		return r.handleStart(ctx, log, msg, args)
	case "help":
		return r.handleHelp(ctx, msg)
	case "admin":
		return r.handleAdmin(ctx, msg)
	case "add_video":
		return r.handleAddVideo(ctx, msg)
	case "cancel":
		return r.handleCancel(ctx, msg)
	case "list_videos":
		return r.handleListVideos(ctx, msg)
	case "add_channel":
		return r.handleAddChannel(ctx, msg, args)
	case "list_channels":
		return r.handleListChannels(ctx, msg)
	case "setup_special_channel":
		return r.handleSetupSpecialChannel(ctx, msg)
	case "add_premium":
		return r.handleAddPremium(ctx, msg, args)
	case "remove_premium":
		return r.handleRemovePremium(ctx, msg, args)
	case "list_premium":
		return r.handleListPremium(ctx, msg)
	default:
		log.Debugw("unknown command ignored")
		return nil
	}
}

func (r *Router) isAdmin(userID int64) bool {
	return r.cfg.IsAdmin(userID)
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) error {
	return r.tg.SendMessage(ctx, telegram.SendMessageParams{ChatID: chatID, Text: text})
}

// parseCommand splits "/cmd@bot arg arg" into its command and arguments.
func parseCommand(text string) (string, []string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}
	fields := strings.Fields(text)
	command := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(command, '@'); at >= 0 {
		command = command[:at]
	}
	if command == "" {
		return "", nil, false
	}
	return command, fields[1:], true
}

func updateKind(update *telegram.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback_query"
	case update.ChannelPost != nil:
		return "channel_post"
	case update.Message != nil:
		return "message"
	default:
		return "other"
	}
}

func updateUserID(update *telegram.Update) int64 {
	switch {
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	}
	return 0
}
