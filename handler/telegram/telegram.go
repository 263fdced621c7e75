// Package telegram adapts the session engine to the Telegram Bot API.
// Updates for the same user run strictly in arrival order; different users
// never block each other.
package telegram

import (
	"context"
	"log/slog"

	"github.com/asaskevich/govalidator"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tradlabs/trad-wallet-bot/core"
	"github.com/tradlabs/trad-wallet-bot/service/session"
)

const updateTimeout = 30

type Config struct {
	Token string `valid:"required"`
	Debug bool
}

func New(
	engine *session.Engine,
	logger *slog.Logger,
	cfg Config,
) (*Handler, error) {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	bot.Debug = cfg.Debug

	return &Handler{
		bot:        bot,
		engine:     engine,
		dispatcher: newDispatcher(),
		logger:     logger.With("handler", "telegram"),
	}, nil
}

type Handler struct {
	bot        *tgbotapi.BotAPI
	engine     *session.Engine
	dispatcher *dispatcher
	logger     *slog.Logger
}

func (h *Handler) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout

	updates := h.bot.GetUpdatesChan(u)
	h.logger.Info("handler running", "bot", h.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			h.dispatcher.wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				h.dispatcher.wait()
				return nil
			}

			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		h.dispatcher.enqueue(msg.From.ID, func() {
			h.handleMessage(ctx, msg)
		})
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		h.dispatcher.enqueue(cb.From.ID, func() {
			h.handleCallback(ctx, cb)
		})
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		h.handleCommand(msg)
		return
	}

	reply, err := h.engine.HandleText(ctx, core.UserID(msg.From.ID), msg.Text)
	if err != nil {
		h.logger.Error("handle text", "user_id", msg.From.ID, "error", err)
		h.sendPlain(msg.Chat.ID, "❌ Something went wrong. Please try again.")
		return
	}

	// nil means no pending flow was waiting on this text
	if reply == nil {
		return
	}

	h.sendReply(msg.Chat.ID, reply)
}

func (h *Handler) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.send(msg.Chat.ID, welcomeText, mainMenuKeyboard())
	default:
		h.send(msg.Chat.ID, menuText, mainMenuKeyboard())
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		h.logger.Error("answer callback", "error", err)
	}

	if cb.Message == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	// Dispatching a transfer can take several seconds of confirmation
	// polling. Swap the confirm keyboard out first so the button cannot be
	// pressed twice.
	if session.IsConfirmAction(cb.Data) {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, "⏳ Processing transaction...")
		if _, err := h.bot.Send(edit); err != nil {
			h.logger.Error("edit processing", "error", err)
		}
	}

	reply, err := h.engine.HandleAction(ctx, core.UserID(cb.From.ID), cb.Data)
	if err != nil {
		h.logger.Error("handle action", "user_id", cb.From.ID, "action", cb.Data, "error", err)
		h.sendPlain(chatID, "❌ Something went wrong. Please try again.")
		return
	}

	if reply == nil {
		return
	}

	h.editReply(chatID, messageID, reply)
}

// editReply rewrites the message the pressed button lived on, keeping the
// chat to one rolling menu message instead of a trail of stale keyboards.
func (h *Handler) editReply(chatID int64, messageID int, reply *core.Reply) {
	text, keyboard := render(reply)

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	edit.ParseMode = tgbotapi.ModeMarkdown

	if _, err := h.bot.Send(edit); err != nil {
		h.logger.Error("edit message", "chat_id", chatID, "error", err)
	}

	h.sendSensitive(chatID, reply)
}

func (h *Handler) sendReply(chatID int64, reply *core.Reply) {
	text, keyboard := render(reply)
	h.send(chatID, text, keyboard)
	h.sendSensitive(chatID, reply)
}

// sendSensitive delivers secret material as its own message so the user can
// delete it without losing the menu.
func (h *Handler) sendSensitive(chatID int64, reply *core.Reply) {
	if !reply.Sensitive || reply.SecretKey == "" {
		return
	}

	msg := tgbotapi.NewMessage(chatID, renderSecret(reply.SecretKey))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("send secret", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) send(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard

	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) sendPlain(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.Error("send message", "chat_id", chatID, "error", err)
	}
}
