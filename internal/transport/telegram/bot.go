// Package telegram connects a Telegram chat to the agent's chat engagement path.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/annabot/internal/config"
	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/log"
	"github.com/sandevgo/annabot/pkg/retry"
)

const (
	baseContextKey = "base_context"
	platform       = "telegram"
)

var _ core.Speaker = (*Bot)(nil)

type chatSink interface {
	SubmitChat(platform, username, message string, mention bool) bool
}

type Bot struct {
	bot     *tele.Bot
	sink    chatSink
	router  core.CmdRouter
	sender  *sender
	ownerID int64
	names   []string

	mu       sync.Mutex
	lastChat *tele.Chat
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	sink chatSink,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	var b *tele.Bot
	err := retry.NewDefaultRetrier().Do(ctx, func() error {
		var err error
		b, err = tele.NewBot(pref)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("telegram bot init failed, retrying")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		sink:    sink,
		router:  router,
		sender:  newSender(b),
		ownerID: cfg.OwnerID,
		names:   addressNames(b.Me, cfg.BotName),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleText)

	return bot, nil
}

func addressNames(me *tele.User, botName string) []string {
	var names []string
	if me != nil && me.Username != "" {
		names = append(names, "@"+strings.ToLower(me.Username))
	}
	if botName = strings.ToLower(strings.TrimSpace(botName)); botName != "" {
		names = append(names, botName)
	}
	return names
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleText(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	text := strings.TrimSpace(c.Text())
	if text == "" || c.Sender() == nil {
		return nil
	}

	if strings.HasPrefix(text, "/") {
		// Only the owner may steer the agent.
		if c.Sender().ID != b.ownerID {
			return nil
		}
		if out, ok := b.router.Execute(ctx, text); ok {
			return b.sender.send(ctx, c.Chat(), out, false)
		}
		return nil
	}

	b.mu.Lock()
	b.lastChat = c.Chat()
	b.mu.Unlock()

	mention := isMention(text, b.names) || b.isReplyToBot(c.Message()) || c.Chat().Type == tele.ChatPrivate
	if !b.sink.SubmitChat(platform, displayName(c.Sender()), text, mention) {
		log.FromCtx(ctx).Warn().Msg("agent queue full, dropping telegram message")
	}
	return nil
}

func (b *Bot) isReplyToBot(m *tele.Message) bool {
	return m != nil && m.ReplyTo != nil && m.ReplyTo.Sender != nil &&
		b.bot.Me != nil && m.ReplyTo.Sender.ID == b.bot.Me.ID
}

// Speak sends the response to the chat that spoke last, or to the owner.
func (b *Bot) Speak(ctx context.Context, resp core.SpokenResponse) error {
	b.mu.Lock()
	var to tele.Recipient = b.lastChat
	if b.lastChat == nil {
		to = tele.ChatID(b.ownerID)
	}
	b.mu.Unlock()

	return b.sender.send(ctx, to, resp.Text, unprompted(resp.Reason))
}

func isMention(text string, names []string) bool {
	lower := strings.ToLower(text)
	for _, n := range names {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return fmt.Sprintf("user%d", u.ID)
	}
	return name
}
