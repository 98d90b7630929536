package telegram

import (
	"context"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/conv"
	"github.com/sandevgo/annabot/pkg/log"
)

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// send renders md as Telegram HTML and sends it in as many messages as it takes.
// Only the first message of a silent send skips the notification.
func (s *sender) send(ctx context.Context, to tele.Recipient, md string, silent bool) error {
	logger := log.FromCtx(ctx)

	for i, msg := range conv.TelegramMessages(md) {
		opts := []interface{}{tele.ModeHTML}
		if silent && i == 0 {
			opts = append(opts, tele.Silent)
		}
		if _, err := s.bot.Send(to, msg, opts...); err != nil {
			logger.Error().Err(err).Int("part", i).Int("len", len(msg)).Msg("failed to send telegram message")
			return err
		}
	}
	return nil
}

// unprompted reports whether the agent spoke without being addressed. Those
// responses go out without a notification.
func unprompted(reason core.Reason) bool {
	switch reason {
	case core.ReasonDirectMention, core.ReasonDirectQuestion, core.ReasonCommand,
		core.ReasonGreeting, core.ReasonUserWaiting, core.ReasonChatMention, core.ReasonChatQuestion:
		return false
	}
	return true
}
