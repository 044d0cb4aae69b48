// Package telegram sends a copy of the unattended-complaint popup to an admin
// Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"

	"complaintdesk/dashboard/internal/analysis"
	"complaintdesk/dashboard/internal/localization"
	"complaintdesk/dashboard/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Sender is the part of *tgbotapi.BotAPI the presenter uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Presenter struct {
	Bot       Sender
	ChatID    int64
	Localizer *localization.Localizer
	Lang      string
	log       *logrus.Entry
}

// NewPresenter authorizes the bot and targets chatID.
func NewPresenter(token string, chatID int64, l *localization.Localizer, lang string, log *logrus.Entry) (*Presenter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	bot.Debug = false
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log.WithField("bot", bot.Self.UserName).Info("telegram presenter authorized")
	return NewPresenterWithSender(bot, chatID, l, lang, log), nil
}

func NewPresenterWithSender(bot Sender, chatID int64, l *localization.Localizer, lang string, log *logrus.Entry) *Presenter {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Presenter{Bot: bot, ChatID: chatID, Localizer: l, Lang: lang, log: log.WithField("component", "telegram")}
}

// Present sends one message listing every complaint.
func (p *Presenter) Present(_ context.Context, profile string, complaints []models.Complaint) error {
	if len(complaints) == 0 || p.ChatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(p.ChatID, FormatPopup(p.Localizer, p.Lang, complaints))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := p.Bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	p.log.WithFields(logrus.Fields{"profile": profile, "count": len(complaints)}).Info("popup sent to telegram")
	return nil
}

// FormatPopup renders the popup as Telegram HTML.
func FormatPopup(l *localization.Localizer, lang string, complaints []models.Complaint) string {
	var b strings.Builder
	b.WriteString("<b>" + html.EscapeString(l.GetString(lang, "popup_title")) + "</b>\n")
	b.WriteString(html.EscapeString(l.Format(lang, "popup_intro", len(complaints))) + "\n\n")
	for _, c := range complaints {
		line := l.Format(lang, "popup_line",
			c.ID.String(),
			c.Title,
			analysis.FormatCategoryLabel(c.Category),
			c.SubmittedAt.String(),
		)
		b.WriteString("• " + html.EscapeString(line) + "\n")
	}
	b.WriteString("\n" + html.EscapeString(l.GetString(lang, "popup_footer")))
	return b.String()
}
