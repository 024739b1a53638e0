// Package bot delivers rendered reports to a Telegram chat.
package bot

import (
	"context"
	"fmt"
	"net/http"

	tg "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/BalanceBalls/timedoctor-reports/internal/generator"
	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
)

type ReportsBot struct {
	bot    Sender
	chatId int64
}

// New authorizes against the Bot API. It fails when the token is rejected.
func New(cfg Config) (*ReportsBot, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tg.APIEndpoint
	}

	bot, err := tg.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{})
	if err != nil {
		return nil, fmt.Errorf("could not authorize telegram bot: %w", err)
	}

	return NewWithSender(bot, cfg.ChatId), nil
}

func NewWithSender(bot Sender, chatId int64) *ReportsBot {
	return &ReportsBot{bot: bot, chatId: chatId}
}

// SendReport uploads the rendered report as a document captioned with its
// kind and range.
func (b *ReportsBot) SendReport(ctx context.Context, rep report.Report, rendered generator.Result) error {
	logger := logger.GetFromContext(ctx)

	file := tg.FileBytes{
		Name:  rendered.Name,
		Bytes: rendered.Data,
	}

	msg := tg.NewDocument(b.chatId, file)
	msg.Caption = caption(rep)

	if _, err := b.bot.Send(msg); err != nil {
		return fmt.Errorf("could not send report to telegram chat %d: %w", b.chatId, err)
	}

	logger.InfoContext(ctx, "report sent to telegram", "chat_id", b.chatId, "file", rendered.Name)
	return nil
}

// SendFailure tells the chat that a run failed.
func (b *ReportsBot) SendFailure(ctx context.Context, runErr error) error {
	return b.sendText(fmt.Sprintf(reportGenerationFailedMsg, runErr))
}

func (b *ReportsBot) sendText(text string) error {
	message := tg.NewMessage(b.chatId, text)

	if _, err := b.bot.Send(message); err != nil {
		return fmt.Errorf("could not send message to telegram chat %d: %w", b.chatId, err)
	}
	return nil
}

func caption(rep report.Report) string {
	from := rep.Range.From.Format(captionDateLayout)
	to := rep.Range.To.Format(captionDateLayout)

	if rep.Len() == 0 {
		return fmt.Sprintf(emptyReportCaptionTemplate, rep.Kind, from, to)
	}
	return fmt.Sprintf(reportFileCaptionTemplate, rep.Kind, from, to, rep.Len())
}
