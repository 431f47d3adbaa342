package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TrialsLoader/internal/domain"
	"TrialsLoader/internal/ports"
)

// Notifier posts run summaries to a Telegram chat via the bot API, so a
// failing nightly load shows up somewhere a human looks.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishSummary sends the run digest as a plain-text message.
func (n *Notifier) PublishSummary(ctx context.Context, summary domain.RunSummary) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", buildMessage(summary))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func buildMessage(summary domain.RunSummary) string {
	var b strings.Builder
	b.WriteString("Clinical trials load\n")
	b.WriteString(summary.String())
	if len(summary.RejectedIDs) > 0 {
		fmt.Fprintf(&b, "\nrejected: %s", strings.Join(summary.RejectedIDs, ", "))
	}
	if len(summary.FailedIDs) > 0 {
		fmt.Fprintf(&b, "\nfailed: %s", strings.Join(summary.FailedIDs, ", "))
	}
	return b.String()
}
