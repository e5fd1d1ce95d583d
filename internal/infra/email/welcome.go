package email

import (
	"context"
	"fmt"
	"strings"

	"threadcraft-api/internal/infra/metrics"
)

// Welcomer composes and sends the welcome email.
type Welcomer struct {
	sender   Sender
	from     string
	fromName string
	appURL   string
	points   int
	cost     int
}

func NewWelcomer(sender Sender, from, fromName, appURL string, startingPoints, generationCost int) *Welcomer {
	return &Welcomer{
		sender:   sender,
		from:     from,
		fromName: fromName,
		appURL:   strings.TrimRight(appURL, "/"),
		points:   startingPoints,
		cost:     generationCost,
	}
}

func (w *Welcomer) SendWelcome(ctx context.Context, to, name string) error {
	generations := 0
	if w.cost > 0 {
		generations = w.points / w.cost
	}
	html, text, err := RenderWelcome(WelcomeData{
		Name:        name,
		Points:      w.points,
		Generations: generations,
		AppURL:      w.appURL,
	})
	if err != nil {
		return err
	}

	err = w.sender.Send(ctx, Message{
		From:     w.from,
		FromName: w.fromName,
		To:       to,
		Subject:  WelcomeSubject,
		HTML:     html,
		Text:     text,
		Category: WelcomeCategory,
	})
	if err != nil {
		metrics.EmailsTotal.WithLabelValues("welcome", "error").Inc()
		return fmt.Errorf("send welcome email: %w", err)
	}
	metrics.EmailsTotal.WithLabelValues("welcome", "sent").Inc()
	return nil
}
