package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// Mode selects which channels Dispatch renders
type Mode string

// Dispatch modes
const (
	ModeEmail Mode = "email"
	ModeSMS   Mode = "sms"
	ModeBoth  Mode = "both"
)

// DefaultDispatchLimit is the number of sends dispatched when no limit is given
const DefaultDispatchLimit = 10

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeEmail, ModeSMS, ModeBoth:
		return m, nil
	case "":
		return ModeEmail, nil
	default:
		return "", fmt.Errorf("invalid mode %q: expected email, sms or both", s)
	}
}

// Message is one rendered outbound message
type Message struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	Date    string `json:"date,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// Sender delivers rendered messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// DryRunSender records messages instead of delivering them
type DryRunSender struct {
	mu     sync.Mutex
	sent   []Message
	logger *slog.Logger
}

// NewDryRunSender creates a recording sender. logger may be nil.
func NewDryRunSender(logger *slog.Logger) *DryRunSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRunSender{logger: logger}
}

// Send records msg
func (s *DryRunSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	s.logger.Debug("dry-run message", "channel", msg.Channel, "to", msg.To, "date", msg.Date)
	return nil
}

// Sent returns a copy of the recorded messages
func (s *DryRunSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

// Summary counts what a dispatch did
type Summary struct {
	Mode       Mode `json:"mode"`
	Considered int  `json:"considered"`
	Emails     int  `json:"emails"`
	SMS        int  `json:"sms"`
	Skipped    int  `json:"skipped"`
}

// Dispatcher renders plan sends and passes them to a Sender
type Dispatcher struct {
	renderer *Renderer
	sender   Sender
}

// NewDispatcher creates a dispatcher
func NewDispatcher(renderer *Renderer, sender Sender) *Dispatcher {
	return &Dispatcher{renderer: renderer, sender: sender}
}

// Dispatch renders the first limit sends of plan in the given mode. A limit
// below one means DefaultDispatchLimit. SMS goes only to sends with a phone
// number; a send that yields no message at all counts as skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, plan types.CampaignPlan, mode Mode, limit int) (Summary, error) {
	if limit < 1 {
		limit = DefaultDispatchLimit
	}
	sends := plan.Sends
	if len(sends) > limit {
		sends = sends[:limit]
	}

	summary := Summary{Mode: mode, Considered: len(sends)}
	for _, send := range sends {
		item := ItemFromSend(send)
		delivered := false

		if (mode == ModeEmail || mode == ModeBoth) && item.Email != "" {
			msg, err := d.emailMessage(send.Date, item)
			if err != nil {
				return summary, err
			}
			if err := d.sender.Send(ctx, msg); err != nil {
				return summary, fmt.Errorf("failed to send email to %s: %w", item.Email, err)
			}
			summary.Emails++
			delivered = true
		}

		if (mode == ModeSMS || mode == ModeBoth) && item.Phone != "" {
			body, err := d.renderer.SMS(item)
			if err != nil {
				return summary, err
			}
			msg := Message{Channel: "SMS", To: item.Phone, Date: send.Date, Body: body}
			if err := d.sender.Send(ctx, msg); err != nil {
				return summary, fmt.Errorf("failed to send sms to %s: %w", item.Phone, err)
			}
			summary.SMS++
			delivered = true
		}

		if !delivered {
			summary.Skipped++
		}
	}
	return summary, nil
}

func (d *Dispatcher) emailMessage(date string, item Item) (Message, error) {
	subject, err := d.renderer.Subject(item)
	if err != nil {
		return Message{}, err
	}
	body, err := d.renderer.EmailHTML(item)
	if err != nil {
		return Message{}, err
	}
	return Message{Channel: "Email", To: item.Email, Date: date, Subject: subject, Body: body}, nil
}
