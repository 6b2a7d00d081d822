// Package messaging renders campaign sends into email and SMS copy and hands
// them to a Sender. Delivery providers are outside this package; DryRunSender
// records what would have been sent.
package messaging

import (
	"embed"
	"fmt"

	"github.com/osteele/liquid"

	"github.com/Jmoney1214/liquormarketingagent/internal/prompts"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

//go:embed templates/*.liquid
var templateFiles embed.FS

// Disclaimers holds the legal copy appended to messages. Empty fields use the defaults.
type Disclaimers struct {
	Email string
	SMS   string
}

// DefaultDisclaimers returns the standard legal copy
func DefaultDisclaimers() Disclaimers {
	return Disclaimers{
		Email: prompts.MustGet("messaging.json", "email-disclaimer"),
		SMS:   prompts.MustGet("messaging.json", "sms-disclaimer"),
	}
}

// Item is the data a message is rendered from
type Item struct {
	Email           string
	Phone           string
	Offer           string
	CreativeHint    string
	Segment         string
	PrimaryCategory string
}

// ItemFromSend builds an Item from a planned send; sends carry no category.
func ItemFromSend(s types.Send) Item {
	return Item{
		Email:        s.Email,
		Phone:        s.Phone,
		Offer:        s.Offer,
		CreativeHint: s.CreativeHint,
		Segment:      s.Segment,
	}
}

// ItemFromAction builds an Item from a ranked action
func ItemFromAction(a types.Action) Item {
	return Item{
		Email:           a.Email,
		Phone:           a.Phone,
		Offer:           a.Offer,
		CreativeHint:    a.CreativeHint,
		Segment:         a.Segment,
		PrimaryCategory: a.PrimaryCategory,
	}
}

func (i Item) bindings(disclaimer string) liquid.Bindings {
	return liquid.Bindings{
		"email":            i.Email,
		"offer":            i.Offer,
		"creative_hint":    i.CreativeHint,
		"segment":          i.Segment,
		"primary_category": i.PrimaryCategory,
		"disclaimer":       disclaimer,
	}
}

// Renderer holds the parsed message templates
type Renderer struct {
	subject     *liquid.Template
	email       *liquid.Template
	sms         *liquid.Template
	disclaimers Disclaimers
}

// NewRenderer parses the embedded templates
func NewRenderer(disclaimers Disclaimers) (*Renderer, error) {
	defaults := DefaultDisclaimers()
	if disclaimers.Email == "" {
		disclaimers.Email = defaults.Email
	}
	if disclaimers.SMS == "" {
		disclaimers.SMS = defaults.SMS
	}

	engine := liquid.NewEngine()
	r := &Renderer{disclaimers: disclaimers}

	for name, dst := range map[string]**liquid.Template{
		"subject.liquid":    &r.subject,
		"email.html.liquid": &r.email,
		"sms.liquid":        &r.sms,
	} {
		src, err := templateFiles.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		tpl, parseErr := engine.ParseString(string(src))
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, parseErr)
		}
		*dst = tpl
	}

	return r, nil
}

// Subject renders "{category} • {offer}"
func (r *Renderer) Subject(item Item) (string, error) {
	return render(r.subject, item.bindings(""))
}

// EmailHTML renders the email body with the email disclaimer
func (r *Renderer) EmailHTML(item Item) (string, error) {
	return render(r.email, item.bindings(r.disclaimers.Email))
}

// SMS renders "{offer} | {sms disclaimer}"
func (r *Renderer) SMS(item Item) (string, error) {
	return render(r.sms, item.bindings(r.disclaimers.SMS))
}

func render(tpl *liquid.Template, bindings liquid.Bindings) (string, error) {
	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}
