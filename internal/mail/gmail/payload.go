package gmail

import (
	"encoding/base64"
	"fmt"
	netmail "net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/avoelkl/mietscout/internal/mail"
)

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"

	noSubject = "No Subject"
	noSender  = "Unknown Sender"
	noBody    = "No Body Content"
)

type messageResource struct {
	ID       string       `json:"id"`
	ThreadID string       `json:"threadId"`
	Payload  *messagePart `json:"payload"`
}

type messagePart struct {
	MimeType string          `json:"mimeType"`
	Headers  []messageHeader `json:"headers"`
	Body     *partBody       `json:"body"`
	Parts    []*messagePart  `json:"parts"`
}

type messageHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type partBody struct {
	Size int    `json:"size"`
	Data string `json:"data"`
}

func (c *Client) getMessage(id string) (*mail.Message, error) {
	apiURLMessage := fmt.Sprintf("%s%s/%s", c.APIURL, listPath, id)

	q := url.Values{}
	q.Set("format", "full")

	var resource messageResource
	if err := c.getJSON(apiURLMessage, q, &resource); err != nil {
		return nil, err
	}

	return resource.toMessage(), nil
}

func (r *messageResource) toMessage() *mail.Message {
	subject := r.header("Subject")
	if subject == "" {
		subject = noSubject
	}

	sender := r.header("From")
	if sender == "" {
		sender = noSender
	}

	body := strings.TrimSpace(r.bodyText())
	if body == "" {
		body = noBody
	}

	return &mail.Message{
		ID:       r.ID,
		ThreadID: r.ThreadID,
		Sender:   sender,
		Subject:  subject,
		Date:     r.date(),
		Body:     body,
	}
}

func (r *messageResource) header(name string) string {
	if r.Payload == nil {
		return ""
	}

	for _, h := range r.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}

	return ""
}

// date falls back to the fetch time when the Date header is missing or
// unparseable.
func (r *messageResource) date() time.Time {
	raw := r.header("Date")
	if raw == "" {
		return time.Now()
	}

	parsed, err := netmail.ParseDate(raw)
	if err != nil {
		return time.Now()
	}

	return parsed
}

// bodyText prefers plain text parts. HTML is used only when no plain part
// carries data. A single-part message contributes its body directly.
func (r *messageResource) bodyText() string {
	if r.Payload == nil {
		return ""
	}

	if len(r.Payload.Parts) == 0 {
		if r.Payload.MimeType == mimeTextPlain {
			return decodeBody(r.Payload.Body)
		}
		return ""
	}

	var plain, html strings.Builder
	walkParts(r.Payload.Parts, &plain, &html)

	if plain.Len() > 0 {
		return plain.String()
	}

	return html.String()
}

func walkParts(parts []*messagePart, plain, html *strings.Builder) {
	for _, part := range parts {
		if part == nil {
			continue
		}

		switch part.MimeType {
		case mimeTextPlain:
			plain.WriteString(decodeBody(part.Body))
		case mimeTextHTML:
			if html.Len() == 0 {
				html.WriteString(decodeBody(part.Body))
			}
		}

		walkParts(part.Parts, plain, html)
	}
}

// decodeBody tolerates both padded and raw url-safe base64. Gmail has served
// both forms.
func decodeBody(body *partBody) string {
	if body == nil || body.Data == "" {
		return ""
	}

	data, err := base64.URLEncoding.DecodeString(body.Data)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(body.Data)
		if err != nil {
			return ""
		}
	}

	return string(data)
}
