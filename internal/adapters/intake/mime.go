package intake

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/support-triage/internal/core"
)

var htmlTagRegex = regexp.MustCompile(`(?s)<[^>]*>`)

// ParseMessage reads an RFC 822 message into a core.Message. The first
// text/plain part becomes the body, falling back to tag-stripped text/html.
// envelopeFrom is used when the message has no usable From header.
func ParseMessage(r io.Reader, envelopeFrom string) (*core.Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	defer mr.Close()

	msg := &core.Message{Sender: envelopeFrom}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.Sender = from[0].Address
	}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = strings.TrimSpace(subject)
	}
	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		msg.ReceivedAt = date.UTC()
	} else {
		msg.ReceivedAt = time.Now().UTC()
	}

	var plain, html string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		switch {
		case strings.HasPrefix(ct, "text/plain") && plain == "":
			body, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read text part: %w", err)
			}
			plain = string(body)
		case strings.HasPrefix(ct, "text/html") && html == "":
			body, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read html part: %w", err)
			}
			html = string(body)
		case ct == "" && plain == "":
			// A single-part message without Content-Type is text/plain
			body, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read body: %w", err)
			}
			plain = string(body)
		}
	}

	if plain != "" {
		msg.Body = strings.TrimSpace(plain)
	} else {
		msg.Body = stripHTML(html)
	}
	return msg, nil
}

// stripHTML returns the visible text of an HTML body with whitespace collapsed
func stripHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	var text string
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Fallback to regex
		text = htmlTagRegex.ReplaceAllString(html, " ")
	} else {
		doc.Find("script, style, head").Remove()
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " ")
}
