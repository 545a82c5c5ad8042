// Package extractor pulls contact details and requirement flags out of message text.
package extractor

import (
	"regexp"
	"strings"

	"github.com/mikey/support-triage/internal/core"
)

// RequirementAssistance is flagged when a message asks for help
const RequirementAssistance = "Customer requires assistance"

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRegex = regexp.MustCompile(`(\+\d{1,3}[-.]?)?\(?\d{3}\)?[-.]?\d{3}[-.]?\d{4}`)
)

// Extract returns every email address and phone number found in text, in
// order of appearance and without deduplication, plus the requirement flags.
func Extract(text string) core.ContactMetadata {
	md := core.ContactMetadata{
		Emails:       emailRegex.FindAllString(text, -1),
		Phones:       phoneRegex.FindAllString(text, -1),
		Requirements: []string{},
	}
	if md.Emails == nil {
		md.Emails = []string{}
	}
	if md.Phones == nil {
		md.Phones = []string{}
	}

	if strings.Contains(strings.ToLower(text), "help") {
		md.Requirements = append(md.Requirements, RequirementAssistance)
	}
	return md
}
