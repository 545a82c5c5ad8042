package extractor

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		emails       []string
		phones       []string
		requirements []string
	}{
		{
			name:         "nothing to find",
			text:         "",
			emails:       []string{},
			phones:       []string{},
			requirements: []string{},
		},
		{
			name:         "email and help request",
			text:         "Please HELP, reach me at jane.doe+support@example.co.uk",
			emails:       []string{"jane.doe+support@example.co.uk"},
			phones:       []string{},
			requirements: []string{RequirementAssistance},
		},
		{
			name:         "phone formats",
			text:         "Call (555) 123-4567 or +1-555.987.6543 or 5551112222",
			emails:       []string{},
			phones:       []string{"(555) 123-4567", "+1-555.987.6543", "5551112222"},
			requirements: []string{},
		},
		{
			name:         "duplicates are kept",
			text:         "a@b.io wrote to a@b.io",
			emails:       []string{"a@b.io", "a@b.io"},
			phones:       []string{},
			requirements: []string{},
		},
		{
			name:         "help inside another word still counts",
			text:         "Your docs were helpful",
			emails:       []string{},
			phones:       []string{},
			requirements: []string{RequirementAssistance},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Extract(tt.text)
			if !reflect.DeepEqual(got.Emails, tt.emails) {
				t.Errorf("emails = %v, want %v", got.Emails, tt.emails)
			}
			if !reflect.DeepEqual(got.Phones, tt.phones) {
				t.Errorf("phones = %v, want %v", got.Phones, tt.phones)
			}
			if !reflect.DeepEqual(got.Requirements, tt.requirements) {
				t.Errorf("requirements = %v, want %v", got.Requirements, tt.requirements)
			}
		})
	}
}
