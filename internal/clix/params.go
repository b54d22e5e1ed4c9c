package clix

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"contactform/pkg/categorizer"
)

var ErrMissingFields = errors.New("--name, --email, and --message are required")

// AddSubmissionFlags registers the flags read by ParseSubmission.
func AddSubmissionFlags(flags *pflag.FlagSet) {
	flags.String("name", "", "Sender name")
	flags.String("email", "", "Sender email address")
	flags.StringP("message", "m", "", "Message text to categorize")
}

// ParseSubmission reads a contact submission from flags. The message is
// kept verbatim; name and email are trimmed.
func ParseSubmission(flags *pflag.FlagSet) (categorizer.Submission, error) {
	name, _ := flags.GetString("name")
	email, _ := flags.GetString("email")
	message, _ := flags.GetString("message")

	s := categorizer.Submission{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Message: message,
	}
	if !s.Valid() {
		return s, ErrMissingFields
	}
	return s, nil
}
