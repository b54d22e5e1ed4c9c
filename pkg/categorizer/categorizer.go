package categorizer

import "context"

// Category is the label assigned to a contact message.
type Category string

const (
	JobInquiry               Category = "Job Inquiry"
	CollaborationOpportunity Category = "Collaboration Opportunity"
	GeneralFeedback          Category = "General Feedback"
	Other                    Category = "Other"

	// Uncategorized is used when the model response cannot be parsed.
	Uncategorized Category = "Uncategorized"
)

// Categories is the closed set of labels the model is asked to choose from.
var Categories = []Category{JobInquiry, CollaborationOpportunity, GeneralFeedback, Other}

// Known reports whether c is one of the labels in Categories.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Submission is an inbound contact form.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Valid reports whether every field is present.
func (s Submission) Valid() bool {
	return s.Name != "" && s.Email != "" && s.Message != ""
}

// CategorizationRequest holds the text to classify
type CategorizationRequest struct {
	Message string
}

// CategorizationResult holds the resolved category
type CategorizationResult struct {
	Category Category
	Attempts int
}

// ContentCategorizer categorizes content
type ContentCategorizer interface {
	Categorize(ctx context.Context, req CategorizationRequest) (CategorizationResult, error)
}
