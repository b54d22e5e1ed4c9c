package categorizer

import "strings"

// MessagePlaceholder is replaced with the submission text.
const MessagePlaceholder = "{{MESSAGE}}"

// DefaultPromptTemplate asks the model for exactly one label.
const DefaultPromptTemplate = `Categorize the following contact form message into exactly one of these categories: "Job Inquiry", "Collaboration Opportunity", "General Feedback", "Other".
Respond with only the category name, exactly as written above (case-sensitive), with no extra text, explanation, or punctuation.
If you are unsure, respond with "Other".

Message:
"{{MESSAGE}}"`

// BuildPrompt interpolates message into template as-is.
// An empty template falls back to DefaultPromptTemplate.
func BuildPrompt(template, message string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultPromptTemplate
	}
	return strings.ReplaceAll(template, MessagePlaceholder, message)
}
