package domain

import "strings"

// Intent is what an inbound message asks for.
type Intent string

const (
	IntentInterested            Intent = "interested"
	IntentReplyGetLoan          Intent = "reply_get_loan"
	IntentReplyCheckEligibility Intent = "reply_check_eligibility"
	IntentReplyMoreDetails      Intent = "reply_more_details"
	IntentOther                 Intent = "other"
)

var replyKeywords = map[string]Intent{
	"get loan":          IntentReplyGetLoan,
	"check eligibility": IntentReplyCheckEligibility,
	"more details":      IntentReplyMoreDetails,
}

// Classify maps free text onto an intent. Reply keywords must match exactly
// after trimming and lower-casing; interest is a plain substring test, so
// "not interested" is still Interested.
func Classify(text string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if intent, ok := replyKeywords[normalized]; ok {
		return intent
	}
	if strings.Contains(normalized, "interested") {
		return IntentInterested
	}
	return IntentOther
}

// IsReply reports whether the intent is one of the reply keywords.
func (i Intent) IsReply() bool {
	_, ok := replyTexts[i]
	return ok
}
