package whatsapp

import (
	"net/http"
	"strings"
)

// QuotaNotification is shown to staff when the monthly quota ran out.
const QuotaNotification = "⚠️ GreenAPI monthly quota exceeded. Please upgrade your GreenAPI plan to send messages to more numbers."

// FriendlyError turns a failed Result into the message shown in the staff UI.
// Unrecognised failures keep their raw error text.
func FriendlyError(r Result) string {
	if r.Success {
		return ""
	}
	lower := strings.ToLower(r.Error)
	switch {
	case r.QuotaExceeded || r.StatusCode == StatusQuotaExceeded || strings.Contains(lower, "quota exceeded"):
		return "Free plan limit reached - Upgrade GreenAPI plan to send messages to more numbers"
	case r.StatusCode == http.StatusUnauthorized || strings.Contains(lower, "unauthorized"):
		return "GreenAPI authentication failed - Check API credentials"
	case r.StatusCode == http.StatusForbidden:
		return "GreenAPI access forbidden - Check API permissions"
	case r.StatusCode == http.StatusBadRequest:
		return "Invalid phone number format or WhatsApp not available for this number"
	case r.StatusCode == http.StatusNotFound:
		return "GreenAPI endpoint not found - Check API configuration"
	case r.NetworkError:
		return "Network connection error - Check internet connectivity"
	case r.Error == "":
		return "Unknown error"
	default:
		return r.Error
	}
}
