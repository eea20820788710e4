package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

const commentUpdateSubjectFmt = "Enquiry Updated: %s"

var commentUpdateTmpl = template.Must(
	template.New("base.html").ParseFS(templateFS, "templates/base.html", "templates/comment_update.html"),
)

// page fills the base layout; the embedded CommentUpdate feeds the content block.
type page struct {
	Title string
	CommentUpdate
}

func renderCommentUpdate(update CommentUpdate) (string, error) {
	var buf bytes.Buffer
	if err := commentUpdateTmpl.ExecuteTemplate(&buf, "email", page{Title: "Enquiry status updated", CommentUpdate: update}); err != nil {
		return "", fmt.Errorf("render comment update email: %w", err)
	}
	return buf.String(), nil
}

// plainCommentUpdate is the text/plain alternative for mail clients that
// do not render HTML.
func plainCommentUpdate(u CommentUpdate) string {
	whatsapp := "sent"
	if !u.WhatsAppSent {
		whatsapp = "not sent"
		if u.WhatsAppError != "" {
			whatsapp += ": " + u.WhatsAppError
		}
	}
	previous := u.PreviousLabel
	if previous == "" {
		previous = "-"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Customer: %s\n", u.CustomerName)
	fmt.Fprintf(&b, "Mobile: %s\n", u.MobileNumber)
	if u.BusinessNature != "" {
		fmt.Fprintf(&b, "Business nature: %s\n", u.BusinessNature)
	}
	fmt.Fprintf(&b, "Previous status: %s\n", previous)
	fmt.Fprintf(&b, "New status: %s\n", u.Comment)
	fmt.Fprintf(&b, "Changed by: %s\n", u.ChangedBy)
	fmt.Fprintf(&b, "WhatsApp: %s\n", whatsapp)
	return b.String()
}
