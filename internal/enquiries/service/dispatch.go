package service

import (
	"context"
	"fmt"
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/transport"
	"enquiry_intake_backend/internal/whatsapp"
	"enquiry_intake_backend/platform/phone"
)

// sendStaffIntroduction sends the three introduction messages in order with
// the configured pause between them. The sequence stops at the first failure.
func (s *Service) sendStaffIntroduction(ctx context.Context, e domain.Enquiry) (transport.DispatchOutcome, int) {
	destination := phone.ToChatID(e.MobileNumber)
	messages := domain.StaffIntroductionMessages(e.Staff.Name)

	var (
		last whatsapp.Result
		sent int
	)
	for i, text := range messages {
		if i > 0 {
			if err := sleep(ctx, s.staffDelay); err != nil {
				last = whatsapp.Result{Error: err.Error()}
				break
			}
		}
		last = s.gateway.Send(ctx, destination, text)
		if !last.Success {
			s.log.Warn("staff introduction stopped", "enquiryId", e.ID, "message", i+1, "error", last.Error)
			break
		}
		sent++
	}

	var outcome transport.DispatchOutcome
	outcome.ApplyResult(last)
	if last.Success {
		outcome.WhatsAppNotification = fmt.Sprintf("✅ %d WhatsApp messages sent successfully to %s", sent, e.DisplayName)
		return outcome, sent
	}

	msg := "Staff assignment messages failed: " + whatsapp.FriendlyError(last)
	outcome.WhatsAppError = &msg
	return outcome, sent
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
