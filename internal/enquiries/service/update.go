package service

import (
	"context"
	"errors"
	"strings"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/repository"
	"enquiry_intake_backend/internal/enquiries/transport"
	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/platform/apperr"
	"enquiry_intake_backend/platform/sanitize"
	"enquiry_intake_backend/platform/validator"

	"github.com/google/uuid"
)

const (
	msgMobileInvalid          = "Mobile number must be 10-15 digits (with country code)"
	msgSecondaryMobileInvalid = "Secondary mobile number must be 10-15 digits (with country code)"
	msgGSTStatusRequired      = "GST status is required when GST is Yes"
	msgNatureRequired         = `Business Nature is required when "Not Eligible" comment is selected`
	msgNameRequired           = "Name is required"
	msgNoChanges              = "No changes made"
	msgRecordLocked           = "Staff assignment is locked. Cannot change assigned staff member."
)

// Update applies a staff edit. Both staff gates run before anything is
// written; the WhatsApp side effects run after the write and never undo it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateEnquiryRequest, actor string) (transport.SavedEnquiryResponse, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return transport.SavedEnquiryResponse{}, err
	}

	if err := validateUpdate(current, req); err != nil {
		return transport.SavedEnquiryResponse{}, err
	}

	params := s.buildPatch(req, actor)
	if params.IsEmpty() {
		return transport.SavedEnquiryResponse{}, apperr.BadRequest(msgNoChanges)
	}

	staffAssigned := false
	if params.Staff != nil {
		next := *params.Staff
		if domain.RecordLockRejects(current, next) {
			return transport.SavedEnquiryResponse{}, apperr.Locked(msgRecordLocked)
		}
		if next.IsHuman() && !next.Equal(current.Staff) {
			status, err := s.LockStatus(ctx)
			if err != nil {
				return transport.SavedEnquiryResponse{}, err
			}
			if !domain.CanAssign(current, status, s.now()) {
				return transport.SavedEnquiryResponse{}, apperr.Locked(status.Reason)
			}
			staffAssigned = true
		}
	}

	updated, err := s.repo.UpdateByID(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.SavedEnquiryResponse{}, apperr.NotFound(msgEnquiryNotFound)
		}
		return transport.SavedEnquiryResponse{}, err
	}

	s.log.Info("enquiry updated", "enquiryId", id, "actor", actor, "staffAssigned", staffAssigned)
	resp := transport.SavedEnquiryResponse{EnquiryResponse: transport.ToResponse(updated)}

	if req.Comments != nil && commentChanged(current, updated) {
		key := domain.ResolveTemplate(updated.CommentLabel())
		s.bus.Publish(ctx, events.EnquiryCommentChanged{
			BaseEvent:      events.NewBaseEvent(),
			EnquiryID:      updated.ID,
			DisplayName:    updated.DisplayName,
			MobileNumber:   updated.MobileNumber,
			BusinessNature: updated.BusinessNatureOr(""),
			PreviousLabel:  current.CommentLabel(),
			Comment:        updated.CommentLabel(),
			TemplateKey:    string(key),
			ChangedBy:      actor,
		})
		resp.WhatsAppMessageType = string(key)
		resp.NotificationQueued = true
	}

	if staffAssigned {
		outcome, sent := s.sendStaffIntroduction(ctx, updated)
		resp.WhatsAppSent = outcome.WhatsAppSent
		resp.WhatsAppError = outcome.WhatsAppError
		resp.WhatsAppQuotaExceeded = outcome.WhatsAppQuotaExceeded
		resp.WhatsAppNotification = outcome.WhatsAppNotification
		resp.OutboundMessageID = outcome.OutboundMessageID

		s.bus.Publish(ctx, events.EnquiryStaffAssigned{
			BaseEvent:     events.NewBaseEvent(),
			EnquiryID:     updated.ID,
			Staff:         updated.Staff.String(),
			PreviousStaff: current.Staff.String(),
			AssignedBy:    actor,
			MessagesSent:  sent,
		})
	}

	return resp, nil
}

func validateUpdate(current domain.Enquiry, req transport.UpdateEnquiryRequest) error {
	if req.DisplayName != nil && strings.TrimSpace(*req.DisplayName) == "" {
		return apperr.Validation(msgNameRequired)
	}
	if req.MobileNumber != nil && !validator.IsMobileNumber(*req.MobileNumber) {
		return apperr.Validation(msgMobileInvalid)
	}
	if req.SecondaryMobileNumber != nil && strings.TrimSpace(*req.SecondaryMobileNumber) != "" &&
		!validator.IsMobileNumber(*req.SecondaryMobileNumber) {
		return apperr.Validation(msgSecondaryMobileInvalid)
	}

	gst := current.GST
	if req.GST != nil {
		gst = domain.ParseGST(*req.GST)
	}
	gstStatus := derefTrim(current.GSTStatus)
	if req.GSTStatus != nil {
		gstStatus = strings.TrimSpace(*req.GSTStatus)
	}
	if gst == domain.GSTYes && gstStatus == "" {
		return apperr.Validation(msgGSTStatusRequired)
	}

	if req.Comments != nil && strings.TrimSpace(*req.Comments) == domain.NotEligibleComment {
		nature := derefTrim(current.BusinessNature)
		if req.BusinessNature != nil {
			nature = strings.TrimSpace(*req.BusinessNature)
		}
		if nature == "" {
			return apperr.Validation(msgNatureRequired)
		}
	}
	return nil
}

func (s *Service) buildPatch(req transport.UpdateEnquiryRequest, actor string) repository.UpdateParams {
	var p repository.UpdateParams

	if req.Date != nil {
		d := parseDate(*req.Date, s.now().UTC())
		p.Date = &d
	}
	if req.DisplayName != nil {
		name := sanitize.Text(*req.DisplayName)
		p.DisplayName = &name
	}
	if req.UserName != nil {
		p.UserName = repository.SetString(sanitize.OptionalText(*req.UserName))
	}
	if req.MobileNumber != nil {
		mobile := strings.TrimSpace(*req.MobileNumber)
		p.MobileNumber = &mobile
	}
	if req.SecondaryMobileNumber != nil {
		p.SecondaryMobileNumber = repository.SetString(sanitize.Optional(*req.SecondaryMobileNumber))
	}
	if req.GST != nil {
		gst := domain.ParseGST(*req.GST)
		p.GST = &gst
	}
	if req.GSTStatus != nil {
		p.GSTStatus = repository.SetString(sanitize.OptionalText(*req.GSTStatus))
	}
	if req.BusinessType != nil {
		p.BusinessType = repository.SetString(sanitize.OptionalText(*req.BusinessType))
	}
	if req.BusinessNature != nil {
		p.BusinessNature = repository.SetString(sanitize.OptionalText(*req.BusinessNature))
	}
	if req.Staff != nil {
		owner := domain.ParseOwner(*req.Staff)
		locked := owner.IsHuman()
		p.Staff = &owner
		p.StaffLocked = &locked
	}
	if req.Comments != nil {
		p.Comments = repository.SetString(sanitize.OptionalText(*req.Comments))
	}
	if req.AdditionalComments != nil {
		p.AdditionalComments = repository.SetString(sanitize.OptionalText(*req.AdditionalComments))
	}

	if !p.IsEmpty() {
		by := actor
		p.UpdatedBy = &by
	}
	return p
}

// commentChanged compares the trimmed labels. Clearing a label counts as a
// change and resolves to the default template.
func commentChanged(before, after domain.Enquiry) bool {
	return after.CommentLabel() != before.CommentLabel()
}

func derefTrim(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
