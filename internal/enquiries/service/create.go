package service

import (
	"context"
	"strings"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/transport"
	"enquiry_intake_backend/platform/apperr"
	"enquiry_intake_backend/platform/phone"
	"enquiry_intake_backend/platform/sanitize"
	"enquiry_intake_backend/platform/validator"
)

const defaultPublicComment = "New Public Enquiry"

// Create stores an enquiry typed in by staff. The assignment lock is not
// consulted: a new record is never old, and entering it already names its owner.
func (s *Service) Create(ctx context.Context, req transport.CreateEnquiryRequest, actor string) (transport.SavedEnquiryResponse, error) {
	gst := domain.ParseGST(req.GST)
	if gst == domain.GSTYes && (req.GSTStatus == nil || strings.TrimSpace(*req.GSTStatus) == "") {
		return transport.SavedEnquiryResponse{}, apperr.Validation(msgGSTStatusRequired)
	}

	now := s.now().UTC()
	date := now
	if req.Date != nil {
		date = parseDate(*req.Date, now)
	}

	owner := domain.ParseOwner(req.Staff)
	comment := sanitize.Text(req.Comments)
	e := domain.Enquiry{
		DisplayName:           sanitize.Text(req.DisplayName),
		UserName:              optionalText(req.UserName),
		MobileNumber:          strings.TrimSpace(req.MobileNumber),
		SecondaryMobileNumber: optionalRaw(req.SecondaryMobileNumber),
		GST:                   gst,
		GSTStatus:             optionalText(req.GSTStatus),
		BusinessType:          optionalText(req.BusinessType),
		BusinessNature:        optionalText(req.BusinessNature),
		Source:                domain.SourceStaffEntry,
		Staff:                 owner,
		StaffLocked:           owner.IsHuman(),
		Comments:              &comment,
		AdditionalComments:    optionalText(req.AdditionalComments),
		Date:                  date,
		CreatedAt:             now,
		UpdatedAt:             now,
		UpdatedBy:             &actor,
	}

	stored, err := s.repo.Create(ctx, e)
	if err != nil {
		return transport.SavedEnquiryResponse{}, err
	}

	s.log.Info("enquiry created", "enquiryId", stored.ID, "source", stored.Source, "actor", actor)
	s.publishCreated(ctx, stored)
	return transport.SavedEnquiryResponse{EnquiryResponse: transport.ToResponse(stored)}, nil
}

// CreatePublic stores a website form submission and greets the customer on
// WhatsApp. A failed greeting is reported, the enquiry stays stored.
func (s *Service) CreatePublic(ctx context.Context, req transport.PublicEnquiryRequest) (transport.SavedEnquiryResponse, error) {
	name := sanitize.Text(req.DisplayName)
	if name == "" {
		return transport.SavedEnquiryResponse{}, apperr.Validation(msgNameRequired)
	}

	mobile := phone.NormalizeDigits(req.MobileNumber)
	if !validator.IsMobileNumber(mobile) {
		return transport.SavedEnquiryResponse{}, apperr.Validation(msgMobileInvalid)
	}

	var secondary *string
	if req.SecondaryMobileNumber != nil && strings.TrimSpace(*req.SecondaryMobileNumber) != "" {
		digits := phone.NormalizeDigits(*req.SecondaryMobileNumber)
		if !validator.IsMobileNumber(digits) {
			return transport.SavedEnquiryResponse{}, apperr.Validation(msgSecondaryMobileInvalid)
		}
		secondary = &digits
	}

	comment := defaultPublicComment
	if req.Comments != nil {
		if c := sanitize.Text(*req.Comments); c != "" {
			comment = c
		}
	}

	gst := domain.GSTUnset
	if req.GST != nil {
		gst = domain.ParseGST(*req.GST)
	}

	now := s.now().UTC()
	userName := name
	e := domain.Enquiry{
		DisplayName:           name,
		UserName:              &userName,
		MobileNumber:          mobile,
		SecondaryMobileNumber: secondary,
		GST:                   gst,
		BusinessNature:        optionalText(req.BusinessNature),
		Source:                domain.SourcePublicForm,
		Staff:                 domain.System(domain.SystemPublicForm),
		Comments:              &comment,
		Date:                  now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	stored, err := s.repo.Create(ctx, e)
	if err != nil {
		return transport.SavedEnquiryResponse{}, err
	}
	s.log.Info("public enquiry created", "enquiryId", stored.ID, "mobile", stored.MobileNumber)
	s.publishCreated(ctx, stored)

	key := domain.ResolveTemplate(comment)
	if key == domain.TemplateNewEnquiry {
		key = domain.TemplateNewEnquiryPublicForm
	}
	res := s.gateway.Send(ctx, phone.ToChatID(stored.MobileNumber), domain.Render(key, stored.DisplayName, stored.BusinessNatureOr("")))

	resp := transport.SavedEnquiryResponse{EnquiryResponse: transport.ToResponse(stored)}
	resp.ApplyResult(res)
	resp.WhatsAppMessageType = string(key)
	if res.Success {
		resp.WhatsAppNotification = "WhatsApp message sent successfully"
	}
	return resp, nil
}

func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	return sanitize.OptionalText(*s)
}

func optionalRaw(s *string) *string {
	if s == nil {
		return nil
	}
	return sanitize.Optional(*s)
}
