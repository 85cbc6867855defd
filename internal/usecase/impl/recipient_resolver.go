package impl

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"time"

	"attribution/config"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/domain/service"
	"attribution/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type recipientResolver struct {
	logger               *slog.Logger
	staffRepo            repository.StaffRepository
	tokenService         service.ResponseTokenService
	validate             *validator.Validate
	professionalTemplate string
}

// RecipientResolverParams holds dependencies for RecipientResolver, injected by Fx.
type RecipientResolverParams struct {
	fx.In

	Logger       *slog.Logger
	StaffRepo    repository.StaffRepository
	TokenService service.ResponseTokenService `optional:"true"`
	Config       *config.Config
}

// NewRecipientResolver creates a new recipient resolver instance
func NewRecipientResolver(params RecipientResolverParams) usecase.RecipientResolver {
	notificationCfg := params.Config.Notification
	if notificationCfg == nil {
		notificationCfg = config.DefaultNotificationConfig()
	}

	return &recipientResolver{
		logger:               params.Logger,
		staffRepo:            params.StaffRepo,
		tokenService:         params.TokenService,
		validate:             validator.New(),
		professionalTemplate: notificationCfg.ProfessionalTemplate,
	}
}

// ResolveBookingRecipients returns the customer email and SMS plus one email per subscribed staff member.
// The customer contacts are validated before anything is returned.
func (r *recipientResolver) ResolveBookingRecipients(ctx context.Context, booking *entity.Booking, trigger entity.Trigger) ([]usecase.Recipient, error) {
	if !trigger.IsBookingTrigger() {
		return nil, domainerrors.ErrInvalidTrigger.WithDetails(string(trigger))
	}

	customerRecipients, err := r.customerRecipients(booking, trigger)
	if err != nil {
		return nil, err
	}

	staff, err := r.staffRepo.FindActiveForTrigger(ctx, trigger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load staff for trigger")
	}

	recipients := customerRecipients
	seen := make(map[string]struct{}, len(staff))
	for _, member := range staff {
		if !member.SubscribedTo(trigger) {
			continue
		}

		email := entity.NormalizeRecipient(entity.ChannelEmail, member.Email)
		if err := r.validate.Var(email, "required,email"); err != nil {
			r.logger.Warn("Skipping staff member without a valid email",
				slog.String("staff_id", member.ID.String()),
				slog.String("trigger", string(trigger)),
			)
			continue
		}
		// One email per person, even when listed twice.
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}

		staffID := member.ID
		payload := booking.FullPayload()
		payload["trigger"] = string(trigger)
		payload["recipient_name"] = member.Name
		payload["department"] = member.Department

		recipients = append(recipients, usecase.Recipient{
			Class:           entity.RecipientClassStaff,
			Channel:         entity.ChannelEmail,
			Address:         email,
			Name:            member.Name,
			TemplateID:      "staff_" + trigger.Purpose(),
			Purpose:         trigger.Purpose(),
			Payload:         payload,
			AttachmentTypes: AttachmentPolicy(trigger, entity.RecipientClassStaff),
			StaffID:         &staffID,
		})
	}

	return recipients, nil
}

func (r *recipientResolver) customerRecipients(booking *entity.Booking, trigger entity.Trigger) ([]usecase.Recipient, error) {
	customer := booking.Customer
	email := entity.NormalizeRecipient(entity.ChannelEmail, customer.Email)
	if err := r.validate.Var(email, "required,email"); err != nil {
		return nil, domainerrors.ErrMissingRecipientContact.WithDetails("customer email of booking " + booking.ID.String())
	}

	name := strings.TrimSpace(customer.FirstName + " " + customer.LastName)
	payload := booking.FullPayload()
	payload["trigger"] = string(trigger)
	payload["recipient_name"] = name

	recipients := []usecase.Recipient{{
		Class:           entity.RecipientClassCustomer,
		Channel:         entity.ChannelEmail,
		Address:         email,
		Name:            name,
		TemplateID:      "customer_" + trigger.Purpose(),
		Purpose:         trigger.Purpose(),
		Payload:         payload,
		AttachmentTypes: AttachmentPolicy(trigger, entity.RecipientClassCustomer),
	}}

	phone := entity.NormalizeRecipient(entity.ChannelSMS, customer.Phone)
	if phone == "" {
		r.logger.Warn("Customer has no phone, SMS skipped",
			slog.String("booking_id", booking.ID.String()),
			slog.String("trigger", string(trigger)),
		)

		return recipients, nil
	}
	if err := r.validate.Var(phone, "e164"); err != nil {
		return nil, domainerrors.ErrMissingRecipientContact.WithDetails("customer phone of booking " + booking.ID.String() + " is not E.164")
	}

	return append(recipients, usecase.Recipient{
		Class:      entity.RecipientClassCustomer,
		Channel:    entity.ChannelSMS,
		Address:    phone,
		Name:       name,
		TemplateID: "customer_sms_" + trigger.Purpose(),
		Purpose:    trigger.Purpose(),
		Payload:    maps.Clone(payload),
	}), nil
}

// ResolveProfessionalRecipients returns the broadcast email and, when a phone is on file, the
// WhatsApp message of one candidate. Both carry the limited client view only.
func (r *recipientResolver) ResolveProfessionalRecipients(
	_ context.Context,
	booking *entity.Booking,
	attribution *entity.Attribution,
	candidate *entity.Eligibility,
	professional *entity.Professional,
) ([]usecase.Recipient, error) {
	email := entity.NormalizeRecipient(entity.ChannelEmail, professional.Email)
	if err := r.validate.Var(email, "required,email"); err != nil {
		return nil, domainerrors.ErrMissingRecipientContact.WithDetails("email of professional " + professional.ID.String())
	}

	payload, err := r.professionalPayload(booking, attribution, candidate, professional)
	if err != nil {
		return nil, err
	}

	professionalID := professional.ID
	purpose := entity.TriggerAttributionBroadcast.Purpose()
	recipients := []usecase.Recipient{{
		Class:           entity.RecipientClassProfessional,
		Channel:         entity.ChannelEmail,
		Address:         email,
		Name:            professional.ContactName,
		TemplateID:      r.professionalTemplate,
		Purpose:         purpose,
		Payload:         payload,
		AttachmentTypes: AttachmentPolicy(entity.TriggerAttributionBroadcast, entity.RecipientClassProfessional),
		ProfessionalID:  &professionalID,
	}}

	if !professional.HasPhone() {
		return recipients, nil
	}

	phone := entity.NormalizeRecipient(entity.ChannelWhatsApp, professional.Phone)
	if err := r.validate.Var(phone, "e164"); err != nil {
		r.logger.Warn("Professional phone is not E.164, WhatsApp skipped",
			slog.String("professional_id", professional.ID.String()),
			slog.String("attribution_id", attribution.ID.String()),
		)

		return recipients, nil
	}

	return append(recipients, usecase.Recipient{
		Class:          entity.RecipientClassProfessional,
		Channel:        entity.ChannelWhatsApp,
		Address:        phone,
		Name:           professional.ContactName,
		TemplateID:     r.professionalTemplate,
		Purpose:        purpose,
		Payload:        maps.Clone(payload),
		ProfessionalID: &professionalID,
	}), nil
}

func (r *recipientResolver) professionalPayload(
	booking *entity.Booking,
	attribution *entity.Attribution,
	candidate *entity.Eligibility,
	professional *entity.Professional,
) (map[string]any, error) {
	payload := entity.NewLimitedClientView(booking).Payload()
	payload["attribution_id"] = attribution.ID.String()
	payload["booking_reference"] = booking.Reference
	payload["company_name"] = professional.CompanyName
	payload["contact_name"] = professional.ContactName
	if candidate != nil {
		payload["distance_km"] = candidate.DistanceKm
	}
	if attribution.BroadcastDeadline != nil {
		payload["respond_before"] = attribution.BroadcastDeadline.UTC().Format(time.RFC3339)
	}

	if r.tokenService == nil {
		return payload, nil
	}

	for key, decision := range map[string]entity.ResponseDecision{
		"accept_url":  entity.ResponseDecisionAccept,
		"decline_url": entity.ResponseDecisionDecline,
	} {
		token, err := r.tokenService.IssueResponseToken(attribution.ID, professional.ID, decision)
		if err != nil {
			return nil, errors.Wrap(err, "failed to issue response token")
		}
		payload[key] = r.tokenService.ResponseURL(token)
	}

	return payload, nil
}
