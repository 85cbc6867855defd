package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"attribution/config"
	deliverycontext "attribution/internal/delivery/context"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/domain/service"
	"attribution/internal/errors"
	"attribution/internal/usecase"
	"attribution/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// defaultFlightTimeout bounds one coalesced trigger or broadcast run.
const defaultFlightTimeout = 2 * time.Minute

type orchestrator struct {
	logger           *slog.Logger
	bookingRepo      repository.BookingRepository
	professionalRepo repository.ProfessionalRepository
	matcher          usecase.GeoMatcher
	ledger           usecase.EligibilityLedger
	stateMachine     usecase.AttributionStateMachine
	resolver         usecase.RecipientResolver
	notifications    usecase.NotificationUsecase
	reminders        usecase.ReminderScheduler
	documentGen      service.DocumentGenerator
	publisher        service.EventPublisher
	locker           service.Locker
	qrService        service.QRCodeService
	validate         *validator.Validate
	flight           singleflight.Group
	fanOutWorkers    int
	flightTimeout    time.Duration
	maxAttachments   int64
	now              func() time.Time
}

// OrchestratorParams holds dependencies for the orchestration entrypoint, injected by Fx.
type OrchestratorParams struct {
	fx.In

	Logger           *slog.Logger
	Config           *config.Config
	BookingRepo      repository.BookingRepository
	ProfessionalRepo repository.ProfessionalRepository
	Matcher          usecase.GeoMatcher
	Ledger           usecase.EligibilityLedger
	StateMachine     usecase.AttributionStateMachine
	Resolver         usecase.RecipientResolver
	Notifications    usecase.NotificationUsecase
	Reminders        usecase.ReminderScheduler
	DocumentGen      service.DocumentGenerator
	Publisher        service.EventPublisher `optional:"true"`
	Locker           service.Locker         `optional:"true"`
	QRService        service.QRCodeService  `optional:"true"`
}

// NewOrchestrator creates the orchestration entrypoint
func NewOrchestrator(params OrchestratorParams) usecase.OrchestrationUsecase {
	notificationCfg := params.Config.Notification
	if notificationCfg == nil {
		notificationCfg = config.DefaultNotificationConfig()
	}
	workers := notificationCfg.FanOutWorkers
	if workers <= 0 {
		workers = config.DefaultNotificationConfig().FanOutWorkers
	}

	return &orchestrator{
		logger:           params.Logger,
		bookingRepo:      params.BookingRepo,
		professionalRepo: params.ProfessionalRepo,
		matcher:          params.Matcher,
		ledger:           params.Ledger,
		stateMachine:     params.StateMachine,
		resolver:         params.Resolver,
		notifications:    params.Notifications,
		reminders:        params.Reminders,
		documentGen:      params.DocumentGen,
		publisher:        params.Publisher,
		locker:           params.Locker,
		qrService:        params.QRService,
		validate:         validator.New(),
		fanOutWorkers:    workers,
		flightTimeout:    defaultFlightTimeout,
		maxAttachments:   notificationCfg.MaxProfessionalAttachmentBytes,
		now:              time.Now,
	}
}

// coalesce runs fn once for concurrent callers of key. Callers that join a running
// call wait on it too, so the call keeps the first caller's values but not its
// cancellation, and is bounded by flightTimeout instead.
func (o *orchestrator) coalesce(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	return o.flight.Do(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.flightTimeout)
		defer cancel()

		return fn(callCtx)
	})
}

func (o *orchestrator) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, o.logger)
}

// OnBookingTrigger notifies the customer and the subscribed staff of a booking event,
// then schedules the customer reminders.
func (o *orchestrator) OnBookingTrigger(ctx context.Context, bookingID uuid.UUID, trigger entity.Trigger, opts usecase.TriggerOptions) (*usecase.TriggerReport, error) {
	if bookingID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("booking id is required")
	}
	if !trigger.IsBookingTrigger() {
		return nil, domainerrors.ErrInvalidTrigger.WithDetails(string(trigger))
	}

	flightKey := fmt.Sprintf("trigger:%s:%s:%t:%t", bookingID, trigger, opts.SkipStaff, opts.SkipReminders)
	value, err, shared := o.coalesce(ctx, flightKey, func(ctx context.Context) (any, error) {
		return o.onBookingTrigger(ctx, bookingID, trigger, opts)
	})
	if shared {
		o.log(ctx).Debug("Coalesced concurrent booking trigger", slog.String("key", flightKey))
	}

	report, _ := value.(*usecase.TriggerReport)

	return report, err
}

func (o *orchestrator) onBookingTrigger(ctx context.Context, bookingID uuid.UUID, trigger entity.Trigger, opts usecase.TriggerOptions) (*usecase.TriggerReport, error) {
	logger := o.log(ctx).With(
		slog.String("booking_id", bookingID.String()),
		slog.String("trigger", string(trigger)),
	)

	booking, err := o.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Recipients are validated before anything is written.
	recipients, err := o.resolver.ResolveBookingRecipients(ctx, booking, trigger)
	if err != nil {
		return nil, err
	}
	if opts.SkipStaff {
		recipients = withoutClass(recipients, entity.RecipientClassStaff)
	}

	var documents []entity.Document
	if needsAttachments(recipients) {
		documents, err = o.documentGen.GenerateDocuments(ctx, bookingID, trigger)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate documents")
		}
	}

	report := &usecase.TriggerReport{BookingID: bookingID, Trigger: trigger}

	if trigger == entity.TriggerBookingCancelled {
		if err := o.cancelBooking(ctx, bookingID, report); err != nil {
			return nil, err
		}
	}

	bookingScopeID := booking.ID
	requests := make([]usecase.DeliveryRequest, 0, len(recipients))
	for _, recipient := range recipients {
		meta := entity.NotificationMetadata{
			BookingID: &bookingScopeID,
			StaffID:   recipient.StaffID,
			Trigger:   trigger,
			Source:    "booking_trigger",
		}
		requests = append(requests, newDeliveryRequest(entity.DedupScopeBooking, booking.ID, recipient, meta,
			SelectDocuments(documents, recipient.AttachmentTypes)))
	}

	deliveries, deliverErr := o.deliverAll(ctx, requests)
	report.Deliveries = deliveries

	if !opts.SkipReminders && trigger.SchedulesCustomerReminders() {
		created, err := o.reminders.ScheduleCustomerReminders(ctx, booking)
		if err != nil {
			deliverErr = errors.Join(deliverErr, err)
		}
		report.RemindersCreated = len(created)
	}

	counts := countOutcomes(deliveries)
	logger.Info("Booking trigger handled",
		slog.Int("sent", counts[entity.DispatchOutcomeSent]),
		slog.Int("failed", counts[entity.DispatchOutcomeFailed]),
		slog.Int("already_exists", counts[entity.DispatchOutcomeAlreadyExists]),
		slog.Int("reminders_created", report.RemindersCreated),
		slog.Int64("reminders_cancelled", report.RemindersCancelled),
		slog.String("attachments", util.FormatBytes(totalSize(documents))),
	)

	return report, deliverErr
}

// cancelBooking stops the active broadcast of the booking and its pending reminders.
// Sends already started are not interrupted.
func (o *orchestrator) cancelBooking(ctx context.Context, bookingID uuid.UUID, report *usecase.TriggerReport) error {
	active, err := o.stateMachine.FindActive(ctx, bookingID)
	switch {
	case err == nil:
		cancelled, cancelErr := o.stateMachine.Cancel(ctx, active.ID)
		switch {
		case cancelErr == nil:
			report.CancelledAttributions = append(report.CancelledAttributions, cancelled.ID)
			o.publish(ctx, cancelled, nil, 0)
		case domainerrors.IsStateConflict(cancelErr):
			o.log(ctx).Warn("Attribution finalized before cancellation",
				slog.String("attribution_id", active.ID.String()),
				slog.Any("error", cancelErr),
			)
		default:
			return cancelErr
		}
	case !errors.Is(err, domainerrors.ErrAttributionNotFound):
		return err
	}

	cancelledReminders, err := o.reminders.CancelBookingReminders(ctx, bookingID)
	if err != nil {
		return err
	}
	report.RemindersCancelled = cancelledReminders

	return nil
}

// StartAttribution opens or reuses the broadcast round of a booking and notifies every eligible professional.
func (o *orchestrator) StartAttribution(ctx context.Context, req usecase.StartAttributionRequest) (*usecase.StartAttributionResult, error) {
	if err := o.validate.Struct(req); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}
	if !req.ServiceLocation.Valid() {
		return nil, domainerrors.ErrInvalidCoordinates
	}

	value, err, shared := o.coalesce(ctx, "attribution:"+req.BookingID.String(), func(ctx context.Context) (any, error) {
		return o.startAttribution(ctx, req)
	})
	if shared {
		o.log(ctx).Debug("Coalesced concurrent attribution start", slog.String("booking_id", req.BookingID.String()))
	}

	result, _ := value.(*usecase.StartAttributionResult)

	return result, err
}

func (o *orchestrator) startAttribution(ctx context.Context, req usecase.StartAttributionRequest) (*usecase.StartAttributionResult, error) {
	logger := o.log(ctx).With(slog.String("booking_id", req.BookingID.String()))

	if o.locker != nil {
		release, acquired, err := o.locker.TryAcquire(ctx, "attribution:"+req.BookingID.String())
		switch {
		case err != nil:
			logger.Warn("Broadcast lease unavailable, continuing without it", slog.Any("error", err))
		case !acquired:
			return o.inProgress(ctx, req.BookingID)
		default:
			defer release()
		}
	}

	booking := req.Booking
	if booking == nil {
		loaded, err := o.bookingRepo.FindByID(ctx, req.BookingID)
		if err != nil {
			return nil, err
		}
		booking = loaded
	}
	if booking.IsCancelled() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("booking is cancelled")
	}

	attribution, created, err := o.stateMachine.OpenRound(ctx, usecase.OpenRoundRequest{
		BookingID:       req.BookingID,
		ServiceType:     req.ServiceType,
		ServiceLocation: req.ServiceLocation,
		MaxRadiusKm:     req.MaxRadiusKm,
	})
	if err != nil {
		return nil, err
	}

	result := &usecase.StartAttributionResult{
		AttributionID: attribution.ID,
		Status:        attribution.Status,
		Reused:        !created,
	}
	logger = logger.With(slog.String("attribution_id", attribution.ID.String()))

	transitioned := false
	if attribution.Status == entity.AttributionStatusPending {
		candidates, err := o.matcher.FindCandidates(ctx, usecase.MatchQuery{
			ServiceLocation: attribution.ServiceLocation,
			ServiceType:     attribution.ServiceType,
			MaxRadiusKm:     attribution.MaxRadiusKm,
		})
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			logger.Info("No candidates for attribution")
			result.Outcome = usecase.AttributionOutcomeNoCandidates

			return result, nil
		}

		// Every eligibility row exists before the first notified flag is set.
		if _, err := o.ledger.RecordCandidates(ctx, attribution.ID, candidates); err != nil {
			return nil, err
		}

		attribution, transitioned, err = o.stateMachine.BeginBroadcast(ctx, attribution.ID)
		if err != nil {
			if domainerrors.IsStateConflict(err) && attribution != nil {
				logger.Warn("Attribution finalized before broadcast", slog.Any("error", err))
				result.Status = attribution.Status
				result.Outcome = usecase.AttributionOutcomeFinalized

				return result, nil
			}

			return nil, err
		}
		result.Status = attribution.Status
	}

	if attribution.Status != entity.AttributionStatusBroadcasting {
		result.Outcome = usecase.AttributionOutcomeFinalized

		return result, nil
	}

	rows, err := o.eligibleRows(ctx, attribution.ID)
	if err != nil {
		return nil, err
	}
	result.EligibleCount = len(rows)

	if transitioned {
		o.publish(ctx, attribution, nil, len(rows))
	}

	deliveries, broadcastErr := o.broadcast(ctx, booking, attribution, rows)
	result.Deliveries = deliveries
	result.Outcome = usecase.AttributionOutcomeBroadcast

	counts := countOutcomes(deliveries)
	logger.Info("Attribution broadcast",
		slog.Int("eligible", len(rows)),
		slog.Bool("resumed", !transitioned),
		slog.Int("sent", counts[entity.DispatchOutcomeSent]),
		slog.Int("failed", counts[entity.DispatchOutcomeFailed]),
		slog.Int("already_exists", counts[entity.DispatchOutcomeAlreadyExists]),
	)

	return result, broadcastErr
}

func (o *orchestrator) inProgress(ctx context.Context, bookingID uuid.UUID) (*usecase.StartAttributionResult, error) {
	result := &usecase.StartAttributionResult{Outcome: usecase.AttributionOutcomeInProgress, Reused: true}

	active, err := o.stateMachine.FindActive(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAttributionNotFound) {
			return result, nil
		}

		return nil, err
	}

	result.AttributionID = active.ID
	result.Status = active.Status
	if rows, err := o.eligibleRows(ctx, active.ID); err == nil {
		result.EligibleCount = len(rows)
	}

	return result, nil
}

func (o *orchestrator) eligibleRows(ctx context.Context, attributionID uuid.UUID) ([]*entity.Eligibility, error) {
	rows, err := o.ledger.Candidates(ctx, attributionID)
	if err != nil {
		return nil, err
	}

	eligible := rows[:0:0]
	for _, row := range rows {
		if row.IsEligible {
			eligible = append(eligible, row)
		}
	}

	return eligible, nil
}

// broadcast notifies every candidate in parallel. The attribution status is checked
// before each candidate so that a cancelled round stops notifying new professionals.
func (o *orchestrator) broadcast(ctx context.Context, booking *entity.Booking, attribution *entity.Attribution, rows []*entity.Eligibility) ([]*entity.DispatchResult, error) {
	missionBrief := o.missionBrief(ctx, booking)

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results = make([][]*entity.DispatchResult, len(rows))
		errs    []error
	)
	g.SetLimit(o.fanOutWorkers)

	for i, row := range rows {
		g.Go(func() error {
			delivered, err := o.notifyCandidate(ctx, booking, attribution.ID, row, missionBrief)
			results[i] = delivered
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}

			return nil
		})
	}
	_ = g.Wait()

	var deliveries []*entity.DispatchResult
	for _, delivered := range results {
		deliveries = append(deliveries, delivered...)
	}

	return deliveries, errors.Join(errs...)
}

func (o *orchestrator) notifyCandidate(
	ctx context.Context,
	booking *entity.Booking,
	attributionID uuid.UUID,
	row *entity.Eligibility,
	missionBrief []entity.Document,
) ([]*entity.DispatchResult, error) {
	logger := o.log(ctx).With(
		slog.String("attribution_id", attributionID.String()),
		slog.String("professional_id", row.ProfessionalID.String()),
	)

	current, err := o.stateMachine.Get(ctx, attributionID)
	if err != nil {
		return nil, err
	}
	if current.Status != entity.AttributionStatusBroadcasting {
		logger.Info("Attribution no longer broadcasting, candidate skipped", slog.String("status", string(current.Status)))

		return nil, nil
	}

	professional, err := o.professionalRepo.FindByID(ctx, row.ProfessionalID)
	if err != nil {
		return nil, err
	}

	recipients, err := o.resolver.ResolveProfessionalRecipients(ctx, booking, current, row, professional)
	if err != nil {
		if domainerrors.IsValidation(err) {
			logger.Warn("Professional skipped", slog.Any("error", err))

			return nil, nil
		}

		return nil, err
	}

	attributionScopeID := current.ID
	bookingID := booking.ID
	var deliveries []*entity.DispatchResult
	emailSent := false
	for _, recipient := range recipients {
		// WhatsApp only nudges a professional whose broadcast email went out.
		if recipient.Channel == entity.ChannelWhatsApp && !emailSent {
			logger.Info("Broadcast email not sent, WhatsApp skipped")

			continue
		}

		var attachments []entity.Document
		if recipient.Channel == entity.ChannelEmail {
			attachments = o.professionalAttachments(logger, recipient, missionBrief)
		}

		meta := entity.NotificationMetadata{
			BookingID:      &bookingID,
			AttributionID:  &attributionScopeID,
			ProfessionalID: recipient.ProfessionalID,
			Trigger:        entity.TriggerAttributionBroadcast,
			Source:         "attribution_broadcast",
		}
		result, err := o.notifications.Deliver(ctx, newDeliveryRequest(entity.DedupScopeAttribution, current.ID, recipient, meta, attachments))
		if err != nil {
			return deliveries, err
		}
		deliveries = append(deliveries, result)

		if recipient.Channel == entity.ChannelEmail && result.Status == entity.NotificationStatusSent {
			emailSent = true
			if err := o.ledger.MarkNotified(ctx, current.ID, professional.ID); err != nil {
				return deliveries, err
			}
		}
	}

	return deliveries, nil
}

// missionBrief asks the document collaborator for the redacted brief once per broadcast.
func (o *orchestrator) missionBrief(ctx context.Context, booking *entity.Booking) []entity.Document {
	docs, err := o.documentGen.GenerateDocuments(ctx, booking.ID, entity.TriggerAttributionBroadcast)
	if err != nil {
		o.log(ctx).Warn("Mission brief unavailable, broadcasting without it",
			slog.String("booking_id", booking.ID.String()),
			slog.Any("error", err),
		)

		return nil
	}

	return SelectDocuments(docs, []entity.DocumentType{entity.DocumentTypeMissionBrief})
}

// professionalAttachments adds the accept link QR code and keeps the set within the size bound.
func (o *orchestrator) professionalAttachments(logger *slog.Logger, recipient usecase.Recipient, missionBrief []entity.Document) []entity.Document {
	docs := append([]entity.Document(nil), missionBrief...)

	if acceptURL, ok := recipient.Payload["accept_url"].(string); ok && acceptURL != "" && o.qrService != nil {
		png, err := o.qrService.GenerateLinkQR(acceptURL)
		if err != nil {
			logger.Warn("Failed to render response QR code", slog.Any("error", err))
		} else {
			docs = append(docs, entity.Document{
				Type:        entity.DocumentTypeResponseQRCode,
				Filename:    "accept.png",
				ContentType: "image/png",
				Content:     png,
			})
		}
	}

	kept, dropped := BoundAttachments(SelectDocuments(docs, recipient.AttachmentTypes), o.maxAttachments)
	for _, doc := range dropped {
		logger.Warn("Attachment dropped, size bound exceeded",
			slog.String("document_type", string(doc.Type)),
			slog.String("size", util.FormatBytes(doc.Size())),
			slog.String("bound", util.FormatBytes(o.maxAttachments)),
		)
	}

	return kept
}

// RecordProfessionalResponse stores a professional's answer and applies first-accept-wins.
func (o *orchestrator) RecordProfessionalResponse(ctx context.Context, attributionID, professionalID uuid.UUID, accepted bool) (*usecase.ResponseResult, error) {
	logger := o.log(ctx).With(
		slog.String("attribution_id", attributionID.String()),
		slog.String("professional_id", professionalID.String()),
	)

	attribution, err := o.stateMachine.Get(ctx, attributionID)
	if err != nil {
		return nil, err
	}

	if _, err := o.ledger.MarkResponded(ctx, attributionID, professionalID, accepted); err != nil {
		return nil, err
	}

	result := &usecase.ResponseResult{
		AttributionID:  attributionID,
		ProfessionalID: professionalID,
		Status:         attribution.Status,
	}

	if !accepted {
		logger.Info("Professional declined")
		result.Outcome = usecase.ResponseOutcomeDeclined

		return result, nil
	}

	outcome, err := o.stateMachine.Accept(ctx, attributionID, professionalID)
	if err != nil {
		if !domainerrors.IsStateConflict(err) {
			return nil, err
		}
		if outcome != nil && outcome.Attribution != nil {
			result.Status = outcome.Attribution.Status
		}
		result.Outcome = usecase.ResponseOutcomeNoOp
		result.Warning = err.Error()

		return result, nil
	}

	result.Status = outcome.Attribution.Status
	if outcome.Superseded {
		result.Outcome = usecase.ResponseOutcomeSuperseded

		return result, nil
	}

	result.Outcome = usecase.ResponseOutcomeAccepted
	if !outcome.Repeated {
		o.publish(ctx, outcome.Attribution, &professionalID, 0)
	}

	created, err := o.onAccepted(ctx, outcome.Attribution)
	result.RemindersCreated = created
	if err != nil {
		logger.Error("Follow-up of accepted attribution failed", slog.Any("error", err))
		result.Warning = err.Error()
	}

	return result, nil
}

// onAccepted schedules the professional reminders and tells the customer a professional was assigned.
func (o *orchestrator) onAccepted(ctx context.Context, attribution *entity.Attribution) (int, error) {
	booking, err := o.bookingRepo.FindByID(ctx, attribution.BookingID)
	if err != nil {
		return 0, err
	}

	reminders, err := o.reminders.ScheduleProfessionalReminders(ctx, booking, attribution)
	if err != nil {
		return len(reminders), err
	}

	if _, err := o.OnBookingTrigger(ctx, booking.ID, entity.TriggerProfessionalAssigned, usecase.TriggerOptions{SkipReminders: true}); err != nil {
		return len(reminders), errors.Wrap(err, "failed to notify professional assignment")
	}

	return len(reminders), nil
}

// CancelAttribution cancels an active attribution.
func (o *orchestrator) CancelAttribution(ctx context.Context, attributionID uuid.UUID) (*entity.Attribution, error) {
	attribution, err := o.stateMachine.Cancel(ctx, attributionID)
	if err != nil {
		return attribution, err
	}

	o.publish(ctx, attribution, nil, 0)

	return attribution, nil
}

// ExpireStaleAttributions expires every broadcast whose window elapsed.
func (o *orchestrator) ExpireStaleAttributions(ctx context.Context) (int, error) {
	expired, err := o.stateMachine.ExpireStale(ctx, o.now())
	for _, attribution := range expired {
		o.publish(ctx, attribution, nil, 0)
	}

	return len(expired), err
}

// publish emits a lifecycle event. Failures are logged and never undo the transition.
func (o *orchestrator) publish(ctx context.Context, attribution *entity.Attribution, professionalID *uuid.UUID, eligibleCount int) {
	if o.publisher == nil {
		return
	}

	event := &service.AttributionEvent{
		RequestID:     deliverycontext.GetRequestIDFromContext(ctx),
		AttributionID: attribution.ID.String(),
		BookingID:     attribution.BookingID.String(),
		Status:        string(attribution.Status),
		EligibleCount: eligibleCount,
		OccurredAt:    o.now(),
	}
	if professionalID != nil {
		event.ProfessionalID = professionalID.String()
	}

	if err := o.publisher.PublishAttributionEvent(ctx, event); err != nil {
		o.log(ctx).Warn("Failed to publish attribution event",
			slog.String("attribution_id", event.AttributionID),
			slog.String("status", event.Status),
			slog.Any("error", err),
		)
	}
}

// deliverAll runs the deliveries in parallel. A failing delivery never stops the others.
func (o *orchestrator) deliverAll(ctx context.Context, requests []usecase.DeliveryRequest) ([]*entity.DispatchResult, error) {
	var (
		g       errgroup.Group
		mu      sync.Mutex
		results = make([]*entity.DispatchResult, len(requests))
		errs    []error
	)
	g.SetLimit(o.fanOutWorkers)

	for i, req := range requests {
		g.Go(func() error {
			result, err := o.notifications.Deliver(ctx, req)
			if err != nil {
				mu.Lock()
				errs = append(errs, errors.Wrapf(err, "deliver %s", req.Key.Channel))
				mu.Unlock()

				return nil
			}
			results[i] = result

			return nil
		})
	}
	_ = g.Wait()

	delivered := make([]*entity.DispatchResult, 0, len(results))
	for _, result := range results {
		if result != nil {
			delivered = append(delivered, result)
		}
	}

	return delivered, errors.Join(errs...)
}

func newDeliveryRequest(
	scope entity.DedupScope,
	scopeID uuid.UUID,
	recipient usecase.Recipient,
	meta entity.NotificationMetadata,
	attachments []entity.Document,
) usecase.DeliveryRequest {
	var subject string
	if recipient.Class == entity.RecipientClassProfessional && recipient.ProfessionalID != nil {
		subject = entity.ProfessionalSubject(*recipient.ProfessionalID)
	}

	return usecase.DeliveryRequest{
		Key: entity.DedupKey{
			Scope:     scope,
			ScopeID:   scopeID,
			Recipient: recipient.Address,
			Subject:   subject,
			Channel:   recipient.Channel,
			Purpose:   recipient.Purpose,
		},
		Build: func() (*entity.Notification, error) {
			return &entity.Notification{
				Channel:        recipient.Channel,
				RecipientClass: recipient.Class,
				Recipient:      recipient.Address,
				TemplateID:     recipient.TemplateID,
				Payload:        recipient.Payload,
				Metadata:       meta,
			}, nil
		},
		Attachments: attachments,
	}
}

func withoutClass(recipients []usecase.Recipient, class entity.RecipientClass) []usecase.Recipient {
	kept := recipients[:0:0]
	for _, recipient := range recipients {
		if recipient.Class != class {
			kept = append(kept, recipient)
		}
	}

	return kept
}

func needsAttachments(recipients []usecase.Recipient) bool {
	for _, recipient := range recipients {
		if len(recipient.AttachmentTypes) > 0 {
			return true
		}
	}

	return false
}

func totalSize(docs []entity.Document) int64 {
	var total int64
	for _, doc := range docs {
		total += doc.Size()
	}

	return total
}
