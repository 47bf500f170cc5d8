package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"charger-alert-service/internal/client"
	"charger-alert-service/internal/model"
	"charger-alert-service/internal/notify"
	"charger-alert-service/internal/storage"
)

const unknownValue = "unknown"

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	// OutcomeSkipped: input guard failed (missing image address or
	// recognizer credential). No external calls, no audit record.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDuplicate: the delivery guard has already seen this report ID.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeNoPlate: the recognition service found no candidates. Silent
	// success, no audit record.
	OutcomeNoPlate Outcome = "no_plate"
	// OutcomeAlertLogged: owner found, dispatch attempted, alert recorded.
	OutcomeAlertLogged Outcome = "alert_logged"
	// OutcomeUnregisteredLogged: plate detected but no registration matched.
	OutcomeUnregisteredLogged Outcome = "unregistered_logged"
	// OutcomeFailedLogged: an unrecoverable failure was captured in the
	// failed-detections log.
	OutcomeFailedLogged Outcome = "failed_logged"
)

const (
	stageResolution  = "resolution"
	stageDetection   = "detection"
	stageOwnerLookup = "owner_lookup"
)

type AddressResolver interface {
	Resolve(ctx context.Context, addr string) (string, error)
}

type PlateDetector interface {
	Detect(ctx context.Context, imageURL string) (*model.DetectionResult, error)
}

type OwnerRegistry interface {
	GetByPlate(ctx context.Context, plate string) (*model.PlateRegistration, error)
}

type NotificationDispatcher interface {
	Dispatch(ctx context.Context, in notify.DispatchInput) notify.DispatchResult
}

type AuditSink interface {
	CreateAlert(ctx context.Context, alert *model.ChargerAlert) error
	CreateUnregisteredPlate(ctx context.Context, rec *model.UnregisteredPlate) error
	CreateFailedDetection(ctx context.Context, rec *model.FailedDetection) error
}

// DeliveryGuard filters duplicate deliveries of the same report. Optional.
type DeliveryGuard interface {
	FirstDelivery(ctx context.Context, reportID string) (bool, error)
}

// AlertService runs the detection-to-notification pipeline for one usage
// report at a time: resolve image address, detect plate, look up owner,
// dispatch the broadcast, write exactly one audit record. Stateless across
// runs; safe to invoke concurrently for different reports.
type AlertService struct {
	resolver        AddressResolver
	detector        PlateDetector
	registry        OwnerRegistry
	dispatcher      NotificationDispatcher
	audit           AuditSink
	guard           DeliveryGuard
	recognizerToken string
	log             zerolog.Logger
}

func NewAlertService(
	resolver AddressResolver,
	detector PlateDetector,
	registry OwnerRegistry,
	dispatcher NotificationDispatcher,
	audit AuditSink,
	guard DeliveryGuard,
	recognizerToken string,
	log zerolog.Logger,
) *AlertService {
	return &AlertService{
		resolver:        resolver,
		detector:        detector,
		registry:        registry,
		dispatcher:      dispatcher,
		audit:           audit,
		guard:           guard,
		recognizerToken: recognizerToken,
		log:             log,
	}
}

// ProcessReport drives one report to a terminal outcome. Every failure
// except a dispatch rejection short-circuits into exactly one
// failed-detection record; a dispatch rejection is contained so the alert
// record is still written. The returned error is non-nil only when the
// terminal audit write itself failed, so the delivery channel can redeliver.
func (s *AlertService) ProcessReport(ctx context.Context, report *model.UsageReport) (Outcome, error) {
	if report == nil || report.ImageURL == "" || s.recognizerToken == "" {
		s.log.Warn().
			Bool("has_report", report != nil).
			Bool("has_token", s.recognizerToken != "").
			Msg("skipping report: missing image address or recognizer credential")
		return OutcomeSkipped, nil
	}

	if s.guard != nil && report.ID != "" {
		first, err := s.guard.FirstDelivery(ctx, report.ID)
		if err != nil {
			// Guard failure degrades to at-least-once semantics.
			s.log.Warn().Err(err).Str("report_id", report.ID).Msg("delivery guard unavailable")
		} else if !first {
			s.log.Info().Str("report_id", report.ID).Msg("duplicate report delivery skipped")
			return OutcomeDuplicate, nil
		}
	}

	chargerID := defaultString(report.ChargerID)
	location := defaultString(report.Location)
	reportedBy := defaultString(report.ReportedBy)

	resolvedURL, err := s.resolver.Resolve(ctx, report.ImageURL)
	if err != nil {
		return s.failRun(ctx, report, chargerID, location, stageResolution, err)
	}

	detection, err := s.detector.Detect(ctx, resolvedURL)
	if err != nil {
		return s.failRun(ctx, report, chargerID, location, stageDetection, err)
	}
	if detection == nil {
		s.log.Debug().Str("image_url", resolvedURL).Msg("no plate detected")
		return OutcomeNoPlate, nil
	}

	registration, err := s.registry.GetByPlate(ctx, detection.Plate)
	if err != nil {
		return s.failRun(ctx, report, chargerID, location, stageOwnerLookup, err)
	}

	if registration == nil {
		rec := &model.UnregisteredPlate{
			Plate:            detection.Plate,
			Confidence:       detection.Confidence,
			ChargerID:        chargerID,
			Location:         location,
			ReportedBy:       reportedBy,
			OriginalImageURL: report.ImageURL,
		}
		if err := s.audit.CreateUnregisteredPlate(ctx, rec); err != nil {
			return "", err
		}
		s.log.Info().
			Str("plate", detection.Plate).
			Str("charger_id", chargerID).
			Msg("detected plate has no registration")
		return OutcomeUnregisteredLogged, nil
	}

	result := s.dispatcher.Dispatch(ctx, notify.DispatchInput{
		Plate:      detection.Plate,
		OwnerID:    registration.UserID,
		ChargerID:  chargerID,
		Location:   location,
		Confidence: detection.Confidence,
	})

	alert := &model.ChargerAlert{
		Plate:            detection.Plate,
		Confidence:       detection.Confidence,
		RecipientID:      registration.UserID,
		ChargerID:        chargerID,
		Location:         location,
		ReportedBy:       reportedBy,
		OriginalImageURL: report.ImageURL,
		ResolvedImageURL: resolvedURL,
		DeliveryMethod:   notify.DeliveryMethodTopicPush,
		Status:           model.AlertStatusSent,
	}
	if !result.Delivered {
		alert.DispatchError = &result.ErrorMessage
	}

	if err := s.audit.CreateAlert(ctx, alert); err != nil {
		return "", err
	}

	s.log.Info().
		Str("plate", detection.Plate).
		Str("recipient_id", registration.UserID).
		Str("charger_id", chargerID).
		Bool("delivered", result.Delivered).
		Msg("charger alert logged")
	return OutcomeAlertLogged, nil
}

func (s *AlertService) failRun(ctx context.Context, report *model.UsageReport, chargerID, location, stage string, cause error) (Outcome, error) {
	rec := &model.FailedDetection{
		Stage:            stage,
		ErrorMessage:     cause.Error(),
		ChargerID:        chargerID,
		Location:         location,
		OriginalImageURL: report.ImageURL,
	}

	var detErr *client.DetectionServiceError
	var resErr *storage.ResolutionError
	switch {
	case errors.As(cause, &detErr):
		if detErr.Body != "" && json.Valid([]byte(detErr.Body)) {
			rec.UpstreamBody = datatypes.JSON(detErr.Body)
		}
	case errors.As(cause, &resErr):
		// No structured body from the storage collaborator.
	}

	if err := s.audit.CreateFailedDetection(ctx, rec); err != nil {
		return "", err
	}

	s.log.Error().
		Err(cause).
		Str("stage", stage).
		Str("image_url", report.ImageURL).
		Str("charger_id", chargerID).
		Msg("pipeline run failed")
	return OutcomeFailedLogged, nil
}

func defaultString(value string) string {
	if value == "" {
		return unknownValue
	}
	return value
}
