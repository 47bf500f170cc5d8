package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charger-alert-service/internal/client"
	"charger-alert-service/internal/model"
	"charger-alert-service/internal/notify"
	"charger-alert-service/internal/storage"
)

type fakeResolver struct {
	resolved string
	err      error
	calls    int
}

func (f *fakeResolver) Resolve(ctx context.Context, addr string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.resolved != "" {
		return f.resolved, nil
	}
	return addr, nil
}

type fakeDetector struct {
	result  *model.DetectionResult
	err     error
	calls   int
	lastURL string
}

func (f *fakeDetector) Detect(ctx context.Context, imageURL string) (*model.DetectionResult, error) {
	f.calls++
	f.lastURL = imageURL
	return f.result, f.err
}

type fakeRegistry struct {
	registration *model.PlateRegistration
	err          error
	calls        int
	lastPlate    string
}

func (f *fakeRegistry) GetByPlate(ctx context.Context, plate string) (*model.PlateRegistration, error) {
	f.calls++
	f.lastPlate = plate
	return f.registration, f.err
}

type fakeDispatcher struct {
	result notify.DispatchResult
	calls  int
	last   notify.DispatchInput
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, in notify.DispatchInput) notify.DispatchResult {
	f.calls++
	f.last = in
	return f.result
}

type fakeAudit struct {
	alerts       []*model.ChargerAlert
	unregistered []*model.UnregisteredPlate
	failed       []*model.FailedDetection
	alertErr     error
}

func (f *fakeAudit) CreateAlert(ctx context.Context, alert *model.ChargerAlert) error {
	if f.alertErr != nil {
		return f.alertErr
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAudit) CreateUnregisteredPlate(ctx context.Context, rec *model.UnregisteredPlate) error {
	f.unregistered = append(f.unregistered, rec)
	return nil
}

func (f *fakeAudit) CreateFailedDetection(ctx context.Context, rec *model.FailedDetection) error {
	f.failed = append(f.failed, rec)
	return nil
}

type fakeGuard struct {
	first bool
	err   error
	calls int
}

func (f *fakeGuard) FirstDelivery(ctx context.Context, reportID string) (bool, error) {
	f.calls++
	return f.first, f.err
}

type pipelineFixture struct {
	resolver   *fakeResolver
	detector   *fakeDetector
	registry   *fakeRegistry
	dispatcher *fakeDispatcher
	audit      *fakeAudit
	service    *AlertService
}

func newPipelineFixture(guard DeliveryGuard) *pipelineFixture {
	f := &pipelineFixture{
		resolver:   &fakeResolver{resolved: "https://cdn.example.com/bucket/x.jpg"},
		detector:   &fakeDetector{result: &model.DetectionResult{Plate: "AB12CDE", Confidence: 0.91}},
		registry:   &fakeRegistry{registration: &model.PlateRegistration{Plate: "AB12CDE", UserID: "U1"}},
		dispatcher: &fakeDispatcher{result: notify.DispatchResult{Delivered: true}},
		audit:      &fakeAudit{},
	}
	f.service = NewAlertService(
		f.resolver, f.detector, f.registry, f.dispatcher, f.audit,
		guard, "test-token", zerolog.Nop(),
	)
	return f
}

func testReport() *model.UsageReport {
	return &model.UsageReport{
		ImageURL:  "gs://bucket/x.jpg",
		ChargerID: "C1",
	}
}

func TestProcessReportSuccess(t *testing.T) {
	f := newPipelineFixture(nil)

	outcome, err := f.service.ProcessReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlertLogged, outcome)

	require.Len(t, f.audit.alerts, 1)
	alert := f.audit.alerts[0]
	assert.Equal(t, "AB12CDE", alert.Plate)
	assert.Equal(t, "U1", alert.RecipientID)
	assert.Equal(t, "C1", alert.ChargerID)
	assert.Equal(t, "unknown", alert.Location)
	assert.Equal(t, "gs://bucket/x.jpg", alert.OriginalImageURL)
	assert.Equal(t, "https://cdn.example.com/bucket/x.jpg", alert.ResolvedImageURL)
	assert.Equal(t, model.AlertStatusSent, alert.Status)
	assert.Nil(t, alert.DispatchError)

	assert.Equal(t, 1, f.dispatcher.calls)
	assert.Equal(t, "U1", f.dispatcher.last.OwnerID)
	assert.Equal(t, "AB12CDE", f.dispatcher.last.Plate)
	assert.Equal(t, "AB12CDE", f.registry.lastPlate)
	assert.Equal(t, "https://cdn.example.com/bucket/x.jpg", f.detector.lastURL)
	assert.Empty(t, f.audit.unregistered)
	assert.Empty(t, f.audit.failed)
}

func TestProcessReportUnregisteredPlate(t *testing.T) {
	f := newPipelineFixture(nil)
	f.registry.registration = nil

	outcome, err := f.service.ProcessReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnregisteredLogged, outcome)

	require.Len(t, f.audit.unregistered, 1)
	assert.Equal(t, "AB12CDE", f.audit.unregistered[0].Plate)
	assert.Equal(t, "C1", f.audit.unregistered[0].ChargerID)
	assert.Equal(t, 0, f.dispatcher.calls)
	assert.Empty(t, f.audit.alerts)
	assert.Empty(t, f.audit.failed)
}

func TestProcessReportNoPlateDetected(t *testing.T) {
	f := newPipelineFixture(nil)
	f.detector.result = nil

	outcome, err := f.service.ProcessReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoPlate, outcome)

	assert.Equal(t, 0, f.registry.calls)
	assert.Equal(t, 0, f.dispatcher.calls)
	assert.Empty(t, f.audit.alerts)
	assert.Empty(t, f.audit.unregistered)
	assert.Empty(t, f.audit.failed)
}

func TestProcessReportDetectionServiceFailure(t *testing.T) {
	f := newPipelineFixture(nil)
	f.detector.result = nil
	f.detector.err = &client.DetectionServiceError{Err: errors.New("context deadline exceeded")}

	outcome, err := f.service.ProcessReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailedLogged, outcome)

	require.Len(t, f.audit.failed, 1)
	rec := f.audit.failed[0]
	assert.Equal(t, "detection", rec.Stage)
	assert.Contains(t, rec.ErrorMessage, "context deadline exceeded")
	assert.Equal(t, "gs://bucket/x.jpg", rec.OriginalImageURL)
	assert.Equal(t, 0, f.registry.calls)
	assert.Equal(t, 0, f.dispatcher.calls)
}

func TestProcessReportFailureKeepsUpstreamBody(t *testing.T) {
	f := newPipelineFixture(nil)
	f.detector.result = nil
	f.detector.err = &client.DetectionServiceError{
		Status: 500,
		Body:   `{"detail":"engine unavailable"}`,
	}

	outcome, err := f.service.ProcessReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailedLogged, outcome)

	require.Len(t, f.audit.failed, 1)
	assert.JSONEq(t, `{"detail":"engine unavailable"}`, string(f.audit.failed[0].UpstreamBody))
}

func TestProcessReportResolutionFailure(t *testing.T) {
	f := newPipelineFixture(nil)
	f.resolver.err = &storage.ResolutionError{Address: "gs://bucket/x.jpg", Err: errors.New("object not found")}

	outcome, err := f.service.ProcessReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailedLogged, outcome)

	require.Len(t, f.audit.failed, 1)
	assert.Equal(t, "resolution", f.audit.failed[0].Stage)
	assert.Equal(t, 0, f.detector.calls)
}

func TestProcessReportInputGuard(t *testing.T) {
	f := newPipelineFixture(nil)

	outcome, err := f.service.ProcessReport(context.Background(), &model.UsageReport{ChargerID: "C1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	outcome, err = f.service.ProcessReport(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	assert.Equal(t, 0, f.resolver.calls)
	assert.Equal(t, 0, f.detector.calls)
	assert.Empty(t, f.audit.failed)
}

func TestProcessReportMissingCredential(t *testing.T) {
	f := newPipelineFixture(nil)
	noToken := NewAlertService(
		f.resolver, f.detector, f.registry, f.dispatcher, f.audit,
		nil, "", zerolog.Nop(),
	)

	outcome, err := noToken.ProcessReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Equal(t, 0, f.resolver.calls)
}

func TestProcessReportDispatchFailureStillLogsAlert(t *testing.T) {
	f := newPipelineFixture(nil)
	f.dispatcher.result = notify.DispatchResult{Delivered: false, ErrorMessage: "push send failed: connection refused"}

	outcome, err := f.service.ProcessReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlertLogged, outcome)

	require.Len(t, f.audit.alerts, 1)
	alert := f.audit.alerts[0]
	assert.Equal(t, model.AlertStatusSent, alert.Status)
	require.NotNil(t, alert.DispatchError)
	assert.Contains(t, *alert.DispatchError, "connection refused")
	assert.Empty(t, f.audit.failed)
}

func TestProcessReportAuditWriteFailureReturnsError(t *testing.T) {
	f := newPipelineFixture(nil)
	f.audit.alertErr = errors.New("database down")

	_, err := f.service.ProcessReport(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database down")
}

func TestProcessReportDuplicateDelivery(t *testing.T) {
	guard := &fakeGuard{first: false}
	f := newPipelineFixture(guard)

	report := testReport()
	report.ID = "report-1"
	outcome, err := f.service.ProcessReport(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	assert.Equal(t, 1, guard.calls)
	assert.Equal(t, 0, f.resolver.calls)
}

func TestProcessReportGuardErrorDegradesToProcessing(t *testing.T) {
	guard := &fakeGuard{err: errors.New("redis down")}
	f := newPipelineFixture(guard)

	report := testReport()
	report.ID = "report-1"
	outcome, err := f.service.ProcessReport(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlertLogged, outcome)
}

func TestProcessReportGuardSkippedWithoutReportID(t *testing.T) {
	guard := &fakeGuard{first: true}
	f := newPipelineFixture(guard)

	outcome, err := f.service.ProcessReport(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlertLogged, outcome)
	assert.Equal(t, 0, guard.calls)
}
