package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/stacklok/registry-console/internal/editor"
	"github.com/stacklok/registry-console/internal/mirror"
	"github.com/stacklok/registry-console/internal/notify"
	"github.com/stacklok/registry-console/internal/otel"
	"github.com/stacklok/registry-console/internal/registry"
	"github.com/stacklok/registry-console/internal/status"
	"github.com/stacklok/registry-console/internal/telemetry"
)

// TracerName is the name of the tracer used for sync operations
const TracerName = "github.com/stacklok/registry-console/sync"

// Operation names used in spans, logs and metrics
const (
	OperationRefresh       = "refresh"
	OperationRegister      = "register"
	OperationDeregister    = "deregister"
	OperationHeartbeat     = "heartbeat"
	OperationRateLimit     = "rate_limit"
	OperationVirtualDomain = "virtual_domain"
)

// Outcomes recorded besides the failure kinds
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
)

// Manager runs the user and scheduler triggered registry operations.
// Every operation surfaces its outcome on the notification queue and returns
// the classified *registry.Error, or nil on success and when skipped.
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/stacklok/registry-console/internal/sync Manager
type Manager interface {
	// Refresh replaces the mirror with the registry's list. silent suppresses
	// every notification, including failures. A refresh cancelled through ctx
	// is not a failure: the tracked status reverts and the cancellation is
	// returned.
	Refresh(ctx context.Context, silent bool) error

	// Register validates the form and registers a new instance
	Register(ctx context.Context, form editor.RegisterForm) error

	// Deregister removes inst after the confirmer approves
	Deregister(ctx context.Context, inst registry.ServiceInstance) error

	// Heartbeat renews inst's heartbeat
	Heartbeat(ctx context.Context, inst registry.ServiceInstance) error

	// SaveRateLimit saves the rate-limit editor's draft for its service
	SaveRateLimit(ctx context.Context) error

	// SaveVirtualDomain saves the virtual-domain editor's draft for its service
	SaveVirtualDomain(ctx context.Context) error
}

// Confirmer is a blocking yes/no gate for destructive operations
//
//go:generate mockgen -destination=mocks/mock_confirmer.go -package=mocks github.com/stacklok/registry-console/internal/sync Confirmer
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// defaultSyncManager is the default implementation of Manager
type defaultSyncManager struct {
	client    registry.Client
	store     *mirror.Store
	queue     *notify.Queue
	editor    *editor.Editor
	confirmer Confirmer
	tracker   *status.Tracker
	clock     clock.PassiveClock
	tracer    trace.Tracer
	metrics   *telemetry.SyncMetrics
}

// Option configures the sync manager
type Option func(*defaultSyncManager)

// WithConfirmer sets the deregistration gate. Without one every
// deregistration is declined.
func WithConfirmer(c Confirmer) Option {
	return func(m *defaultSyncManager) {
		m.confirmer = c
	}
}

// WithTracker records refresh outcomes in the sync status tracker
func WithTracker(t *status.Tracker) Option {
	return func(m *defaultSyncManager) {
		m.tracker = t
	}
}

// WithClock sets the clock used for heartbeat times and durations
func WithClock(c clock.PassiveClock) Option {
	return func(m *defaultSyncManager) {
		m.clock = c
	}
}

// WithTracerProvider enables tracing of operations
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *defaultSyncManager) {
		if tp != nil {
			m.tracer = tp.Tracer(TracerName)
		}
	}
}

// WithSyncMetrics sets the operation metrics
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(m *defaultSyncManager) {
		m.metrics = metrics
	}
}

// NewDefaultSyncManager creates a Manager. store is the only state it
// mutates; ed provides the rate-limit and virtual-domain drafts.
func NewDefaultSyncManager(
	client registry.Client,
	store *mirror.Store,
	queue *notify.Queue,
	ed *editor.Editor,
	opts ...Option,
) Manager {
	m := &defaultSyncManager{
		client: client,
		store:  store,
		queue:  queue,
		editor: ed,
		clock:  clock.RealClock{},
		confirmer: ConfirmFunc(func(context.Context, string) bool {
			return false
		}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Refresh implements Manager
func (m *defaultSyncManager) Refresh(ctx context.Context, silent bool) error {
	ctx, op := m.begin(ctx, OperationRefresh, otel.AttrSilent.Bool(silent))
	defer op.end()

	if !silent {
		m.queue.Info(MessageRefreshing)
	}
	if m.tracker != nil {
		m.tracker.Begin(ctx)
	}

	instances, err := m.client.List(ctx)
	if errors.Is(err, context.Canceled) {
		// Abandoned by the caller, typically a scheduler stop; not a registry failure
		op.skip()
		if m.tracker != nil {
			m.tracker.Cancel(context.WithoutCancel(ctx))
		}
		slog.Debug("Refresh cancelled", "silent", silent)
		return registry.Classify(err)
	}
	if err != nil {
		regErr := op.fail(err)
		message := regErr.UserMessage(MessageRefreshFailed)
		if m.tracker != nil {
			m.tracker.Fail(ctx, message)
		}
		if silent {
			slog.Warn("Scheduled refresh failed", "kind", regErr.Kind.String(), "error", regErr)
		} else {
			m.emitFailure(regErr, message)
		}
		return regErr
	}

	m.store.ReplaceAll(instances)
	op.span.SetAttributes(otel.AttrResultCount.Int(len(instances)))
	op.succeed()

	if m.tracker != nil {
		m.tracker.Complete(ctx, len(instances))
	}
	if !silent {
		m.queue.Success(MessageRefreshed)
	}
	return nil
}

// Register implements Manager
func (m *defaultSyncManager) Register(ctx context.Context, form editor.RegisterForm) error {
	ctx, op := m.begin(ctx, OperationRegister, otel.AttrServiceName.String(form.ServiceName))
	defer op.end()

	req, err := form.Validate()
	if err != nil {
		regErr := op.fail(err)
		m.emitFailure(regErr, regErr.UserMessage(MessageRegisterFailed))
		return regErr
	}

	m.queue.Info(MessageRegistering)

	instance, err := m.client.Register(ctx, req)
	if err != nil {
		regErr := op.fail(err)
		m.emitFailure(regErr, regErr.UserMessage(MessageRegisterFailed))
		return regErr
	}

	// An empty body still counts as success, the mirror catches up on the next refresh
	if instance != nil {
		m.store.Insert(*instance)
		op.span.SetAttributes(otel.AttrServiceID.Int64(instance.ID))
	}
	op.succeed()

	m.queue.Success(fmt.Sprintf(MessageRegistered, req.ServiceName))
	m.editor.ResetRegister()
	return nil
}

// Deregister implements Manager
func (m *defaultSyncManager) Deregister(ctx context.Context, inst registry.ServiceInstance) error {
	ctx, op := m.begin(ctx, OperationDeregister, instanceAttributes(inst)...)
	defer op.end()

	if !m.confirmer.Confirm(ctx, fmt.Sprintf(PromptDeregister, inst.ServiceName)) {
		slog.Debug("Deregistration declined", "service_id", inst.ID, "service_name", inst.ServiceName)
		op.skip()
		return nil
	}

	m.queue.Info(fmt.Sprintf(MessageDeregistering, inst.ServiceName))

	if err := m.client.Deregister(ctx, inst.ID); err != nil {
		regErr := op.fail(err)
		m.emitFailure(regErr, regErr.UserMessage(MessageDeregisterFailed))
		return regErr
	}

	m.store.RemoveByID(inst.ID)
	op.succeed()

	m.queue.Success(fmt.Sprintf(MessageDeregistered, inst.ServiceName))
	return nil
}

// Heartbeat implements Manager
func (m *defaultSyncManager) Heartbeat(ctx context.Context, inst registry.ServiceInstance) error {
	ctx, op := m.begin(ctx, OperationHeartbeat, instanceAttributes(inst)...)
	defer op.end()

	m.queue.Info(fmt.Sprintf(MessageSendingHeartbeat, inst.ServiceName))

	if err := m.client.Heartbeat(ctx, inst.ID); err != nil {
		regErr := op.fail(err)
		m.emitFailure(regErr, regErr.UserMessage(MessageHeartbeatFailed))
		return regErr
	}

	now := registry.NewTimestamp(m.clock.Now())
	m.store.UpdateByID(inst.ID, func(s *registry.ServiceInstance) {
		s.LastHeartbeat = now
		s.Status = registry.StatusUp
	})
	op.succeed()

	m.queue.Success(fmt.Sprintf(MessageHeartbeatSent, inst.ServiceName))
	return nil
}

// SaveRateLimit implements Manager. Without an open editor and selected
// service it does nothing.
func (m *defaultSyncManager) SaveRateLimit(ctx context.Context) error {
	inst, cfg, ok := m.editor.RateLimitTarget()
	if !ok {
		return nil
	}

	ctx, op := m.begin(ctx, OperationRateLimit, instanceAttributes(inst)...)
	defer op.end()

	m.queue.Info(MessageSavingRateLimit)

	if err := m.client.SetRateLimit(ctx, inst.ID, cfg); err != nil {
		regErr := op.fail(err)
		m.emitFailure(regErr, regErr.UserMessage(MessageRateLimitFailed))
		return regErr
	}

	m.store.UpdateByID(inst.ID, func(s *registry.ServiceInstance) {
		s.RateLimitEnabled = cfg.Enabled
		s.MaxRequestsPerSecond = cfg.MaxRequestsPerSecond
		s.RateLimitErrorMessage = cfg.ErrorMessage
	})
	op.succeed()

	m.queue.Success(MessageRateLimitSaved)
	m.editor.CloseRateLimit()
	return nil
}

// SaveVirtualDomain implements Manager. The editor is closed on every outcome.
func (m *defaultSyncManager) SaveVirtualDomain(ctx context.Context) error {
	defer m.editor.CloseVirtualDomain()

	inst, domain, ok := m.editor.VirtualDomainTarget()

	ctx, op := m.begin(ctx, OperationVirtualDomain, instanceAttributes(inst)...)
	defer op.end()

	if !ok {
		regErr := op.fail(registry.NewValidationError(MessageInvalidService))
		// Error severity, unlike form validation
		m.queue.Error(regErr.Message)
		return regErr
	}

	if err := m.client.SetVirtualDomain(ctx, inst.ID, domain); err != nil {
		regErr := op.fail(err)
		m.queue.Error(virtualDomainFailureMessage(regErr))
		return regErr
	}

	var value *string
	if domain != "" {
		value = &domain
	}
	m.store.UpdateByID(inst.ID, func(s *registry.ServiceInstance) {
		s.VirtualDomain = value
	})
	op.succeed()

	m.queue.Success(MessageVirtualDomainSaved)
	return nil
}

// emitFailure surfaces a classified failure with the severity of its kind
func (m *defaultSyncManager) emitFailure(err *registry.Error, message string) {
	m.queue.Emit(message, Severity(err))
}

// Severity maps a failure kind to its notification severity
func Severity(err *registry.Error) notify.Severity {
	switch err.Kind {
	case registry.KindValidation:
		return notify.SeverityWarning
	case registry.KindConflict, registry.KindNotFound, registry.KindConnectivity,
		registry.KindServer, registry.KindUnknown:
		return notify.SeverityError
	}
	return notify.SeverityError
}

// virtualDomainFailureMessage keeps the virtual domain wording: transport and
// decoding failures share one network message, rejections show the server text.
func virtualDomainFailureMessage(err *registry.Error) string {
	switch err.Kind {
	case registry.KindConnectivity:
		return MessageVirtualDomainNetwork
	case registry.KindUnknown:
		// A decoded reply without the success flag still carries the server's message
		if err.Message != "" {
			return err.Message
		}
		return MessageVirtualDomainNetwork
	case registry.KindValidation:
		return err.Message
	case registry.KindConflict, registry.KindNotFound, registry.KindServer:
		if err.Message != "" {
			return err.Message
		}
	}
	return MessageVirtualDomainFailed
}

func instanceAttributes(inst registry.ServiceInstance) []attribute.KeyValue {
	return []attribute.KeyValue{
		otel.AttrServiceID.Int64(inst.ID),
		otel.AttrServiceName.String(inst.ServiceName),
	}
}

// operation tracks the span and timing of one Manager call
type operation struct {
	ctx     context.Context
	name    string
	span    trace.Span
	start   time.Time
	clock   clock.PassiveClock
	metrics *telemetry.SyncMetrics
	outcome string
}

func (m *defaultSyncManager) begin(
	ctx context.Context, name string, attrs ...attribute.KeyValue,
) (context.Context, *operation) {
	attrs = append(attrs, otel.AttrOperation.String(name))
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync."+name, trace.WithAttributes(attrs...))
	return ctx, &operation{
		ctx:     ctx,
		name:    name,
		span:    span,
		start:   m.clock.Now(),
		clock:   m.clock,
		metrics: m.metrics,
		outcome: OutcomeSuccess,
	}
}

// fail classifies err and records it on the span
func (o *operation) fail(err error) *registry.Error {
	regErr := registry.Classify(err)
	o.outcome = regErr.Kind.String()
	otel.RecordErrorKind(o.span, regErr, o.outcome)
	slog.Debug("Sync operation failed", "operation", o.name, "kind", o.outcome, "error", regErr)
	return regErr
}

func (o *operation) succeed() {
	o.outcome = OutcomeSuccess
}

func (o *operation) skip() {
	o.outcome = OutcomeSkipped
}

func (o *operation) end() {
	o.metrics.RecordOperation(o.ctx, o.name, o.clock.Since(o.start), o.outcome)
	o.span.End()
}
