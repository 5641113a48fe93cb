package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/guardian/internal/naming"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/remediation/feature"
	"github.com/temirov/guardian/internal/remediation/rename"
	"github.com/temirov/guardian/internal/remediation/shared"
)

// State is the orchestrator lifecycle state.
type State string

// Orchestrator states.
const (
	StateIdle        State = "idle"
	StateScanning    State = "scanning"
	StateReporting   State = "reporting"
	StateRemediating State = "remediating"
)

const (
	defaultWorkerCountConstant       = 8
	missingAdapterMessageConstant    = "audit service requires a registry adapter"
	busyMessageConstant              = "audit service is already running"
	enumerationErrorTemplateConstant = "failed to enumerate registry records: %w"
	logFieldPassConstant             = "pass"
	logFieldRecordCountConstant      = "records"
	logFieldIssueCountConstant       = "issues"
	logFieldRenamedCountConstant     = "renamed"
	logFieldRejectedCountConstant    = "rejected"
	logFieldEnabledCountConstant     = "enabled"
	passAuditConstant                = "audit"
	passNamingFixConstant            = "naming_fix"
	passFeatureFixConstant           = "feature_fix"
	scanCompletedLogMessage          = "scan completed"
	namingFixCompletedLogMessage     = "naming fix completed"
	featureFixCompletedLogMessage    = "feature fix completed"
)

var (
	// ErrMissingAdapter indicates that NewService was called without an adapter.
	ErrMissingAdapter = errors.New(missingAdapterMessageConstant)
	// ErrBusy is returned when a run is requested while another run is in progress.
	ErrBusy = errors.New(busyMessageConstant)
)

// Dependencies supplies the collaborators and settings of a Service.
type Dependencies struct {
	Adapter       registry.Adapter
	Rules         naming.Rules
	Feature       FeatureRule
	Scope         registry.Scope
	Workers       int
	Logger        *zap.Logger
	Prompter      shared.ConfirmationPrompter
	Output        io.Writer
	Errors        io.Writer
	StateObserver func(State)
	RunIdentifier func() string
}

// RemediationOptions configures a remediation run.
type RemediationOptions struct {
	DryRun    bool
	AssumeYes bool
}

// NamingFixResult aggregates a naming remediation run.
type NamingFixResult struct {
	Plans      []rename.Plan
	Rejections []rename.Rejection
	Outcomes   []rename.Outcome
}

// Renamed returns the renames that were applied.
func (result NamingFixResult) Renamed() []rename.Pair {
	return rename.Renamed(result.Outcomes)
}

// Service orchestrates audit and remediation runs. A Service runs one operation at
// a time; concurrent calls fail with ErrBusy.
type Service struct {
	dependencies Dependencies
	mutex        sync.Mutex
	state        State
	busy         bool
}

type scanOutcome struct {
	allRecords    []registry.Record
	scopedRecords []registry.Record
	report        Report
}

type referencerResult struct {
	referencers []registry.RecordID
	lookupError error
}

// NewService constructs a Service. A zero Rules value is replaced by the default rules.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Adapter == nil {
		return nil, ErrMissingAdapter
	}
	if len(dependencies.Rules.DefaultPrefix()) == 0 {
		dependencies.Rules = naming.MustDefaultRules()
	}
	if dependencies.Workers <= 0 {
		dependencies.Workers = defaultWorkerCountConstant
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies, state: StateIdle}, nil
}

// State returns the current lifecycle state.
func (service *Service) State() State {
	service.mutex.Lock()
	defer service.mutex.Unlock()
	return service.state
}

// RunAudit scans the scoped registry and returns the report.
func (service *Service) RunAudit(executionContext context.Context) (Report, error) {
	if beginError := service.begin(); beginError != nil {
		return Report{}, beginError
	}
	defer service.finish()

	logger := service.runLogger(passAuditConstant)
	service.transition(StateScanning)
	outcome, scanError := service.scan(executionContext, logger)
	if scanError != nil {
		return Report{}, scanError
	}

	service.transition(StateReporting)
	return outcome.report, nil
}

// RunNamingFix rescans the registry and renames scoped records to their canonical
// names. Load state does not matter; a record that failed to load is renamed too.
func (service *Service) RunNamingFix(executionContext context.Context, options RemediationOptions) (NamingFixResult, error) {
	if beginError := service.begin(); beginError != nil {
		return NamingFixResult{}, beginError
	}
	defer service.finish()

	logger := service.runLogger(passNamingFixConstant)
	service.transition(StateScanning)
	outcome, scanError := service.scan(executionContext, logger)
	if scanError != nil {
		return NamingFixResult{}, scanError
	}
	service.transition(StateIdle)
	service.transition(StateRemediating)

	planner := rename.NewPlanner(service.dependencies.Rules, logger)
	plans, rejections := planner.PlanAgainst(outcome.scopedRecords, outcome.allRecords)

	executor := rename.NewExecutor(rename.Dependencies{
		Renamer:  service.dependencies.Adapter,
		Prompter: service.dependencies.Prompter,
		Output:   service.dependencies.Output,
		Errors:   service.dependencies.Errors,
		Logger:   logger,
	})
	executor.ReportRejections(rejections)
	outcomes, applyError := executor.Apply(executionContext, plans, rename.Options{
		DryRun:             options.DryRun,
		ConfirmationPolicy: shared.ConfirmationPolicyFromBool(options.AssumeYes),
	})

	result := NamingFixResult{Plans: plans, Rejections: rejections, Outcomes: outcomes}
	logger.Info(namingFixCompletedLogMessage, zap.Int(logFieldRecordCountConstant, len(outcome.scopedRecords)), zap.Int(logFieldRenamedCountConstant, len(result.Renamed())), zap.Int(logFieldRejectedCountConstant, len(rejections)))
	return result, applyError
}

// RunFeatureFix rescans the registry and enables the configured flag on every
// record the scan flagged as feature-disabled.
func (service *Service) RunFeatureFix(executionContext context.Context, options RemediationOptions) (feature.Result, error) {
	if beginError := service.begin(); beginError != nil {
		return feature.Result{}, beginError
	}
	defer service.finish()

	logger := service.runLogger(passFeatureFixConstant)
	service.transition(StateScanning)
	outcome, scanError := service.scan(executionContext, logger)
	if scanError != nil {
		return feature.Result{}, scanError
	}
	service.transition(StateIdle)
	service.transition(StateRemediating)

	flagged := outcome.report.FlaggedRecords(IssueKindFeatureDisabled)
	candidates := make([]registry.Record, 0, len(flagged))
	for _, record := range outcome.scopedRecords {
		if _, include := flagged[record.ID]; include {
			candidates = append(candidates, record)
		}
	}

	executor := feature.NewExecutor(feature.Dependencies{
		Store:    service.dependencies.Adapter,
		Prompter: service.dependencies.Prompter,
		Output:   service.dependencies.Output,
		Errors:   service.dependencies.Errors,
		Logger:   logger,
	})
	result, enableError := executor.EnableForFlagged(executionContext, candidates, feature.Options{
		TypeTag:            service.dependencies.Feature.TypeTag,
		FlagName:           service.dependencies.Feature.FlagName,
		DryRun:             options.DryRun,
		ConfirmationPolicy: shared.ConfirmationPolicyFromBool(options.AssumeYes),
	})

	logger.Info(featureFixCompletedLogMessage, zap.Int(logFieldRecordCountConstant, len(candidates)), zap.Int(logFieldEnabledCountConstant, result.Count()))
	return result, enableError
}

func (service *Service) scan(executionContext context.Context, logger *zap.Logger) (scanOutcome, error) {
	allRecords, listError := service.dependencies.Adapter.ListAll(executionContext)
	if listError != nil {
		return scanOutcome{}, fmt.Errorf(enumerationErrorTemplateConstant, listError)
	}

	scopedRecords := service.dependencies.Scope.Filter(allRecords)
	sort.SliceStable(scopedRecords, func(left int, right int) bool {
		return scopedRecords[left].ID < scopedRecords[right].ID
	})

	classifier := NewClassifier(service.dependencies.Rules, service.dependencies.Feature, logger)
	classifications := make([][]Issue, len(scopedRecords))
	lookups := make([]referencerResult, len(scopedRecords))

	if len(scopedRecords) > 0 {
		group, groupContext := errgroup.WithContext(executionContext)
		group.SetLimit(min(service.dependencies.Workers, len(scopedRecords)))
		for recordIndex := range scopedRecords {
			record := scopedRecords[recordIndex]
			group.Go(func() error {
				if contextError := groupContext.Err(); contextError != nil {
					return contextError
				}
				classifications[recordIndex] = classifier.Classify(groupContext, record, service.dependencies.Adapter.TryLoad)
				referencers, lookupError := service.dependencies.Adapter.Referencers(groupContext, record.ID)
				lookups[recordIndex] = referencerResult{referencers: referencers, lookupError: lookupError}
				return nil
			})
		}
		if waitError := group.Wait(); waitError != nil {
			return scanOutcome{}, waitError
		}
	}
	if contextError := executionContext.Err(); contextError != nil {
		return scanOutcome{}, contextError
	}

	collected := make(map[registry.RecordID]referencerResult, len(scopedRecords))
	for recordIndex, record := range scopedRecords {
		collected[record.ID] = lookups[recordIndex]
	}
	graph, graphError := BuildReferencerGraph(executionContext, scopedRecords, func(_ context.Context, identifier registry.RecordID) ([]registry.RecordID, error) {
		result := collected[identifier]
		return result.referencers, result.lookupError
	}, logger)
	if graphError != nil {
		return scanOutcome{}, graphError
	}

	unused := graph.Unused(scopedRecords)
	unusedByRecord := make(map[registry.RecordID]Issue, len(unused))
	for _, issue := range unused {
		unusedByRecord[issue.RecordID] = issue
	}

	var issues []Issue
	for recordIndex, record := range scopedRecords {
		issues = append(issues, classifications[recordIndex]...)
		if issue, flagged := unusedByRecord[record.ID]; flagged {
			issues = append(issues, issue)
		}
	}

	report := Report{Issues: issues, Summary: summarize(len(scopedRecords), issues)}
	logger.Info(scanCompletedLogMessage, zap.Int(logFieldRecordCountConstant, len(scopedRecords)), zap.Int(logFieldIssueCountConstant, len(issues)))
	return scanOutcome{allRecords: allRecords, scopedRecords: scopedRecords, report: report}, nil
}

func (service *Service) runLogger(pass string) *zap.Logger {
	return service.dependencies.Logger.With(
		zap.String(shared.LogFieldRunIDConstant, service.newRunIdentifier()),
		zap.String(logFieldPassConstant, pass),
	)
}

func (service *Service) newRunIdentifier() string {
	if service.dependencies.RunIdentifier != nil {
		return service.dependencies.RunIdentifier()
	}
	identifier, identifierError := uuid.NewV7()
	if identifierError != nil {
		return uuid.NewString()
	}
	return identifier.String()
}

func (service *Service) begin() error {
	service.mutex.Lock()
	defer service.mutex.Unlock()
	if service.busy {
		return ErrBusy
	}
	service.busy = true
	return nil
}

func (service *Service) finish() {
	service.mutex.Lock()
	service.state = StateIdle
	service.busy = false
	service.mutex.Unlock()
	service.notify(StateIdle)
}

func (service *Service) transition(state State) {
	service.mutex.Lock()
	service.state = state
	service.mutex.Unlock()
	service.notify(state)
}

func (service *Service) notify(state State) {
	if service.dependencies.StateObserver != nil {
		service.dependencies.StateObserver(state)
	}
}
