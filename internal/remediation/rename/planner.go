package rename

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/naming"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/remediation/shared"
)

const (
	planOperationConstant         = "plan_rename"
	configurationGapMessage       = "no prefix rule matches record type; using default prefix"
	emptyCanonicalReasonConstant  = "no usable characters"
	targetExistsReasonConstant    = "target exists"
	batchCollisionReasonConstant  = "collides with another plan"
	logFieldTypeTagConstant       = "type_tag"
	logFieldDefaultPrefixConstant = "default_prefix"
)

// Plan describes one rename to apply. NewName is unique inside TargetContainerPath
// at the time the plan was computed.
type Plan struct {
	RecordID            registry.RecordID
	OldName             string
	NewName             string
	TargetContainerPath string
}

// TargetID returns the identifier the record will have after the rename.
func (plan Plan) TargetID() registry.RecordID {
	return registry.JoinRecordID(plan.TargetContainerPath, plan.NewName)
}

// Rejection describes a rename that was refused before any mutation.
type Rejection struct {
	Plan   Plan
	Kind   shared.FailureKind
	Reason string
}

// Planner computes collision-free rename plans.
type Planner struct {
	rules  naming.Rules
	logger *zap.Logger
}

// NewPlanner constructs a Planner for rules.
func NewPlanner(rules naming.Rules, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{rules: rules, logger: logger}
}

// Plan computes plans for records, checking collisions among the same records.
func (planner *Planner) Plan(records []registry.Record) ([]Plan, []Rejection) {
	return planner.PlanAgainst(records, records)
}

// PlanAgainst computes plans for candidates and rejects any plan whose target name
// is held by a record in occupants or is claimed by another plan of the batch.
// Names are compared case-insensitively within a container.
func (planner *Planner) PlanAgainst(candidates []registry.Record, occupants []registry.Record) ([]Plan, []Rejection) {
	var (
		proposed   []Plan
		rejections []Rejection
	)

	for _, record := range candidates {
		canonicalization, canonicalError := planner.rules.Canonicalize(record.TypeTag, record.ShortName)
		if canonicalError != nil {
			reason := canonicalError.Error()
			if errors.Is(canonicalError, naming.ErrEmptyCanonicalName) {
				reason = emptyCanonicalReasonConstant
			}
			rejections = append(rejections, Rejection{
				Plan:   Plan{RecordID: record.ID, OldName: record.ShortName, TargetContainerPath: record.ContainerPath},
				Kind:   shared.FailureKindValidation,
				Reason: reason,
			})
			planner.logger.Warn(reason, shared.FailureFields(record.ID, shared.FailureKindValidation, planOperationConstant, canonicalError)...)
			continue
		}
		if canonicalization.AlreadyCanonical {
			continue
		}
		if !canonicalization.PrefixMatched {
			planner.logger.Info(configurationGapMessage, append(
				shared.FailureFields(record.ID, shared.FailureKindConfigurationGap, planOperationConstant, nil),
				zap.String(logFieldTypeTagConstant, record.TypeTag),
				zap.String(logFieldDefaultPrefixConstant, canonicalization.Prefix),
			)...)
		}
		proposed = append(proposed, Plan{
			RecordID:            record.ID,
			OldName:             record.ShortName,
			NewName:             canonicalization.Name,
			TargetContainerPath: record.ContainerPath,
		})
	}

	occupiedBy := make(map[string][]registry.RecordID, len(occupants))
	for _, occupant := range occupants {
		key := occupancyKey(occupant.ContainerPath, occupant.ShortName)
		occupiedBy[key] = append(occupiedBy[key], occupant.ID)
	}

	claims := make(map[string]int, len(proposed))
	for _, plan := range proposed {
		claims[occupancyKey(plan.TargetContainerPath, plan.NewName)]++
	}

	plans := make([]Plan, 0, len(proposed))
	for _, plan := range proposed {
		key := occupancyKey(plan.TargetContainerPath, plan.NewName)
		reason := ""
		switch {
		case claims[key] > 1:
			reason = batchCollisionReasonConstant
		case isOccupiedByOther(occupiedBy[key], plan.RecordID):
			reason = targetExistsReasonConstant
		}
		if len(reason) > 0 {
			rejections = append(rejections, Rejection{Plan: plan, Kind: shared.FailureKindValidation, Reason: reason})
			planner.logger.Warn(reason, shared.FailureFields(plan.RecordID, shared.FailureKindValidation, planOperationConstant, nil)...)
			continue
		}
		plans = append(plans, plan)
	}

	return plans, rejections
}

func occupancyKey(containerPath string, shortName string) string {
	return strings.TrimSuffix(strings.TrimSpace(containerPath), "/") + "\x00" + strings.ToLower(shortName)
}

func isOccupiedByOther(occupants []registry.RecordID, self registry.RecordID) bool {
	for _, occupant := range occupants {
		if occupant != self {
			return true
		}
	}
	return false
}
