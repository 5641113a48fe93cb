package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/naming"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/remediation/shared"
)

const (
	loadFailureDetailConstant         = "Failed to load"
	featureDisabledTemplateConstant   = "%s disabled"
	featureUnreadableTemplateConstant = "%s unreadable, treated as disabled"
	classifyLoadOperationConstant     = "classify_load"
	classifyFeatureOperationConstant  = "classify_feature"
	loadFailureLogMessageConstant     = "record failed to load"
	featureUnreadableLogMessage       = "feature flag unreadable"
	defaultFeatureTypeConstant        = "StaticMesh"
	defaultFeatureFlagConstant        = "nanite"
)

// PayloadLoader loads the payload of a record.
type PayloadLoader func(executionContext context.Context, identifier registry.RecordID) (registry.Payload, error)

// FeatureRule names the flag expected to be on for records of one type.
type FeatureRule struct {
	TypeTag  string `mapstructure:"type"`
	FlagName string `mapstructure:"flag"`
}

// DefaultFeatureRule expects nanite to be enabled on every static mesh.
func DefaultFeatureRule() FeatureRule {
	return FeatureRule{TypeTag: defaultFeatureTypeConstant, FlagName: defaultFeatureFlagConstant}
}

// Applies reports whether the rule covers records of typeTag.
func (rule FeatureRule) Applies(typeTag string) bool {
	return len(rule.TypeTag) > 0 && len(rule.FlagName) > 0 && rule.TypeTag == typeTag
}

// Classifier evaluates the load, naming, and feature checks for a record.
// It never mutates the registry.
type Classifier struct {
	rules   naming.Rules
	feature FeatureRule
	logger  *zap.Logger
}

// NewClassifier constructs a Classifier.
func NewClassifier(rules naming.Rules, feature FeatureRule, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{rules: rules, feature: feature, logger: logger}
}

// Classify returns the issues of record in the order load, naming, feature. A
// record that fails to load is still checked for naming but not for features.
func (classifier *Classifier) Classify(executionContext context.Context, record registry.Record, loader PayloadLoader) []Issue {
	var issues []Issue

	payload, loaded := classifier.load(executionContext, record, loader)
	if !loaded {
		issues = append(issues, Issue{RecordID: record.ID, Kind: IssueKindLoadFailure, Detail: loadFailureDetailConstant})
	}

	if violation, violated := classifier.rules.Validate(record.ShortName); violated {
		issues = append(issues, Issue{RecordID: record.ID, Kind: IssueKindNamingViolation, Detail: string(violation)})
	}

	if loaded && classifier.feature.Applies(record.TypeTag) {
		if issue, disabled := classifier.checkFeature(record, payload); disabled {
			issues = append(issues, issue)
		}
	}

	return issues
}

func (classifier *Classifier) load(executionContext context.Context, record registry.Record, loader PayloadLoader) (registry.Payload, bool) {
	if !record.Loadable {
		classifier.logger.Warn(loadFailureLogMessageConstant, shared.FailureFields(record.ID, shared.FailureKindAdapter, classifyLoadOperationConstant, registry.ErrPayloadUnavailable)...)
		return nil, false
	}
	if loader == nil {
		return nil, false
	}

	payload, loadError := loader(executionContext, record.ID)
	if loadError != nil {
		classifier.logger.Warn(loadFailureLogMessageConstant, shared.FailureFields(record.ID, shared.FailureKindAdapter, classifyLoadOperationConstant, loadError)...)
		return nil, false
	}
	if payload == nil {
		classifier.logger.Warn(loadFailureLogMessageConstant, shared.FailureFields(record.ID, shared.FailureKindAdapter, classifyLoadOperationConstant, registry.ErrPayloadUnavailable)...)
		return nil, false
	}
	return payload, true
}

func (classifier *Classifier) checkFeature(record registry.Record, payload registry.Payload) (Issue, bool) {
	enabled, readError := payload.GetFlag(classifier.feature.FlagName)
	if readError != nil {
		classifier.logger.Warn(featureUnreadableLogMessage, shared.FailureFields(record.ID, shared.FailureKindAdapter, classifyFeatureOperationConstant, readError)...)
		return Issue{
			RecordID: record.ID,
			Kind:     IssueKindFeatureDisabled,
			Detail:   fmt.Sprintf(featureUnreadableTemplateConstant, classifier.feature.FlagName),
		}, true
	}
	if enabled {
		return Issue{}, false
	}
	return Issue{
		RecordID: record.ID,
		Kind:     IssueKindFeatureDisabled,
		Detail:   fmt.Sprintf(featureDisabledTemplateConstant, classifier.feature.FlagName),
	}, true
}
