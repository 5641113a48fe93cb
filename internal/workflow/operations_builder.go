package workflow

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/scaffold"
)

const (
	unsupportedOperationTemplateConstant = "unsupported workflow operation: %s"
	stepOptionsErrorTemplateConstant     = "invalid options for %s step: %w"
	optionListSeparatorConstant          = ","
)

type auditReportOptions struct {
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ensureLayoutOptions struct {
	Layout []string `mapstructure:"layout"`
}

// BuildOperations converts the declarative configuration into executable operations.
func BuildOperations(configuration Configuration) ([]Operation, error) {
	operations := make([]Operation, 0, len(configuration.Steps))
	for stepIndex := range configuration.Steps {
		operation, buildError := buildOperationFromStep(configuration.Steps[stepIndex])
		if buildError != nil {
			return nil, buildError
		}
		operations = append(operations, operation)
	}
	return operations, nil
}

func buildOperationFromStep(step StepConfiguration) (Operation, error) {
	switch step.Operation {
	case OperationTypeAuditReport:
		return buildAuditReportOperation(step)
	case OperationTypeRenameRecords:
		if decodeError := decodeStepOptions(step, &struct{}{}); decodeError != nil {
			return nil, decodeError
		}
		return &RenameRecordsOperation{}, nil
	case OperationTypeEnableFeature:
		if decodeError := decodeStepOptions(step, &struct{}{}); decodeError != nil {
			return nil, decodeError
		}
		return &EnableFeatureOperation{}, nil
	case OperationTypeEnsureLayout:
		return buildEnsureLayoutOperation(step)
	default:
		return nil, fmt.Errorf(unsupportedOperationTemplateConstant, step.Operation)
	}
}

func buildAuditReportOperation(step StepConfiguration) (Operation, error) {
	var options auditReportOptions
	if decodeError := decodeStepOptions(step, &options); decodeError != nil {
		return nil, decodeError
	}

	format, formatError := audit.ParseFormat(options.Format)
	if formatError != nil {
		return nil, fmt.Errorf(stepOptionsErrorTemplateConstant, step.Operation, formatError)
	}

	return &AuditReportOperation{Format: format, OutputPath: strings.TrimSpace(options.Output)}, nil
}

func buildEnsureLayoutOperation(step StepConfiguration) (Operation, error) {
	var options ensureLayoutOptions
	if decodeError := decodeStepOptions(step, &options); decodeError != nil {
		return nil, decodeError
	}

	layout, layoutError := scaffold.SanitizeLayout(options.Layout)
	if layoutError != nil {
		return nil, fmt.Errorf(stepOptionsErrorTemplateConstant, step.Operation, layoutError)
	}

	return &EnsureLayoutOperation{Layout: layout}, nil
}

// decodeStepOptions maps the step's with block onto target. Unknown keys are errors.
func decodeStepOptions(step StepConfiguration, target any) error {
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(optionListSeparatorConstant),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           target,
	})
	if decoderError != nil {
		return decoderError
	}
	if decodeError := decoder.Decode(step.Options); decodeError != nil {
		return fmt.Errorf(stepOptionsErrorTemplateConstant, step.Operation, decodeError)
	}
	return nil
}
