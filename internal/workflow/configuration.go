package workflow

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant        = "failed to load workflow configuration: %w"
	configurationParseErrorTemplateConstant       = "failed to parse workflow configuration: %w"
	configurationPathRequiredMessageConstant      = "workflow configuration path must be provided"
	configurationEmptyStepsMessageConstant        = "workflow configuration must define at least one step"
	configurationOperationMissingTemplateConstant = "workflow step %d missing operation name"
)

// OperationType identifies supported workflow operations.
type OperationType string

// Supported workflow operations.
const (
	OperationTypeAuditReport   OperationType = OperationType("audit-report")
	OperationTypeRenameRecords OperationType = OperationType("rename-records")
	OperationTypeEnableFeature OperationType = OperationType("enable-feature")
	OperationTypeEnsureLayout  OperationType = OperationType("ensure-layout")
)

// Configuration describes the ordered workflow steps loaded from YAML.
type Configuration struct {
	Steps []StepConfiguration `yaml:"steps"`
}

// StepConfiguration associates an operation type with declarative options.
type StepConfiguration struct {
	Operation OperationType  `yaml:"operation"`
	Options   map[string]any `yaml:"with"`
}

// LoadConfiguration reads a workflow file from disk.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes workflow YAML. Steps may sit at the top level or
// under a workflow key.
func ParseConfiguration(content []byte) (Configuration, error) {
	var document struct {
		Steps    []StepConfiguration `yaml:"steps"`
		Workflow *Configuration      `yaml:"workflow"`
	}
	if unmarshalError := yaml.Unmarshal(content, &document); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	configuration := Configuration{Steps: document.Steps}
	if len(configuration.Steps) == 0 && document.Workflow != nil {
		configuration = *document.Workflow
	}

	if len(configuration.Steps) == 0 {
		return Configuration{}, errors.New(configurationEmptyStepsMessageConstant)
	}

	for stepIndex := range configuration.Steps {
		trimmedOperation := strings.ToLower(strings.TrimSpace(string(configuration.Steps[stepIndex].Operation)))
		if len(trimmedOperation) == 0 {
			return Configuration{}, fmt.Errorf(configurationOperationMissingTemplateConstant, stepIndex)
		}
		configuration.Steps[stepIndex].Operation = OperationType(trimmedOperation)
	}

	return configuration, nil
}
