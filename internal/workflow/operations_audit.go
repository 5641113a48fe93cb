package workflow

import (
	"context"
	"fmt"
	"os"

	"github.com/temirov/guardian/internal/audit"
)

const (
	auditWriteMessageTemplateConstant = "WORKFLOW-AUDIT: wrote report to %s\n"
	auditReportFilePermissions        = 0o644
)

// AuditReportOperation runs a read-only audit and renders the report to a file or
// to the workflow output.
type AuditReportOperation struct {
	Format     audit.Format
	OutputPath string
}

// Name identifies the operation type.
func (operation *AuditReportOperation) Name() string {
	return string(OperationTypeAuditReport)
}

// Execute runs the audit. Audits never mutate the registry, so dry-run has no effect.
func (operation *AuditReportOperation) Execute(executionContext context.Context, environment *Environment) (executionError error) {
	report, auditError := environment.AuditService.RunAudit(executionContext)
	if auditError != nil {
		return auditError
	}

	renderer := audit.NewRenderer(operation.Format, false)
	if len(operation.OutputPath) == 0 {
		return renderer.Render(environment.output(), report)
	}

	fileHandle, createError := os.OpenFile(operation.OutputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, auditReportFilePermissions)
	if createError != nil {
		return createError
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil && executionError == nil {
			executionError = closeError
		}
	}()

	if renderError := renderer.Render(fileHandle, report); renderError != nil {
		return renderError
	}

	fmt.Fprintf(environment.output(), auditWriteMessageTemplateConstant, operation.OutputPath)
	return nil
}
