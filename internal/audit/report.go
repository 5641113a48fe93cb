package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Format selects how a Report is rendered.
type Format string

// Supported report formats.
const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

const (
	unsupportedFormatTemplateConstant = "unsupported report format %q (expected text, csv, or json)"
	noneFoundLineConstant             = "  None found.\n"
	issueLineTemplateConstant         = "  %s: %s\n"
	countLineTemplateConstant         = "  %s: %d\n"
	summaryTitleConstant              = "Summary"
	recordsScannedLabelConstant       = "Records scanned"
	csvHeaderRecordIDConstant         = "record_id"
	csvHeaderKindConstant             = "kind"
	csvHeaderDetailConstant           = "detail"
	jsonIndentConstant                = "  "
)

var sectionTitles = map[IssueKind]string{
	IssueKindLoadFailure:     "Load Failures",
	IssueKindNamingViolation: "Naming Violations",
	IssueKindFeatureDisabled: "Disabled Features",
	IssueKindUnused:          "Unused Records",
}

// ParseFormat validates a format name.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, raw)
	}
}

// Renderer writes reports in one format.
type Renderer struct {
	format   Format
	colorize bool
}

// NewRenderer constructs a Renderer. colorize only affects the text format.
func NewRenderer(format Format, colorize bool) Renderer {
	return Renderer{format: format, colorize: colorize}
}

// Render writes report to writer.
func (renderer Renderer) Render(writer io.Writer, report Report) error {
	switch renderer.format {
	case FormatCSV:
		return renderCSV(writer, report)
	case FormatJSON:
		return renderJSON(writer, report)
	case FormatText, "":
		return renderer.renderText(writer, report)
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, renderer.format)
	}
}

func (renderer Renderer) renderText(writer io.Writer, report Report) error {
	headerStyle := color.New(color.FgCyan, color.Bold)
	if renderer.colorize {
		headerStyle.EnableColor()
	} else {
		headerStyle.DisableColor()
	}
	header := headerStyle.SprintFunc()

	builder := &strings.Builder{}
	for _, kind := range IssueKinds() {
		fmt.Fprintln(builder, header(sectionTitles[kind]))
		issues := report.IssuesOfKind(kind)
		if len(issues) == 0 {
			builder.WriteString(noneFoundLineConstant)
		}
		for _, issue := range issues {
			fmt.Fprintf(builder, issueLineTemplateConstant, issue.RecordID, issue.Detail)
		}
		builder.WriteString("\n")
	}

	fmt.Fprintln(builder, header(summaryTitleConstant))
	fmt.Fprintf(builder, countLineTemplateConstant, recordsScannedLabelConstant, report.Summary.RecordsScanned)
	for _, kind := range IssueKinds() {
		fmt.Fprintf(builder, countLineTemplateConstant, sectionTitles[kind], report.Summary.Counts[kind])
	}

	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

func renderCSV(writer io.Writer, report Report) error {
	csvWriter := csv.NewWriter(writer)
	if writeError := csvWriter.Write([]string{csvHeaderRecordIDConstant, csvHeaderKindConstant, csvHeaderDetailConstant}); writeError != nil {
		return writeError
	}
	for _, issue := range report.Issues {
		if writeError := csvWriter.Write([]string{issue.RecordID.String(), string(issue.Kind), issue.Detail}); writeError != nil {
			return writeError
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func renderJSON(writer io.Writer, report Report) error {
	if report.Issues == nil {
		report.Issues = []Issue{}
	}
	if report.Summary.Counts == nil {
		report.Summary = summarize(report.Summary.RecordsScanned, report.Issues)
	}
	encoded, encodeError := json.MarshalIndent(report, "", jsonIndentConstant)
	if encodeError != nil {
		return encodeError
	}
	encoded = append(encoded, '\n')
	_, writeError := writer.Write(encoded)
	return writeError
}
