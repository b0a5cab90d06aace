package energy

import "strings"

// TaskType is the guessed intent of a prompt.
type TaskType string

const (
	TaskAnalysis       TaskType = "analysis"
	TaskGeneration     TaskType = "generation"
	TaskClassification TaskType = "classification"
	TaskSummarization  TaskType = "summarization"
	TaskStandard       TaskType = "standard"
)

// OutputFormat is the structure the prompt asks the answer to take.
type OutputFormat string

const (
	FormatJSON            OutputFormat = "json"
	FormatBullets         OutputFormat = "bullets"
	FormatTable           OutputFormat = "table"
	FormatMarkdownHeaders OutputFormat = "markdown_headers"
	FormatProse           OutputFormat = "prose"
)

// Keyword cues checked in fixed priority order; first match wins.
var taskKeywords = []struct {
	task     TaskType
	keywords []string
}{
	{TaskAnalysis, []string{"analyze", "analyse", "evaluate", "assess", "examine", "investigate"}},
	{TaskGeneration, []string{"write", "create", "generate", "compose", "draft", "produce"}},
	{TaskClassification, []string{"classify", "categorize", "label", "identify which", "sort into"}},
	{TaskSummarization, []string{"summarize", "summarise", "tl;dr", "condense", "brief overview"}},
}

var formatKeywords = []struct {
	format   OutputFormat
	keywords []string
}{
	{FormatJSON, []string{"json"}},
	{FormatBullets, []string{"bullet", "bulleted", "list of points"}},
	{FormatTable, []string{"table", "tabular"}},
	{FormatMarkdownHeaders, []string{"markdown", "headings", "headers"}},
}

// DetectTaskType guesses the task type from keyword cues in the prompt.
// Priority: analysis > generation > classification > summarization.
// No match means "standard".
func DetectTaskType(prompt string) TaskType {
	lower := strings.ToLower(prompt)
	for _, set := range taskKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.task
			}
		}
	}
	return TaskStandard
}

// DetectOutputFormat guesses the requested answer structure.
// Priority: json > bullets > table > markdown_headers; default prose.
func DetectOutputFormat(prompt string) OutputFormat {
	lower := strings.ToLower(prompt)
	for _, set := range formatKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.format
			}
		}
	}
	return FormatProse
}
