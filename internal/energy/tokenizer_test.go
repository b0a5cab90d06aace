package energy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 0, EstimateTokens("   \t\n"))
	assert.Equal(t, 1, EstimateTokens("test"))
	assert.Equal(t, 3, EstimateTokens("hello world"))
	// word, space, single-symbol, word runs
	assert.Equal(t, 3, EstimateTokens("a,b"))
	// "What" " " "is" " " "2" "+" "2" "?"
	assert.Equal(t, 8, EstimateTokens("What is 2+2?"))
}

func TestEstimateTokens_NonEmptyFloor(t *testing.T) {
	assert.GreaterOrEqual(t, EstimateTokens("."), 1)
	assert.GreaterOrEqual(t, EstimateTokens("x"), 1)
}

func TestDetectTaskType(t *testing.T) {
	assert.Equal(t, TaskAnalysis, DetectTaskType("Analyze the quarterly sales data"))
	assert.Equal(t, TaskGeneration, DetectTaskType("Write a short story about a robot"))
	assert.Equal(t, TaskClassification, DetectTaskType("Classify these reviews by sentiment"))
	assert.Equal(t, TaskSummarization, DetectTaskType("Summarize this article"))
	assert.Equal(t, TaskStandard, DetectTaskType("What is 2+2?"))
}

func TestDetectTaskType_PriorityOrder(t *testing.T) {
	// "analyze" outranks "write" even when both appear.
	assert.Equal(t, TaskAnalysis, DetectTaskType("Analyze the results and write a report"))
	// "write" outranks "classify".
	assert.Equal(t, TaskGeneration, DetectTaskType("Write code to classify images"))
}

func TestDetectOutputFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectOutputFormat("Return the result as JSON"))
	assert.Equal(t, FormatBullets, DetectOutputFormat("Give me bullet points"))
	assert.Equal(t, FormatTable, DetectOutputFormat("Present this as a table"))
	assert.Equal(t, FormatMarkdownHeaders, DetectOutputFormat("Use markdown sections"))
	assert.Equal(t, FormatProse, DetectOutputFormat("Tell me about whales"))
	// json outranks table when both appear.
	assert.Equal(t, FormatJSON, DetectOutputFormat("a json table of values"))
}
