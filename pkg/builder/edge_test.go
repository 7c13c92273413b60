package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEdge_ShouldAutoGenerateID(t *testing.T) {
	edge, err := NewEdge("n1", "n2").Build()
	require.NoError(t, err)
	assert.Equal(t, "edge_n1_n2", edge.ID)
}

func TestNewEdge_ShouldApplySourceHandle(t *testing.T) {
	edge, err := NewEdge("n1", "n2", WithSourceHandle("true")).Build()
	require.NoError(t, err)
	assert.Equal(t, "true", edge.SourceHandle)
}

func TestNewEdge_ShouldRejectEmptySourceHandle(t *testing.T) {
	_, err := NewEdge("n1", "n2", WithSourceHandle("")).Build()
	assert.Error(t, err)
}

func TestNewEdge_WhenFalse_ShouldNegateCondition(t *testing.T) {
	edge, err := NewEdge("n1", "n2", WhenFalse("state.ready")).Build()
	require.NoError(t, err)
	assert.Equal(t, "!(state.ready)", edge.Condition)
}

func TestNewEdge_WhenEqual_ShouldBuildEqualityCondition(t *testing.T) {
	edge, err := NewEdge("n1", "n2", WhenEqual("output.status", "success")).Build()
	require.NoError(t, err)
	assert.Equal(t, `output.status == "success"`, edge.Condition)
}

func TestNewEdge_ShouldFailValidation_WhenToMissing(t *testing.T) {
	_, err := NewEdge("n1", "").Build()
	assert.Error(t, err)
}
