package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agentengine/pkg/models"
)

func validLinearWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:   "wf1",
		Name: "linear",
		Nodes: []*models.Node{
			{ID: "start", Name: "Start", Type: models.NodeTypeStart, Config: map[string]interface{}{}},
			{ID: "end", Name: "End", Type: models.NodeTypeEnd, Config: map[string]interface{}{}},
		},
		Edges: []*models.Edge{
			{ID: "e1", From: "start", To: "end"},
		},
	}
}

func TestWorkflow_Validate_AcceptsWellFormedLinearWorkflow(t *testing.T) {
	wf := validLinearWorkflow()
	assert.NoError(t, wf.Validate())
}

func TestWorkflow_Validate_RejectsMissingName(t *testing.T) {
	wf := validLinearWorkflow()
	wf.Name = ""
	assert.Error(t, wf.Validate())
}

func TestWorkflow_Validate_RejectsMissingStartNode(t *testing.T) {
	wf := validLinearWorkflow()
	wf.Nodes[0].Type = models.NodeTypeEnd
	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start node")
}

func TestWorkflow_Validate_RejectsDuplicateNodeIDs(t *testing.T) {
	wf := validLinearWorkflow()
	wf.Nodes = append(wf.Nodes, &models.Node{ID: "start", Name: "Start2", Type: models.NodeTypeStart, Config: map[string]interface{}{}})
	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node ID")
}

func TestWorkflow_Validate_RejectsUnreachableNode(t *testing.T) {
	wf := validLinearWorkflow()
	wf.Nodes = append(wf.Nodes, &models.Node{ID: "orphan", Name: "Orphan", Type: models.NodeTypeTransform, Config: map[string]interface{}{}})
	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestWorkflow_Validate_RejectsEdgeToUnknownNode(t *testing.T) {
	wf := validLinearWorkflow()
	wf.Edges = append(wf.Edges, &models.Edge{ID: "e2", From: "start", To: "missing"})
	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-existent target")
}

func TestWorkflow_Validate_RejectsEndNodeWithOutgoingEdge(t *testing.T) {
	wf := validLinearWorkflow()
	wf.Edges = append(wf.Edges, &models.Edge{ID: "e2", From: "end", To: "start"})
	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not have outgoing edges")
}

func TestNode_Validate_RejectsUnknownType(t *testing.T) {
	n := &models.Node{ID: "n1", Name: "N", Type: models.NodeType("bogus")}
	assert.Error(t, n.Validate())
}

func TestWorkflow_GetNode_ReturnsErrNodeNotFound(t *testing.T) {
	wf := validLinearWorkflow()
	_, err := wf.GetNode("missing")
	assert.ErrorIs(t, err, models.ErrNodeNotFound)
}

func TestWorkflow_AddNode_RejectsDuplicateID(t *testing.T) {
	wf := validLinearWorkflow()
	err := wf.AddNode(&models.Node{ID: "start", Name: "Dup", Type: models.NodeTypeStart})
	assert.Error(t, err)
}

func TestWorkflow_AddEdge_RejectsUnknownSourceNode(t *testing.T) {
	wf := validLinearWorkflow()
	err := wf.AddEdge(&models.Edge{ID: "e2", From: "missing", To: "end"})
	assert.Error(t, err)
}

func TestWorkflow_RemoveNode_RemovesAssociatedEdges(t *testing.T) {
	wf := validLinearWorkflow()
	require.NoError(t, wf.RemoveNode("end"))
	assert.Len(t, wf.Nodes, 1)
	assert.Empty(t, wf.Edges)
}

func TestWorkflow_Clone_ProducesIndependentDeepCopy(t *testing.T) {
	wf := validLinearWorkflow()
	clone, err := wf.Clone()
	require.NoError(t, err)

	clone.Nodes[0].Name = "changed"
	assert.Equal(t, "Start", wf.Nodes[0].Name)
	assert.Equal(t, wf.ID, clone.ID)
}

func TestEdge_Validate_RequiresFromAndTo(t *testing.T) {
	assert.Error(t, (&models.Edge{ID: "e1", To: "n2"}).Validate())
	assert.Error(t, (&models.Edge{ID: "e1", From: "n1"}).Validate())
	assert.NoError(t, (&models.Edge{ID: "e1", From: "n1", To: "n2"}).Validate())
}
