package seeder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEvaluationOrderKeepsInsertionOrder(t *testing.T) {
	g := NewDependencyGraph()
	g.AddColumn("a", nil)
	g.AddColumn("b", nil)
	g.AddColumn("c", nil)

	order, err := g.BuildEvaluationOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestBuildEvaluationOrderMovesDependenciesFirst(t *testing.T) {
	g := NewDependencyGraph()
	g.AddColumn("BookedBeyondBreach", []string{"CurrentStatus"})
	g.AddColumn("CurrentStatus", []string{"CurrentStatusCode"})
	g.AddColumn("PatientID", nil)
	g.AddColumn("CurrentStatusCode", nil)
	g.AddColumn("OperationDate", []string{"ReadyForCareDate", "SurgeryReadyDate"})

	order, err := g.BuildEvaluationOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"CurrentStatusCode", "CurrentStatus", "BookedBeyondBreach", "PatientID", "OperationDate"}, order)
}

func TestBuildEvaluationOrderDetectsCycles(t *testing.T) {
	g := NewDependencyGraph()
	g.AddColumn("a", []string{"b"})
	g.AddColumn("b", []string{"a"})

	_, err := g.BuildEvaluationOrder()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestBuildEvaluationOrderIgnoresSelfReference(t *testing.T) {
	g := NewDependencyGraph()
	g.AddColumn("a", []string{"a"})

	order, err := g.BuildEvaluationOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, order)
}
