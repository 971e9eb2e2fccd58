package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/classforge/internal/model"
)

// zooDiagram builds Kennel -> Dog -> Animal, Dog -> Pet and Cat -> Animal.
func zooDiagram(t *testing.T) Diagram {
	t.Helper()
	r := testResolver()
	g := NewDiagram()
	for _, d := range []model.ClassDescriptor{
		{Name: "Animal", Stereotype: model.StereotypeAbstract},
		{Name: "Pet", Stereotype: model.StereotypeInterface},
		{Name: "Dog", Stereotype: model.StereotypeClass, Parent: "Animal", Interfaces: []string{"Pet"}},
		{Name: "Cat", Stereotype: model.StereotypeClass, Parent: "Animal"},
		{Name: "Kennel", Stereotype: model.StereotypeClass, Attributes: []model.AttributeDescriptor{
			{Name: "dogs", Type: "Dog", IsArray: true},
		}},
	} {
		g, _ = r.Merge(d, g)
	}
	require.NoError(t, g.Check())
	return g
}

func TestDependencies(t *testing.T) {
	g := zooDiagram(t)

	chains := Dependencies(g, "node-kennel", DirectionDependencies, 5)
	require.Len(t, chains, 3)
	assert.Equal(t, []string{"node-kennel", "node-dog"}, chains[0].Nodes)
	assert.Equal(t, 1, chains[0].Depth)
	assert.Equal(t, []string{"node-kennel", "node-dog", "node-animal"}, chains[1].Nodes)
	assert.Equal(t, []string{"node-kennel", "node-dog", "node-pet"}, chains[2].Nodes)

	shallow := Dependencies(g, "node-kennel", DirectionDependencies, 1)
	assert.Len(t, shallow, 1)

	dependents := Dependencies(g, "node-animal", DirectionDependents, 5)
	var reached []string
	for _, c := range dependents {
		reached = append(reached, c.Nodes[len(c.Nodes)-1])
	}
	assert.Equal(t, []string{"node-cat", "node-dog", "node-kennel"}, reached)

	assert.Nil(t, Dependencies(g, "node-kennel", DirectionDependencies, 0))
}

func TestImpact(t *testing.T) {
	g := zooDiagram(t)

	res := Impact(g, []string{"node-animal"})
	assert.Equal(t, []string{"node-cat", "node-dog"}, res.DirectlyAffected)
	assert.Equal(t, []string{"node-cat", "node-dog", "node-kennel"}, res.TransitivelyAffected)
	assert.InDelta(t, 3.0/5.0, res.RiskScore, 1e-9)

	none := Impact(g, []string{"node-kennel"})
	assert.Empty(t, none.DirectlyAffected)
	assert.Zero(t, none.RiskScore)
}
