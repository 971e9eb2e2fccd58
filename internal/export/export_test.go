package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/javasrc"
	"github.com/dusk-indust/classforge/internal/model"
)

func dogDiagram(t *testing.T) graph.Diagram {
	t.Helper()
	r := graph.NewResolver(graph.WithPlacer(graph.GridPlacer{Columns: 3, Spacing: 100}))
	d, err := javasrc.Parse(`
public class Dog extends Animal implements Pet {
    private String name;
    private Owner owner;
    private List<Toy> toys;
    private Dog[] friends;

    public void bark() {}
    public static Dog create(String name) { return new Dog(); }
}`)
	require.NoError(t, err)
	g, _ := r.Merge(d, graph.NewDiagram())
	require.NoError(t, g.Check())
	return g
}

func TestGenerateMermaid(t *testing.T) {
	want := `classDiagram
  class Animal
  class Dog {
    -String name
    -Owner owner
    -List~Toy~ toys
    -Dog[] friends
    +bark() void
    +create(String name)$ Dog
  }
  class Owner
  class Pet {
    <<interface>>
  }
  class Toy
  Dog --|> Animal
  Dog --> "1" Owner
  Dog ..|> Pet
  Dog --> "0..*" Toy
`
	assert.Equal(t, want, GenerateMermaid(dogDiagram(t)))
}

func TestGenerateMermaid_Empty(t *testing.T) {
	assert.Equal(t, "classDiagram\n", GenerateMermaid(graph.NewDiagram()))
}

func TestGenerateMermaid_EnumAndGenerics(t *testing.T) {
	g := graph.NewDiagram()
	g = graph.Merge(model.ClassDescriptor{
		Name:          "Color",
		Stereotype:    model.StereotypeEnum,
		EnumConstants: []string{"RED", "GREEN"},
	}, g)
	g = graph.Merge(model.ClassDescriptor{
		Name:       "Box",
		Stereotype: model.StereotypeAbstract,
		Generics:   "<T>",
	}, g)

	out := GenerateMermaid(g)
	assert.Contains(t, out, "  class Box~T~ {\n    <<abstract>>\n  }\n")
	assert.Contains(t, out, "  class Color {\n    <<enumeration>>\n    RED\n    GREEN\n  }\n")
}

func TestGenerateMermaid_EdgeLabels(t *testing.T) {
	g := dogDiagram(t)
	id := graph.EdgeID("Dog", "Owner", model.RelationshipAssociation)
	e := g.Edges[id]
	e.Data.SourceMultiplicity = "*"
	e.Data.Label = "belongs to"
	g.Edges[id] = e

	assert.Contains(t, GenerateMermaid(g), `  Dog "*" --> "1" Owner : belongs to`+"\n")
}

func TestExportDiagram(t *testing.T) {
	g := dogDiagram(t)
	exp := ExportDiagram("zoo", g)

	assert.Equal(t, "zoo", exp.Name)
	assert.NotEmpty(t, exp.ExportedAt)
	assert.Equal(t, 5, exp.Stats.NodeCount)
	assert.Equal(t, 4, exp.Stats.GhostCount)
	require.Len(t, exp.Nodes, 5)
	assert.Equal(t, "node-animal", exp.Nodes[0].ID)
	require.Len(t, exp.Edges, 4)
	assert.Equal(t, "edge-dog-animal-inheritance", exp.Edges[0].ID)

	data, err := json.Marshal(exp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"exportedAt"`)
}

func TestExportSources(t *testing.T) {
	files := ExportSources(dogDiagram(t))
	require.Len(t, files, 1, "ghost nodes produce no source")
	assert.Equal(t, "Dog.java", files[0].Path)
	assert.Contains(t, files[0].Content, "public class Dog extends Animal implements Pet {")
	assert.Contains(t, files[0].Content, "private Owner owner;")

	reparsed, err := javasrc.Parse(files[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "Animal", reparsed.Parent)
	assert.Equal(t, []string{"Pet"}, reparsed.Interfaces)
}

func TestWriteSources(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	files := ExportSources(dogDiagram(t))
	require.NoError(t, WriteSources(dir, files))

	data, err := os.ReadFile(filepath.Join(dir, "Dog.java"))
	require.NoError(t, err)
	assert.Equal(t, files[0].Content, string(data))
}
