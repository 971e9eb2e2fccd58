package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the command line with stdin and returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../testdata/fixtures/java_project")
	require.NoError(t, err)
	return abs
}

// importedProject returns a project root whose diagram holds the fixture.
func importedProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	out, err := runCLI(t, "", "--project-root", root, "import", fixtureDir(t))
	require.NoError(t, err)
	require.Contains(t, out, "7 classes (1 ghost), 5 relationships")
	return root
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestParse(t *testing.T) {
	root := t.TempDir()

	t.Run("stdin", func(t *testing.T) {
		out, err := runCLI(t, "public class Dog extends Animal { private String name; }", "--project-root", root, "parse")
		require.NoError(t, err)

		var got parseOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "Dog", got.Class.Name)
		assert.Equal(t, "Animal", got.Class.Parent)
	})

	t.Run("file", func(t *testing.T) {
		out, err := runCLI(t, "", "--project-root", root, "parse", filepath.Join(fixtureDir(t), "Main.java"))
		require.NoError(t, err)
		assert.Contains(t, out, `"isEntryPoint": true`)
	})

	t.Run("failure", func(t *testing.T) {
		_, err := runCLI(t, "nothing to see", "--project-root", root, "parse")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not parse source")
	})
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	parsed, err := runCLI(t, "public interface Shape { double area(); }", "--project-root", root, "parse")
	require.NoError(t, err)

	out, err := runCLI(t, parsed, "--project-root", root, "generate")
	require.NoError(t, err)
	assert.Equal(t, "public interface Shape {\n    double area();\n}\n", out)
}

func TestGenerate_FromNode(t *testing.T) {
	root := importedProject(t)

	out, err := runCLI(t, "", "--project-root", root, "generate", "--node", "node-owner")
	require.NoError(t, err)
	assert.Contains(t, out, "public class Owner {")
	assert.Contains(t, out, "private Dog[] dogs;")

	_, err = runCLI(t, "", "--project-root", root, "generate", "--node", "node-zebra")
	assert.Error(t, err)
}

func TestImportAndDiagram(t *testing.T) {
	root := importedProject(t)

	_, err := os.Stat(filepath.Join(root, ".classforge", "diagram.json"))
	require.NoError(t, err, "default json store lives under the project root")

	t.Run("mermaid", func(t *testing.T) {
		out, err := runCLI(t, "", "--project-root", root, "diagram")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "classDiagram\n"))
		assert.Contains(t, out, "  Dog --|> Animal\n")
		assert.Contains(t, out, `  Owner --> "0..*" Dog`)
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCLI(t, "", "--project-root", root, "diagram", "--format", "json", "--name", "zoo")
		require.NoError(t, err)
		var doc struct {
			Name  string            `json:"name"`
			Nodes []json.RawMessage `json:"nodes"`
			Edges []json.RawMessage `json:"edges"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "zoo", doc.Name)
		assert.Len(t, doc.Nodes, 7)
		assert.Len(t, doc.Edges, 5)
	})

	t.Run("java to directory", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "src")
		_, err := runCLI(t, "", "--project-root", root, "diagram", "--format", "java", "--out", outDir)
		require.NoError(t, err)
		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		assert.Len(t, entries, 6)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := runCLI(t, "", "--project-root", root, "diagram", "--format", "svg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})
}

func TestImport_Idempotent(t *testing.T) {
	root := importedProject(t)
	before, err := os.ReadFile(filepath.Join(root, ".classforge", "diagram.json"))
	require.NoError(t, err)

	_, err = runCLI(t, "", "--project-root", root, "import", fixtureDir(t))
	require.NoError(t, err)
	after, err := os.ReadFile(filepath.Join(root, ".classforge", "diagram.json"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestValidate(t *testing.T) {
	root := importedProject(t)

	out, err := runCLI(t, "", "--project-root", root, "validate", "class", "implementation", "interface")
	require.NoError(t, err)
	assert.Equal(t, "valid: class -[implementation]-> interface\n", out)

	out, err = runCLI(t, "", "--project-root", root, "validate", "node-dog", "inheritance", "node-pet")
	require.NoError(t, err)
	assert.Equal(t, "invalid: class -[inheritance]-> interface\n", out)

	_, err = runCLI(t, "", "--project-root", root, "validate", "node-zebra", "association", "class")
	assert.Error(t, err)
}

func TestDepsAndImpact(t *testing.T) {
	root := importedProject(t)

	out, err := runCLI(t, "", "--project-root", root, "deps", "node-owner", "--depth", "1")
	require.NoError(t, err)
	assert.Equal(t, "1  node-owner -> node-dog\n", out)

	out, err = runCLI(t, "", "--project-root", root, "deps", "node-main", "--dependents")
	require.NoError(t, err)
	assert.Equal(t, "no dependents for node-main\n", out)

	out, err = runCLI(t, "", "--project-root", root, "impact", "node-animal")
	require.NoError(t, err)
	assert.Contains(t, out, "directly affected:     node-dog\n")
	assert.Contains(t, out, "transitively affected: node-dog, node-owner\n")
	assert.Contains(t, out, "risk score:            0.33\n")
}

func TestConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "classforge.yml"),
		[]byte("storePath: model/classes.json\nbodyLocator: treesitter\n"), 0o644))

	_, err := runCLI(t, "", "--project-root", root, "import", filepath.Join(fixtureDir(t), "Dog.java"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "model", "classes.json"))
	assert.NoError(t, err)

	_, err = runCLI(t, "", "--project-root", root, "--log-format", "xml", "version")
	assert.NoError(t, err, "version skips config")

	_, err = runCLI(t, "", "--project-root", root, "--log-format", "xml", "diagram")
	assert.Error(t, err)
}
