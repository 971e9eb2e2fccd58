package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/javasrc"
	"github.com/dusk-indust/classforge/internal/model"
)

func newGenerateCmd(a *app) *cobra.Command {
	var nodeID string

	cmd := &cobra.Command{
		Use:   "generate [descriptor.json]",
		Short: "Render a class descriptor, or a diagram node, as source",
		Long: `Generate reads a JSON class descriptor (as printed by parse) from a file or
stdin and prints the class as source. With --node it regenerates a class from
the stored diagram instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if nodeID != "" {
				return generateFromNode(cmd, a, nodeID)
			}

			data, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			desc, err := decodeDescriptor([]byte(data))
			if err != nil {
				return fmt.Errorf("decode %s: %w", name, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), javasrc.Generate(desc))
			return err
		},
	}
	cmd.Flags().StringVar(&nodeID, "node", "", "diagram node id to regenerate, e.g. node-dog")
	return cmd
}

// decodeDescriptor accepts either a bare descriptor or the parse command's
// {"class": ...} wrapper.
func decodeDescriptor(data []byte) (model.ClassDescriptor, error) {
	var wrapped struct {
		Class *model.ClassDescriptor `json:"class"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return model.ClassDescriptor{}, err
	}
	if wrapped.Class != nil {
		return *wrapped.Class, nil
	}
	var desc model.ClassDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return model.ClassDescriptor{}, err
	}
	return desc, nil
}

func generateFromNode(cmd *cobra.Command, a *app, nodeID string) error {
	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	desc, ok := graph.DescriptorFor(d, nodeID)
	if !ok {
		return fmt.Errorf("node not found: %s", nodeID)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), javasrc.Generate(desc))
	return err
}
