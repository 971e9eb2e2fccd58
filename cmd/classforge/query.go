package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/classforge/internal/graph"
	"github.com/dusk-indust/classforge/internal/model"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <source> <kind> <target>",
		Short: "Check whether an edge kind may connect two stereotypes or nodes",
		Long: `Validate applies the connection rules. Each endpoint is a stereotype
(class, abstract, interface, enum, note) or a diagram node id such as
node-dog, in which case the node's stereotype is read from the store.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var store graph.Store
			if strings.HasPrefix(args[0], "node-") || strings.HasPrefix(args[2], "node-") {
				s, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				defer s.Close()
				store = s
			}

			src, err := stereotypeOf(ctx, store, args[0])
			if err != nil {
				return err
			}
			tgt, err := stereotypeOf(ctx, store, args[2])
			if err != nil {
				return err
			}
			kind := model.RelationshipKind(strings.ToLower(args[1]))

			verdict := "invalid"
			if graph.IsValidConnection(src, tgt, kind) {
				verdict = "valid"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -[%s]-> %s\n", verdict, src, kind, tgt)
			return nil
		},
	}
}

func stereotypeOf(ctx context.Context, store graph.Store, arg string) (model.Stereotype, error) {
	if store == nil || !strings.HasPrefix(arg, "node-") {
		return model.Stereotype(strings.ToLower(arg)), nil
	}
	n, err := store.GetNode(ctx, arg)
	if err != nil {
		return "", fmt.Errorf("get node: %w", err)
	}
	if n == nil {
		return "", fmt.Errorf("node not found: %s", arg)
	}
	if n.Type == graph.NodeTypeNote {
		return model.StereotypeNote, nil
	}
	return n.Data.Stereotype, nil
}

func newDepsCmd(a *app) *cobra.Command {
	var (
		dependents bool
		maxDepth   int
	)

	cmd := &cobra.Command{
		Use:   "deps <nodeId>",
		Short: "List the classes a class depends on, or its dependents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			direction := graph.DirectionDependencies
			if dependents {
				direction = graph.DirectionDependents
			}
			chains, err := store.GetDependencies(ctx, args[0], direction, maxDepth)
			if err != nil {
				return fmt.Errorf("get dependencies: %w", err)
			}

			w := cmd.OutOrStdout()
			if len(chains) == 0 {
				fmt.Fprintf(w, "no %s for %s\n", direction, args[0])
				return nil
			}
			for _, c := range chains {
				fmt.Fprintf(w, "%d  %s\n", c.Depth, strings.Join(c.Nodes, " -> "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dependents, "dependents", false, "follow edges backwards to the classes that refer to this one")
	cmd.Flags().IntVar(&maxDepth, "depth", 5, "maximum traversal depth")
	return cmd
}

func newImpactCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "impact <nodeId>...",
		Short: "Show which classes are affected by changing the given classes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := store.AssessImpact(ctx, args)
			if err != nil {
				return fmt.Errorf("assess impact: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "directly affected:     %s\n", joinOrNone(res.DirectlyAffected))
			fmt.Fprintf(w, "transitively affected: %s\n", joinOrNone(res.TransitivelyAffected))
			fmt.Fprintf(w, "risk score:            %.2f\n", res.RiskScore)
			return nil
		},
	}
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}
