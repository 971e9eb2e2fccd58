package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is overridden with -ldflags at release time.
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd(stderr)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return root.ExecuteContext(ctx)
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "classforge",
		Short: "Convert between Java-like class sources and a UML class diagram",
		Long: `classforge parses Java-like class, interface and enum declarations into
structural descriptors, merges them into a persisted class diagram, and
renders the diagram back as Mermaid, JSON or regenerated source.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, stderr)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.projectRoot, "project-root", ".", "path to the project holding classforge.yml")
	pf.StringVar(&a.storeBackend, "store", "", "diagram store backend: json, memory or kuzu")
	pf.StringVar(&a.storePath, "store-path", "", "diagram store location, relative to the project root")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		newParseCmd(a),
		newGenerateCmd(a),
		newImportCmd(a),
		newWatchCmd(a),
		newDiagramCmd(a),
		newValidateCmd(a),
		newDepsCmd(a),
		newImpactCmd(a),
		newServeMCPCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// The version needs no config.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
