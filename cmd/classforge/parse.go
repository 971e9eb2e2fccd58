package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/classforge/internal/javasrc"
	"github.com/dusk-indust/classforge/internal/model"
)

// parseOutput is the JSON printed by the parse command.
type parseOutput struct {
	Class   model.ClassDescriptor `json:"class"`
	Skipped []string              `json:"skipped,omitempty"`
}

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a source file into a class descriptor (JSON)",
		Long:  "Parse reads a source file, or stdin when the file is omitted or '-', and prints the class descriptor as JSON.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			res, err := a.parser().ParseDetailed(src)
			if err != nil {
				if errors.Is(err, javasrc.ErrNoDeclaration) {
					return fmt.Errorf("could not parse source %s: %w", name, err)
				}
				return err
			}
			if len(res.Skipped) > 0 {
				a.log.Debug("skipped members", "file", name, "members", res.Skipped)
			}
			return writeJSON(cmd.OutOrStdout(), parseOutput{Class: res.Class, Skipped: res.Skipped})
		},
	}
}

// readInput returns the content of args[0], or of stdin when there is no
// argument or it is "-".
func readInput(cmd *cobra.Command, args []string) (content, name string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = w.Write(append(out, '\n'))
	return err
}
