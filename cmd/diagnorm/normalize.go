package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tecnoloc-diag/diagnosis"
	"tecnoloc-diag/formatter"
)

func newNormalizeCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "normalize [FILE]",
		Short: "Normalize a raw model answer",
		Long: `Read a raw model answer (JSON, optionally wrapped in a markdown code fence)
from FILE or stdin and print the normalized diagnosis.

Examples:
  # Normalize a saved answer
  diagnorm normalize answer.json

  # Pipe an answer and get YAML
  cat answer.json | diagnorm normalize -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			result, err := diagnosis.ParseResponse(string(data))
			if err != nil {
				return err
			}
			return formatter.DisplayResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	return cmd
}

// readInput liest die Datei aus args[0] oder stdin, wenn keine bzw. "-" angegeben ist.
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}
