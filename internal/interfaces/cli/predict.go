package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/MarkIP-Intelligence/pkg/client"
)

func newPredictCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the outcome of a hypothetical opposition",
		Long:  "Reads a case description (applicant and opponent marks with their\ngoods and services) from a JSON file, or from stdin with --input -,\nand predicts the opposition outcome.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}
			input, err := readCaseInput(cmd, inputPath)
			if err != nil {
				return err
			}
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			out, err := cliCtx.Client.Predictions().PredictCase(cmd.Context(), *input)
			if err != nil {
				return err
			}
			return printResult(cmd, out)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "case description JSON file (\"-\" for stdin)")
	return cmd
}

func readCaseInput(cmd *cobra.Command, path string) (*client.CaseInput, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read case input: %w", err)
	}

	var input client.CaseInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse case input: %w", err)
	}
	if len(input.ApplicantMarks) == 0 || len(input.OpponentMarks) == 0 {
		return nil, fmt.Errorf("case input needs at least one applicant and one opponent mark")
	}
	return &input, nil
}
