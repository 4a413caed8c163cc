package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/MarkIP-Intelligence/pkg/client"
)

func newSimilarityCmd() *cobra.Command {
	var applicant, opponent string

	cmd := &cobra.Command{
		Use:   "similarity",
		Short: "Compare two trade marks",
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&applicant, "applicant", "", "applicant mark text")
	pf.StringVar(&opponent, "opponent", "", "opponent mark text")

	requireMarks := func() error {
		if applicant == "" || opponent == "" {
			return fmt.Errorf("--applicant and --opponent are required")
		}
		return nil
	}

	markCmd := func(use, short string, call func(cliCtx *CLIContext, cmd *cobra.Command) (interface{}, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := requireMarks(); err != nil {
					return err
				}
				cliCtx, err := GetCLIContext(cmd)
				if err != nil {
					return err
				}
				out, err := call(cliCtx, cmd)
				if err != nil {
					return err
				}
				return printResult(cmd, out)
			},
		}
	}

	cmd.AddCommand(
		markCmd("visual", "Edit-distance similarity of the mark texts",
			func(cliCtx *CLIContext, cmd *cobra.Command) (interface{}, error) {
				return cliCtx.Client.Similarity().Visual(cmd.Context(), applicant, opponent)
			}),
		markCmd("aural", "Phonetic similarity of the mark texts",
			func(cliCtx *CLIContext, cmd *cobra.Command) (interface{}, error) {
				return cliCtx.Client.Similarity().Aural(cmd.Context(), applicant, opponent)
			}),
		markCmd("conceptual", "Model-assessed conceptual similarity",
			func(cliCtx *CLIContext, cmd *cobra.Command) (interface{}, error) {
				return cliCtx.Client.Similarity().Conceptual(cmd.Context(), applicant, opponent)
			}),
		markCmd("marks", "Full visual, aural and conceptual comparison",
			func(cliCtx *CLIContext, cmd *cobra.Command) (interface{}, error) {
				return cliCtx.Client.Similarity().Marks(cmd.Context(), applicant, opponent)
			}),
		newGoodsServicesCmd(),
	)

	return cmd
}

func newGoodsServicesCmd() *cobra.Command {
	var applicantTerm, opponentTerm string
	var applicantClass, opponentClass int

	cmd := &cobra.Command{
		Use:   "goods-services",
		Short: "Compare one goods/services term pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if applicantTerm == "" || opponentTerm == "" {
				return fmt.Errorf("--applicant-term and --opponent-term are required")
			}
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			out, err := cliCtx.Client.Similarity().GoodsServices(cmd.Context(),
				client.GsTerm{Term: applicantTerm, Class: applicantClass},
				client.GsTerm{Term: opponentTerm, Class: opponentClass},
			)
			if err != nil {
				return err
			}
			return printResult(cmd, out)
		},
	}

	cmd.Flags().StringVar(&applicantTerm, "applicant-term", "", "applicant goods/services term")
	cmd.Flags().IntVar(&applicantClass, "applicant-class", 0, "applicant term Nice class")
	cmd.Flags().StringVar(&opponentTerm, "opponent-term", "", "opponent goods/services term")
	cmd.Flags().IntVar(&opponentClass, "opponent-class", 0, "opponent term Nice class")
	return cmd
}
