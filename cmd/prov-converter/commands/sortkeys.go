package commands

import (
	"github.com/spf13/cobra"

	"prov-converter/internal/provgraph"
)

func newSortKeysCmd(g *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sort-keys FILE",
		Short: "Rewrite a JSON document with sorted keys",
		Long: `Rewrite FILE with keys sorted at every level and two-space indentation,
the layout used for converted documents. Handy for diffing a hand-written
W3C document against converter output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dst := output
			if dst == "" {
				dst = SortedPath(args[0])
			}

			if err := provgraph.SortFile(args[0], dst); err != nil {
				return err
			}

			g.logger.Info("wrote " + dst)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: FILE with -sorted.json suffix)")

	return cmd
}
