package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prov-converter/internal/convert"
	"prov-converter/internal/provgraph"
)

func newCheckCmd(g *globalOptions) *cobra.Command {
	var fromVOProv bool

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Report relations that reference missing instances",
		Long: `Check a W3C PROV-JSON document for relation attributes (prov:activity,
prov:entity, prov:agent, ...) whose value is not the id of an instance of the
expected class. Each problem is printed on its own line; the command fails
when any is found.

With --voprov, FILE is converted in memory first, skipping unresolvable
parameter descriptions, and the result is checked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := g.registry()
			if err != nil {
				return err
			}

			doc, err := provgraph.LoadFile(args[0])
			if err != nil {
				return err
			}

			if fromVOProv {
				res, err := convert.New(reg, convert.Options{
					MissingReference: convert.MissingReferenceSkip,
					Logger:           g.logger,
				}).Convert(doc)
				if res != nil {
					res.Diagnostics.Log(g.logger)
				}

				if err != nil {
					return err
				}

				doc = res.Graph
			}

			dangling := provgraph.DanglingReferences(doc, reg.References())
			for _, d := range dangling {
				fmt.Fprintln(cmd.OutOrStdout(), d.String())
			}

			if len(dangling) > 0 {
				return errors.Newf("%s: %d dangling references", args[0], len(dangling))
			}

			g.logger.Info("no dangling references", zap.String("file", args[0]), zap.Int("instances", doc.InstanceCount()))

			return nil
		},
	}

	cmd.Flags().BoolVar(&fromVOProv, "voprov", false, "Convert FILE from voprov before checking")

	return cmd
}
