package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"prov-converter/internal/mapping"
)

func newMappingCmd(g *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Print the effective mapping table as YAML",
		Long: `Print the mapping table the converter would use: the built-in table, or the
file given with --mapping after defaults are applied. The output is a valid
--mapping file and a starting point for custom tables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := g.registry()
			if err != nil {
				return err
			}

			if output != "" {
				if err := mapping.WriteFile(reg.File(), output); err != nil {
					return err
				}

				g.logger.Info("wrote " + output)

				return nil
			}

			data, err := mapping.Marshal(reg.File())
			if err != nil {
				return errors.Wrap(err, "failed to marshal mapping")
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the table to a file instead of stdout")

	return cmd
}
