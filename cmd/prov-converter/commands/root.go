// Package commands implements the prov-converter command line.
package commands

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"prov-converter/internal/convert"
	"prov-converter/internal/logging"
	"prov-converter/internal/mapping"
	"prov-converter/internal/provgraph"
)

const (
	jsonSuffix      = ".json"
	convertedSuffix = "-w3c.json"
	sortedSuffix    = "-sorted.json"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	mappingPath string
	logJSON     bool
	verbosity   int

	logger *zap.Logger
}

type convertOptions struct {
	*globalOptions

	output           string
	collision        convert.CollisionPolicy
	missingReference convert.MissingReferencePolicy
}

// NewRootCmd builds the prov-converter command tree.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}
	o := &convertOptions{
		globalOptions:    g,
		collision:        convert.CollisionOverwrite,
		missingReference: convert.MissingReferenceFail,
	}

	cmd := &cobra.Command{
		Use:   "prov-converter [flags] FILE",
		Short: "Convert IVOA provenance (voprov) JSON to W3C PROV-JSON",
		Long: `prov-converter rewrites a voprov JSON document into W3C PROV-JSON.

Classes and attributes are renamed through a mapping table. Parameters are
merged with their parameterDescription and linked to their activity by a
generated "used" relation (_:p0, _:p1, ...).

The result is written next to FILE with its .json suffix replaced by
-w3c.json, unless -o is given.

Examples:
  prov-converter rave.json                  # writes rave-w3c.json
  prov-converter -o out.json rave.json
  prov-converter --mapping my.yaml rave.json
  prov-converter mapping > default.yaml     # start a custom mapping table`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			g.logger = logging.New(logging.Options{
				JSON:      g.logJSON,
				Verbosity: g.verbosity,
				Output:    zapcore.AddSync(cmd.ErrOrStderr()),
			})
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = g.logger.Sync()
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return o.run(args[0])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.mappingPath, "mapping", "", "YAML mapping table to use instead of the built-in one")
	pf.BoolVar(&g.logJSON, "log-json", false, "Log JSON lines instead of console text")
	pf.CountVarP(&g.verbosity, "verbose", "v", "Log per-class progress")

	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "Output file (default: FILE with -w3c.json suffix)")
	f.Var(&o.collision, "on-collision", "Two classes writing one id: overwrite, keep-first or reject")
	f.Var(&o.missingReference, "on-missing-reference", "Unresolvable parameter description: fail or skip")

	cmd.AddCommand(newSortKeysCmd(g))
	cmd.AddCommand(newMappingCmd(g))
	cmd.AddCommand(newCheckCmd(g))

	return cmd
}

func (o *convertOptions) run(path string) error {
	reg, err := o.registry()
	if err != nil {
		return err
	}

	src, err := provgraph.LoadFile(path)
	if err != nil {
		return err
	}

	res, err := convert.New(reg, convert.Options{
		Collision:        o.collision,
		MissingReference: o.missingReference,
		Logger:           o.logger,
	}).Convert(src)
	if res != nil {
		res.Diagnostics.Log(o.logger)
	}

	if err != nil {
		return withPolicyHint(err)
	}

	out := o.output
	if out == "" {
		out = OutputPath(path)
	}

	if err := provgraph.WriteFile(out, res.Graph); err != nil {
		return err
	}

	o.logger.Info("wrote "+out,
		zap.Int("classes", res.Stats.OutputClasses),
		zap.Int("instances", res.Stats.OutputInstances),
		zap.Int("merged", res.Stats.MergedInstances),
		zap.Int("synthesized", res.Stats.SynthesizedRelations))

	return nil
}

// registry returns the registry selected by --mapping.
func (g *globalOptions) registry() (*mapping.Registry, error) {
	if g.mappingPath == "" {
		return mapping.Default(), nil
	}

	mf, err := mapping.LoadFile(g.mappingPath)
	if err != nil {
		return nil, err
	}

	reg, err := mapping.NewRegistry(mf)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping file %s", g.mappingPath)
	}

	return reg, nil
}

func withPolicyHint(err error) error {
	var (
		refErr       *convert.ReferenceError
		collisionErr *convert.CollisionError
	)

	switch {
	case errors.As(err, &refErr):
		return errors.WithHint(err, "use --on-missing-reference=skip to convert the instance without its description")
	case errors.As(err, &collisionErr):
		return errors.WithHint(err, "use --on-collision=overwrite or keep-first to accept one of the instances")
	default:
		return err
	}
}

// OutputPath returns the default destination for the converted form of path.
func OutputPath(path string) string {
	return withSuffix(path, convertedSuffix)
}

// SortedPath returns the default destination for the key-sorted copy of path.
func SortedPath(path string) string {
	return withSuffix(path, sortedSuffix)
}

func withSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, jsonSuffix) + suffix
}
