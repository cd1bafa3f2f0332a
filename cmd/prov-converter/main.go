// Command prov-converter converts IVOA ProvenanceDM JSON documents to W3C
// PROV-JSON.
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"prov-converter/cmd/prov-converter/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}

		os.Exit(1)
	}
}
