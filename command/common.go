package command

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/frantjc/ota"
	xslice "github.com/frantjc/x/slice"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func setCommon(cmd *cobra.Command) *cobra.Command {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	cmd.Version = ota.SemVer()
	cmd.SetVersionTemplate("{{ .Name }}{{ .Version }} " + runtime.Version() + "\n")

	return cmd
}

const (
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputPlist = "plist"
)

func validateOutput(output string, allowed ...string) error {
	if xslice.Some(allowed, func(a string, _ int) bool {
		return a == output
	}) {
		return nil
	}

	return fmt.Errorf("unsupported output %q, expected one of %v", output, allowed)
}

func encode(w io.Writer, output string, a any) error {
	if output == outputYAML {
		b, err := yaml.Marshal(a)
		if err != nil {
			return err
		}

		_, err = w.Write(b)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(a)
}
