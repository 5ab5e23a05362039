package command

import (
	"fmt"
	"os"

	"github.com/frantjc/ota/ios"
	"github.com/frantjc/ota/propertylist"
	"github.com/spf13/cobra"
)

type inspection struct {
	Metadata    *ios.Metadata `json:"metadata" yaml:"metadata"`
	ITMSURL     string        `json:"itms_url,omitempty" yaml:"itms_url,omitempty"`
	ManifestURL string        `json:"manifest_url,omitempty" yaml:"manifest_url,omitempty"`
	IPAURL      string        `json:"ipa_url,omitempty" yaml:"ipa_url,omitempty"`
	Manifest    string        `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

func newInspect() *cobra.Command {
	var (
		ipaURL         string
		manifestURL    string
		manifestFormat string
		maxSize        int64
		output         string
		cmd            = &cobra.Command{
			Use:   "inspect FILE.ipa",
			Short: "Print the metadata, install link and manifest of an .ipa",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := validateOutput(output, outputJSON, outputYAML, outputPlist); err != nil {
					return err
				}

				format, err := propertylist.ParseFormat(manifestFormat)
				if err != nil {
					return err
				}

				b, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}

				opts := &ios.Opts{MaxArchiveSize: maxSize, ManifestFormat: format}

				if ipaURL == "" || manifestURL == "" {
					if output == outputPlist {
						return fmt.Errorf("--ipa-url and --manifest-url are required for -o %s", outputPlist)
					}

					md, err := ios.ReadMetadata(b, opts)
					if err != nil {
						return fmt.Errorf("%s: %w", ios.ErrorKind(err), err)
					}

					return encode(cmd.OutOrStdout(), output, &inspection{Metadata: md})
				}

				install, err := ios.Process(b, ipaURL, manifestURL, opts)
				if err != nil {
					return fmt.Errorf("%s: %w", ios.ErrorKind(err), err)
				}

				if output == outputPlist {
					_, err = cmd.OutOrStdout().Write(install.Manifest)
					return err
				}

				res := &inspection{
					Metadata:    install.Metadata,
					ITMSURL:     install.InstallLink,
					ManifestURL: manifestURL,
					IPAURL:      ipaURL,
				}
				if format == propertylist.FormatXML {
					res.Manifest = string(install.Manifest)
				}

				return encode(cmd.OutOrStdout(), output, res)
			},
		}
	)

	setCommon(cmd)
	cmd.Flags().StringVar(&ipaURL, "ipa-url", "", "URL the .ipa will be served at")
	cmd.Flags().StringVar(&manifestURL, "manifest-url", "", "URL the manifest will be served at")
	cmd.Flags().StringVar(&manifestFormat, "manifest-format", "xml", "manifest encoding, xml or binary")
	cmd.Flags().Int64Var(&maxSize, "max-size", ios.DefaultMaxArchiveSize, "maximum .ipa size in bytes")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format, json, yaml or plist")

	return cmd
}
