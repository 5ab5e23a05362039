package command

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/frantjc/ota"
	"github.com/spf13/cobra"
)

func newUpload() *cobra.Command {
	var (
		output string
		cmd    = &cobra.Command{
			Use:   "upload FILE.ipa",
			Short: "Upload an .ipa to ota",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := validateOutput(output, outputJSON, outputYAML); err != nil {
					return err
				}

				var (
					ctx = cmd.Context()
					log = ota.LoggerFrom(ctx)
					cli = new(ota.Client)
				)

				if urlstr := cmd.Flag("url").Value.String(); urlstr != "" {
					var err error
					if cli.Base, err = url.Parse(urlstr); err != nil {
						return err
					}
				}

				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				log.Info("uploading " + args[0])
				upload, err := cli.Upload(ctx, filepath.Base(args[0]), f)
				if err != nil {
					return err
				}

				return encode(cmd.OutOrStdout(), output, upload)
			},
		}
	)

	setCommon(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format, json or yaml")

	return cmd
}
