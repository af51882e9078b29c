package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/stagehand/internal/app"
	"go.trai.ch/zerr"
)

func (c *CLI) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the pipeline and write it in the chosen format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			record, _ := cmd.Flags().GetBool("record")

			// A file target only sees output once generation has succeeded.
			var buf bytes.Buffer
			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				out = &buf
			}

			p, err := c.app.Generate(cmd.Context(), app.GenerateOptions{
				ConfigPath: c.configPath,
				Format:     format,
				Output:     out,
				Record:     record,
			})
			if err != nil {
				return err
			}

			if output == "" {
				return nil
			}
			if err := writeOutput(output, buf.Bytes()); err != nil {
				return err
			}
			c.logger.Info("pipeline written", "path", output, "nodes", len(p.Nodes))
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Output format: json, yaml, or text")
	cmd.Flags().StringP("output", "o", "", "Write the pipeline to a file instead of stdout")
	cmd.Flags().Bool("record", false, "Record the pipeline fingerprint for later drift checks")
	return cmd
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", path)
	}
	//nolint:gosec // Path is provided by the user on the command line and the file is meant to be shared
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write output file"), "path", path)
	}
	return nil
}
