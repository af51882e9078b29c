package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newStagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the stages in execution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stages, err := c.app.Stages(cmd.Context(), c.configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range stages {
				if prev, ok := s.Preceding(); ok {
					_, _ = fmt.Fprintf(out, "%s (after %s)\n", s.ID(), prev)
					continue
				}
				_, _ = fmt.Fprintln(out, s.ID())
			}
			return nil
		},
	}
}
