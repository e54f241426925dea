package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-smoltlv"
)

func newValidateCmd(a *app) *cobra.Command {
	var quiet bool
	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that a SmolTLV document is well formed",
		Long: `Walk every item of a SmolTLV document, descending into containers, and
report the first problem found. The exit code is the status of the failure:
3 for truncated input, 4 for malformed input, 6 when a limit is exceeded.`,
		Example: `  smoltlv validate config.stlv`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(cmd, firstArg(args))
			if err != nil {
				return err
			}
			if err := smoltlv.Validate(data, a.decodeOptions()...); err != nil {
				return err
			}
			if quiet {
				return nil
			}
			n := 0
			for range smoltlv.NewCursor(data).All() {
				n++
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d top-level items, %d bytes\n", n, len(data))
			return err
		},
	}
	validateCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print nothing on success")
	return validateCmd
}
