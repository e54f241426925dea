package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-smoltlv"
	"github.com/logicossoftware/go-smoltlv/internal/convert"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		to      string
		compact bool
		all     bool
		out     outputOpts
	)
	decodeCmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Convert a SmolTLV document into JSON, YAML or CBOR",
		Long: `Read a SmolTLV document and write its value as JSON (default), YAML or CBOR.

The document must hold exactly one top-level item unless --all is given, in
which case every top-level item is decoded and the results are written as a
list.`,
		Example: `  smoltlv decode config.stlv
  smoltlv decode --to yaml config.stlv
  smoltlv decode --hex <<< '05000003686579'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := convert.ParseFormat(to)
			if err != nil {
				return err
			}
			data, err := a.readInput(cmd, firstArg(args))
			if err != nil {
				return err
			}
			var v any
			if all {
				v, err = decodeAll(data, a.decodeOptions())
			} else {
				v, err = smoltlv.Unmarshal(data, a.decodeOptions()...)
			}
			if err != nil {
				return err
			}
			rendered, err := convert.Encode(f, v, compact)
			if err != nil {
				return err
			}
			return out.write(cmd, rendered)
		},
	}
	decodeCmd.Flags().StringVarP(&to, "to", "t", string(convert.JSON), "output format: json, yaml or cbor")
	decodeCmd.Flags().BoolVarP(&compact, "compact", "c", false, "write JSON on a single line")
	decodeCmd.Flags().BoolVar(&all, "all", false, "decode every top-level item into a list")
	out.addFlags(decodeCmd)
	return decodeCmd
}

// decodeAll decodes a sequence of top-level items.
func decodeAll(data []byte, opts []smoltlv.DecodeOption) ([]any, error) {
	items := []any{}
	for {
		v, rest, err := smoltlv.UnmarshalFirst(data, opts...)
		if errors.Is(err, smoltlv.ErrEnd) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		data = rest
	}
}
