package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-smoltlv"
	"github.com/logicossoftware/go-smoltlv/internal/convert"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		from string
		out  outputOpts
	)
	encodeCmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Convert JSON, YAML or CBOR into a SmolTLV document",
		Long: `Read a JSON, YAML or CBOR value and write it as a single SmolTLV item.

JSON may contain comments and trailing commas. Numbers must be integers.
Byte strings are written in JSON as {"$bytes": "<base64>"} and in YAML as
!!binary scalars. Object key order is preserved for JSON and YAML input.

The JSON object shapes {"$bytes": ...}, {"$type": n, "$data": ...} and
{"$dict": {...}} are reserved. To store a dict that has one of these shapes,
wrap it as {"$dict": {...}}; decode does this automatically.`,
		Example: `  smoltlv encode config.json -o config.stlv
  echo '{"count": 42}' | smoltlv encode --hex-output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := firstArg(args)
			f, err := inputFormat(from, path)
			if err != nil {
				return err
			}
			data, err := a.readInput(cmd, path)
			if err != nil {
				return err
			}
			v, err := convert.Decode(f, data)
			if err != nil {
				return err
			}
			doc, err := smoltlv.Marshal(v, smoltlv.WithWriteLimits(a.limits()))
			if err != nil {
				return err
			}
			logrus.Debugf("encoded %s input of %d bytes into %d bytes", f, len(data), len(doc))
			return out.write(cmd, doc)
		},
	}
	encodeCmd.Flags().StringVarP(&from, "from", "f", "", "input format: json, yaml or cbor (default from the file extension, else json)")
	out.addFlags(encodeCmd)
	return encodeCmd
}

func inputFormat(name, path string) (convert.Format, error) {
	if name != "" {
		return convert.ParseFormat(name)
	}
	return convert.FormatFromPath(path, convert.JSON), nil
}
