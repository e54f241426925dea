package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-smoltlv"
	"github.com/logicossoftware/go-smoltlv/internal/convert"
)

func newGetCmd(a *app) *cobra.Command {
	var (
		to  string
		raw bool
		out outputOpts
	)
	getCmd := &cobra.Command{
		Use:   "get <path> [file]",
		Short: "Print the item at a dotted path",
		Long: `Look up an item inside a SmolTLV document without decoding the rest of it.

The path is a dot-separated list of steps: a list index for lists and a key
for dicts. "." selects the root item. Dict lookups return the first entry
with a matching key.`,
		Example: `  smoltlv get users.0.name people.stlv
  smoltlv get --raw config.limits config.stlv > limits.stlv`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(cmd, firstArg(args[1:]))
			if err != nil {
				return err
			}
			root, err := smoltlv.ParseItem(data)
			if err != nil {
				return err
			}
			item, err := lookupPath(root, args[0])
			if err != nil {
				return err
			}
			if raw {
				return out.write(cmd, item.Raw())
			}
			f, err := convert.ParseFormat(to)
			if err != nil {
				return err
			}
			v, err := smoltlv.Unmarshal(item.Raw(), a.decodeOptions()...)
			if err != nil {
				return err
			}
			rendered, err := convert.Encode(f, v, true)
			if err != nil {
				return err
			}
			return out.write(cmd, rendered)
		},
	}
	getCmd.Flags().StringVarP(&to, "to", "t", string(convert.JSON), "output format: json, yaml or cbor")
	getCmd.Flags().BoolVar(&raw, "raw", false, "write the encoded item instead of converting it")
	out.addFlags(getCmd)
	return getCmd
}

// lookupPath follows a dotted path of list indexes and dict keys.
func lookupPath(root smoltlv.Item, path string) (smoltlv.Item, error) {
	item := root
	if path == "" || path == "." {
		return item, nil
	}
	for _, step := range strings.Split(path, ".") {
		var (
			next smoltlv.Item
			err  error
		)
		switch item.Type() {
		case smoltlv.TypeList:
			i, convErr := strconv.Atoi(step)
			if convErr != nil {
				return smoltlv.Item{}, fmt.Errorf("%w: %q is not a list index", smoltlv.ErrInvalidArgument, step)
			}
			next, err = item.ListIndex(i)
		case smoltlv.TypeDict:
			next, err = item.DictLookup(step)
		default:
			return smoltlv.Item{}, fmt.Errorf("%w: cannot step into %s with %q", smoltlv.ErrInvalidArgument, item.Type(), step)
		}
		if err != nil {
			return smoltlv.Item{}, fmt.Errorf("path %s: %w", path, err)
		}
		item = next
	}
	return item, nil
}
