package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-smoltlv"
)

const (
	dumpMaxBytes  = 16
	dumpMaxString = 48
)

func newDumpCmd(a *app) *cobra.Command {
	var noHex bool
	dumpCmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Print a hexdump and the item tree of a SmolTLV document",
		Long: `Print a hexdump of the input followed by one line per item: the byte
offset of its header, its type, its declared length and a preview of its
value. Containers are indented. Dumping stops at the first malformed item.`,
		Example: `  smoltlv dump config.stlv
  smoltlv dump --hex <<< '0600000801000000 02000000'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(cmd, firstArg(args))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !noHex {
				fmt.Fprint(w, hex.Dump(data))
				fmt.Fprintln(w)
			}
			return dumpItems(w, smoltlv.NewCursor(data), 0, 0)
		},
	}
	dumpCmd.Flags().BoolVar(&noHex, "no-hexdump", false, "only print the item tree")
	return dumpCmd
}

// dumpItems prints every item of c. base is the absolute offset of the
// first byte of c.
func dumpItems(w io.Writer, c smoltlv.Cursor, base, depth int) error {
	indent := strings.Repeat("  ", depth)
	for {
		offset := base + c.Position()
		item, err := c.Next()
		if errors.Is(err, smoltlv.ErrEnd) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(w, "%08x  %serror: %v\n", offset, indent, err)
			return err
		}
		fmt.Fprintf(w, "%08x  %s%s len=%d%s\n", offset, indent, smoltlv.Type(item.RawType()), item.Length(), preview(item))
		if item.IsContainer() {
			if err := dumpItems(w, item.Children(), offset+smoltlv.HeaderSize, depth+1); err != nil {
				return err
			}
		}
	}
}

func preview(item smoltlv.Item) string {
	switch item.Type() {
	case smoltlv.TypeInt:
		v, _ := item.Int()
		return fmt.Sprintf(" %d", v)
	case smoltlv.TypeString:
		s, _ := item.Str()
		if len(s) > dumpMaxString {
			return fmt.Sprintf(" %q...", s[:dumpMaxString])
		}
		return fmt.Sprintf(" %q", s)
	case smoltlv.TypeBytes, smoltlv.TypeInvalid:
		b := item.Value()
		if len(b) > dumpMaxBytes {
			return " " + hex.EncodeToString(b[:dumpMaxBytes]) + "..."
		}
		if len(b) == 0 {
			return ""
		}
		return " " + hex.EncodeToString(b)
	}
	return ""
}
