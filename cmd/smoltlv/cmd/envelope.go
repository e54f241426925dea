package cmd

import (
	"bytes"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-smoltlv"
)

func (a *app) envelopeOptions() []smoltlv.EnvelopeOption {
	return []smoltlv.EnvelopeOption{
		smoltlv.WithEnvelopeLimits(a.limits()),
		smoltlv.WithDocumentOptions(smoltlv.WithAllowUnknownTypes(a.v.GetBool("allow-unknown"))),
	}
}

func newPackCmd(a *app) *cobra.Command {
	var out outputOpts
	packCmd := &cobra.Command{
		Use:   "pack [file]",
		Short: "Wrap a SmolTLV document in a compressed envelope",
		Long: `Validate a SmolTLV document, compress it and write it inside an envelope:
a 16-byte header with the magic "STLV", the payload and, unless disabled, a
BLAKE3 checksum of the document.

Supported compressions: none, zip, zstd, lz4, brotli.`,
		Example: `  smoltlv pack --compression lz4 config.stlv -o config.stlv.env
  SMOLTLV_COMPRESSION=brotli smoltlv pack config.stlv > config.stlv.env`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := smoltlv.ParseCompression(a.v.GetString("compression"))
			if err != nil {
				return err
			}
			doc, err := a.readInput(cmd, firstArg(args))
			if err != nil {
				return err
			}
			opts := append(a.envelopeOptions(),
				smoltlv.WithCompression(comp),
				smoltlv.WithChecksum(a.v.GetBool("checksum")))
			var buf bytes.Buffer
			if err := smoltlv.Pack(&buf, doc, opts...); err != nil {
				return err
			}
			logrus.Debugf("packed %d bytes into a %d byte %s envelope", len(doc), buf.Len(), comp)
			return out.write(cmd, buf.Bytes())
		},
	}
	packCmd.Flags().StringP("compression", "z", smoltlv.CompZSTD.String(), "payload compression: none, zip, zstd, lz4 or brotli")
	packCmd.Flags().Bool("checksum", true, "append a BLAKE3 checksum of the document")
	a.bindFlags(packCmd.Flags(), "compression", "checksum")
	out.addFlags(packCmd)
	return packCmd
}

func newUnpackCmd(a *app) *cobra.Command {
	var (
		out      outputOpts
		validate bool
	)
	unpackCmd := &cobra.Command{
		Use:   "unpack [file]",
		Short: "Extract the SmolTLV document from an envelope",
		Long: `Read an envelope, check its header and checksum, decompress the payload
and write the document it contains.`,
		Example: `  smoltlv unpack config.stlv.env -o config.stlv
  smoltlv unpack config.stlv.env | smoltlv decode`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(cmd, firstArg(args))
			if err != nil {
				return err
			}
			opts := append(a.envelopeOptions(), smoltlv.WithValidate(validate))
			doc, err := smoltlv.Unpack(bytes.NewReader(data), opts...)
			if err != nil {
				return err
			}
			return out.write(cmd, doc)
		},
	}
	unpackCmd.Flags().BoolVar(&validate, "validate", true, "validate the extracted document")
	out.addFlags(unpackCmd)
	return unpackCmd
}
