package cmd

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// readInput reads the file named by path, or stdin when path is empty or
// "-". With --hex the bytes are decoded from hex text first.
func (a *app) readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if a.opts.hexIn {
		data, err = decodeHexInput(data)
		if err != nil {
			return nil, err
		}
	}
	logrus.Debugf("read %d bytes from %s", len(data), displayName(path))
	return data, nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

// decodeHexInput strips whitespace from hex-encoded input and decodes
// it to binary bytes.
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:count], nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

type outputOpts struct {
	path   string
	hexOut bool
}

func (o *outputOpts) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.path, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&o.hexOut, "hex-output", false, "write binary output as hex text")
}

// write sends binary output to the configured destination.
func (o *outputOpts) write(cmd *cobra.Command, data []byte) error {
	if o.hexOut {
		data = []byte(hex.EncodeToString(data) + "\n")
	}
	if o.path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(o.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", o.path, err)
	}
	logrus.Debugf("wrote %d bytes to %s", len(data), o.path)
	return nil
}
