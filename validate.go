package smoltlv

import (
	"errors"
	"fmt"
)

// Validate checks every item in data, descending into containers.
//
// data may hold a sequence of top-level items. Each item must decode, carry
// a defined type tag (unless WithAllowUnknownTypes is set) and respect the
// configured depth and container limits. Every dict key must be a String
// followed by a value.
func Validate(data []byte, opts ...DecodeOption) error {
	cfg := newDecodeConfig(opts)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}
	c := NewCursor(data)
	for {
		offset := c.Position()
		item, err := c.Next()
		if errors.Is(err, ErrEnd) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("item at offset %d: %w", offset, err)
		}
		if err := validateItem(item, &cfg, 0); err != nil {
			return fmt.Errorf("item at offset %d: %w", offset, err)
		}
	}
}

func validateItem(it Item, cfg *decodeConfig, depth int) error {
	if !it.IsValid() {
		if cfg.allowUnknown {
			return nil
		}
		return fmt.Errorf("%w: unknown type tag 0x%02x", ErrInvalidFormat, it.RawType())
	}
	if !it.IsContainer() {
		return nil
	}
	if depth >= cfg.limits.MaxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, cfg.limits.MaxDepth)
	}
	n := 0
	visit := func(child Item, err error) error {
		if err != nil {
			return err
		}
		n++
		if n > cfg.limits.MaxContainerItems {
			return fmt.Errorf("%w: %s with more than %d children", ErrLimitExceeded, it.Type(), cfg.limits.MaxContainerItems)
		}
		return validateItem(child, cfg, depth+1)
	}
	if it.Type() == TypeList {
		for child, err := range it.Elements() {
			if err := visit(child, err); err != nil {
				return err
			}
		}
		return nil
	}
	for f, err := range it.Fields() {
		if err := visit(f.Value, err); err != nil {
			return fmt.Errorf("dict entry %d: %w", n, err)
		}
	}
	return nil
}
