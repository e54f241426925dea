package smoltlv

type Limits struct {
	MaxDepth           int    // container nesting accepted by Unmarshal, Validate and Encode
	MaxContainerItems  int    // children of a single list, or pairs of a single dict
	MaxDocumentSize    int    // encoder buffer size and decompressed envelope size
	MaxEnvelopePayload uint32 // stored envelope payload length
}

func defaultLimits() Limits {
	return Limits{
		MaxDepth:           64,
		MaxContainerItems:  1 << 20,
		MaxDocumentSize:    64 << 20, // 64 MiB
		MaxEnvelopePayload: 64 << 20,
	}
}

// DefaultLimits returns the limits applied when none are configured.
func DefaultLimits() Limits { return defaultLimits() }

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxDepth == 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxContainerItems == 0 {
		l.MaxContainerItems = d.MaxContainerItems
	}
	if l.MaxDocumentSize == 0 {
		l.MaxDocumentSize = d.MaxDocumentSize
	}
	if l.MaxEnvelopePayload == 0 {
		l.MaxEnvelopePayload = d.MaxEnvelopePayload
	}
	return l
}
