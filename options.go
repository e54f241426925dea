package smoltlv

type decodeConfig struct {
	limits       Limits
	allowUnknown bool
	copyBytes    bool
}

type DecodeOption func(*decodeConfig)

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	cfg := decodeConfig{limits: defaultLimits(), copyBytes: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	return cfg
}

func WithReadLimits(l Limits) DecodeOption {
	return func(c *decodeConfig) { c.limits = l }
}

// WithAllowUnknownTypes makes Unmarshal return items with an undefined type
// tag as Unknown values, and Validate accept them, instead of failing.
func WithAllowUnknownTypes(v bool) DecodeOption {
	return func(c *decodeConfig) { c.allowUnknown = v }
}

// WithCopyBytes controls whether Unmarshal copies Bytes values. With false,
// the returned []byte values alias the input buffer. Defaults to true.
func WithCopyBytes(v bool) DecodeOption {
	return func(c *decodeConfig) { c.copyBytes = v }
}

const defaultInitialSize = 64

type encoderConfig struct {
	limits      Limits
	initialSize int
	alloc       Allocator
}

type EncoderOption func(*encoderConfig)

func WithWriteLimits(l Limits) EncoderOption {
	return func(c *encoderConfig) { c.limits = l }
}

// WithMaxSize caps the encoder buffer at n bytes. It is shorthand for
// WithWriteLimits with only MaxDocumentSize set.
func WithMaxSize(n int) EncoderOption {
	return func(c *encoderConfig) { c.limits.MaxDocumentSize = n }
}

// WithInitialSize sets the size of the first buffer allocation.
func WithInitialSize(n int) EncoderOption {
	return func(c *encoderConfig) { c.initialSize = n }
}

// WithAllocator replaces the default HeapAllocator. The allocator is then
// responsible for enforcing any size cap.
func WithAllocator(a Allocator) EncoderOption {
	return func(c *encoderConfig) { c.alloc = a }
}

type envelopeConfig struct {
	limits      Limits
	compression Compression
	checksum    bool
	validate    bool
	docOpts     []DecodeOption
}

type EnvelopeOption func(*envelopeConfig)

func newEnvelopeConfig(opts []EnvelopeOption) envelopeConfig {
	cfg := envelopeConfig{
		limits:      defaultLimits(),
		compression: CompZSTD,
		checksum:    true,
		validate:    true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	return cfg
}

func WithEnvelopeLimits(l Limits) EnvelopeOption {
	return func(c *envelopeConfig) { c.limits = l }
}

// WithCompression selects the payload compression used by Pack.
// Defaults to CompZSTD.
func WithCompression(comp Compression) EnvelopeOption {
	return func(c *envelopeConfig) { c.compression = comp }
}

// WithChecksum controls whether Pack appends a BLAKE3 digest of the
// document. Unpack always verifies a digest that is present.
func WithChecksum(v bool) EnvelopeOption {
	return func(c *envelopeConfig) { c.checksum = v }
}

// WithValidate controls whether Pack and Unpack run Validate on the
// document. Defaults to true.
func WithValidate(v bool) EnvelopeOption {
	return func(c *envelopeConfig) { c.validate = v }
}

// WithDocumentOptions passes decode options to the validation pass.
func WithDocumentOptions(opts ...DecodeOption) EnvelopeOption {
	return func(c *envelopeConfig) { c.docOpts = append(c.docOpts, opts...) }
}
