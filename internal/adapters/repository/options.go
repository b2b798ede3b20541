package repository

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	maxBatches int
}

// WithMaxBatches keeps at most n batches in a MemoryStore, evicting the
// oldest finished ones first. Zero keeps everything.
func WithMaxBatches(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxBatches = n
		}
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
