package dedupe

// DefaultLimit caps the number of URLs accepted in one batch.
const DefaultLimit = 50

// Option applies a configuration option to a Parser.
type Option func(*Parser)

// WithLimit sets the maximum number of URLs kept. Values <= 0 are ignored.
func WithLimit(limit int) Option {
	return func(p *Parser) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithSameHost requires every URL to share one hostname.
func WithSameHost(enabled bool) Option {
	return func(p *Parser) {
		p.sameHost = enabled
	}
}
