package dedupe

import "errors"

// Sentinel errors for URL list preparation.
var (
	ErrNoURLs     = errors.New("no http(s) URLs found")
	ErrMixedHosts = errors.New("URLs span more than one host")
)
