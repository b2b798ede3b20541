package service

import (
	"time"

	"github.com/okian/eeat/internal/adapters/repository"
	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog replaces the default signal catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Service) {
		if cat != nil {
			s.catalog = cat
		}
	}
}

// WithStore sets the batch store. The service closes it on Stop.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithClassifier sets the page classifier.
func WithClassifier(c Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithQueueSize sets how many batches may wait for the runner.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxBatchURLs caps the number of URLs accepted per batch.
func WithMaxBatchURLs(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxURLs = n
		}
	}
}

// WithRateLimit paces classifier calls. Zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(s *Service) {
		if perSecond >= 0 {
			s.ratePerSec = perSecond
		}
	}
}

// WithClassifyTimeout bounds each classifier call made by the runner.
func WithClassifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.classifyTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides batch id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
