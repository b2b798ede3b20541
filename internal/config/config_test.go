package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/eeat/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.MaxBatchURLs, convey.ShouldEqual, 50)
			convey.So(cfg.AnthropicMaxTokens, convey.ShouldEqual, 2000)
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.CORSAllowOrigin, convey.ShouldEqual, "*")
			convey.So(cfg.ClassifyTimeout(), convey.ShouldEqual, 2*time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty addr", func(c *config.Config) { c.Addr = "" }, "addr must not be empty"},
		{"unknown store", func(c *config.Config) { c.Store = "redis" }, "store must be"},
		{"sqlite without path", func(c *config.Config) { c.Store = config.StoreSQLite; c.SQLitePath = "" }, "sqlite_path"},
		{"zero batch size", func(c *config.Config) { c.MaxBatchURLs = 0 }, "max_batch_urls"},
		{"zero queue", func(c *config.Config) { c.QueueSize = 0 }, "queue_size"},
		{"negative rate", func(c *config.Config) { c.ClassifyRatePerSec = -1 }, "classify_rate_per_sec"},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }, "log_format"},
	}

	convey.Convey("Given invalid configurations", t, func() {
		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, tc.want)
		}
	})
}
