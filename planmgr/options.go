package planmgr

type config struct {
	cacheSize     int64
	objectPrefix  string
	verifyWorkers int
}

// Option is an option for the plan manager.
type Option func(*config)

// WithCacheSize sets the number of translated plans kept in memory.
func WithCacheSize(entries int64) Option {
	return func(c *config) {
		c.cacheSize = entries
	}
}

// WithObjectPrefix sets the prefix under which plan messages are stored.
func WithObjectPrefix(prefix string) Option {
	return func(c *config) {
		c.objectPrefix = prefix
	}
}

// WithVerifyWorkers sets the number of concurrent workers used by Verify.
func WithVerifyWorkers(workers int) Option {
	return func(c *config) {
		c.verifyWorkers = workers
	}
}
