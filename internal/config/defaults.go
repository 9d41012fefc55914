package config

import "time"

const (
	// DefaultHost is the default editor bridge host
	DefaultHost = "127.0.0.1"
	// DefaultPort is the default editor bridge port
	DefaultPort = 55557
	// DefaultConnectTimeout bounds one dial attempt
	DefaultConnectTimeout = 10 * time.Second
	// DefaultCommandTimeout bounds one command round trip
	DefaultCommandTimeout = 30 * time.Second
	// DefaultMaxRetries is the total number of dial attempts
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the pause between dial attempts
	DefaultRetryDelay = 500 * time.Millisecond
	// DefaultMaxWorkers is the parallel worker pool size
	DefaultMaxWorkers = 4
	// DefaultTestRoot is the directory holding the category trees
	DefaultTestRoot = "tests"
	// DefaultOutputDir is where report artifacts are written
	DefaultOutputDir = "test_output"
	// DefaultIntegrationTimeout bounds one integration test
	DefaultIntegrationTimeout = 300 * time.Second
	// DefaultUnitTimeout bounds one unit test
	DefaultUnitTimeout = 60 * time.Second
	// DefaultValidationTimeout bounds one validation test
	DefaultValidationTimeout = 120 * time.Second
	// RunnerVersion is recorded in every report's environment block
	RunnerVersion = "1.0.0"
)
