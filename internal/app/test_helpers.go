package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"crateweld/internal/hcl_adapter"
	"crateweld/internal/platform"
	"crateweld/internal/registry"
)

// SafeBuffer is an io.Writer safe for concurrent use, so executor workers
// and the test goroutine can share one capture target.
type SafeBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (sb *SafeBuffer) Write(p []byte) (int, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.b.Write(p)
}

func (sb *SafeBuffer) String() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.b.String()
}

// SetupAppTest builds an App over the given config with reports and logs
// captured in a single buffer. Debug logging is forced so assertions can
// match on loader and executor detail lines. Set CRATEWELD_TEST_LOGS=true
// to dump the capture of a failing run.
func SetupAppTest(t *testing.T, appConfig *Config, modules ...registry.Module) (*App, *SafeBuffer) {
	t.Helper()

	buf := &SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp := NewApp(buf, buf, appConfig, hcl_adapter.NewLoader(platform.ForHost()), modules...)

	t.Cleanup(func() {
		if os.Getenv("CRATEWELD_TEST_LOGS") == "true" {
			t.Logf("captured output for %s:\n%s", t.Name(), buf.String())
		}
	})

	return testApp, buf
}
