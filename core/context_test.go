package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := withSuppressReport(context.Background())

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			assert.True(t, shouldSuppressReport(ctx), "Goroutine %d: report should be suppressed", i)
		})
	}
	wg.Wait()
}

// TestContextIsolation tests that derived contexts do not leak into their parent.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	child := withSuppressReport(base)

	assert.True(t, shouldSuppressReport(child))
	assert.False(t, shouldSuppressReport(base))
	assert.False(t, shouldSuppressReport(context.WithValue(base, suppressReportKey, "yes")))
}
