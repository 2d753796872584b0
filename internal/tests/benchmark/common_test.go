package benchmark

import (
	"fmt"
	"runtime"
	"strconv"
	"testing"

	"github.com/yndnr/minikv/internal/core/domain"
	"github.com/yndnr/minikv/internal/storage/memory"
	"github.com/yndnr/minikv/pkg/resp"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

// benchKey returns the i-th key of client.
func benchKey(client, i int) domain.Key {
	return domain.Key{ClientID: client, Name: "key:" + strconv.Itoa(i)}
}

// prefillStore inserts count keys spread over 16 clients.
func prefillStore(store *memory.Store, count int) []domain.Key {
	keys := make([]domain.Key, count)
	for i := 0; i < count; i++ {
		keys[i] = benchKey(i%16, i)
		store.Insert(keys[i], resp.BulkString("value-"+strconv.Itoa(i)), 0)
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
