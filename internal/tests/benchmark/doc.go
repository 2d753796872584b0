// Package benchmark provides performance benchmarks for minikv.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run only the end-to-end server benchmarks:
//
//	go test -bench=BenchmarkServer -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
