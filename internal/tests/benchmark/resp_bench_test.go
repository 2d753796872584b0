package benchmark

import (
	"strings"
	"testing"

	"github.com/yndnr/minikv/pkg/resp"
)

var (
	setRequest = resp.Encode(resp.CommandRequest("SET", "user:1000", "hello world"))
	bigRequest = resp.Encode(resp.CommandRequest("SET", "blob", strings.Repeat("x", 64*1024)))
	execReply  = resp.Array(resp.SimpleString("OK"), resp.Int(42), resp.BulkString("value"), resp.NullBulkString())
)

func BenchmarkDecodeRequest(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(setRequest)))
	for i := 0; i < b.N; i++ {
		if _, _, err := resp.Decode(setRequest); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeLargeBulk(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(bigRequest)))
	for i := 0; i < b.N; i++ {
		if _, _, err := resp.Decode(bigRequest); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeIncomplete(b *testing.B) {
	partial := setRequest[:len(setRequest)-3]

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, _ = resp.Decode(partial)
	}
}

func BenchmarkAppendEncode(b *testing.B) {
	buf := make([]byte, 0, 256)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf = resp.AppendEncode(buf[:0], execReply)
	}
}

func BenchmarkValueHash(b *testing.B) {
	v := resp.BulkString("user:1000")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = v.Hash()
	}
}
