package keyguard

import (
	"context"
	"io"
	"testing"

	codecjson "github.com/rbaliyan/config/codec/json"
	"github.com/sirupsen/logrus"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func benchmarkGuard(b *testing.B) *Guard {
	b.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	g, err := NewGuard(
		WithProbe(&fakeProbe{}),
		WithLogger(logger),
		WithMeterProvider(metricnoop.NewMeterProvider()),
		WithTracerProvider(tracenoop.NewTracerProvider()),
	)
	if err != nil {
		b.Fatal(err)
	}
	return g
}

func BenchmarkDecryptFragment(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		if DecryptFragment(1, testDeviceID) == "" {
			b.Fatal("empty fragment")
		}
	}
}

func BenchmarkAssemble(b *testing.B) {
	table := DefaultTable()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := table.Assemble(testDeviceID); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkChecksum(b *testing.B) {
	table := DefaultTable()
	for b.Loop() {
		if table.Checksum() != ExpectedChecksum {
			b.Fatal("checksum mismatch")
		}
	}
}

func BenchmarkKeyFragment(b *testing.B) {
	g := benchmarkGuard(b)
	ctx := context.Background()
	dev := StaticDevice(testDeviceID)

	b.ReportAllocs()
	for b.Loop() {
		if g.KeyFragment(ctx, dev) == "" {
			b.Fatal("empty key")
		}
	}
}

func BenchmarkHostProbe(b *testing.B) {
	p := &HostProbe{Logger: logrus.New()}
	ctx := context.Background()
	for b.Loop() {
		p.AnalysisToolsPresent(ctx)
	}
}

func BenchmarkCodecEncode1KB(b *testing.B) {
	c, err := NewCodec(codecjson.New(), StaticDevice(testDeviceID))
	if err != nil {
		b.Fatal(err)
	}
	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = byte(i % 256)
	}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := c.Encode(b.Context(), payload); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodecDecode1KB(b *testing.B) {
	c, err := NewCodec(codecjson.New(), StaticDevice(testDeviceID))
	if err != nil {
		b.Fatal(err)
	}
	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	data, err := c.Encode(b.Context(), payload)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		var got []byte
		if err := c.Decode(b.Context(), data, &got); err != nil {
			b.Fatal(err)
		}
	}
}
