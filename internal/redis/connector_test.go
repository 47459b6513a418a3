package redis

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

func testOptions(addr string) ConnectOptions {
	return ConnectOptions{
		Addr:           addr,
		DialTimeout:    100 * time.Millisecond,
		ReadTimeout:    100 * time.Millisecond,
		WriteTimeout:   100 * time.Millisecond,
		PoolSize:       2,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  20 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), testOptions(mr.Addr()), logger.Noop())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Errorf("SET after connect failed: %v", err)
	}
}

func TestConnectGivesUp(t *testing.T) {
	// Reserve a port, then free it so nothing is listening.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	start := time.Now()
	_, err = Connect(context.Background(), testOptions(addr), logger.Noop())
	if err == nil {
		t.Fatal("Connect() to a closed port should fail")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect() took %v, want bounded by ConnectTimeout", elapsed)
	}
}

func TestConnectOptionsValidate(t *testing.T) {
	tests := map[string]func(*ConnectOptions){
		"zero connect timeout": func(o *ConnectOptions) { o.ConnectTimeout = 0 },
		"zero retry interval":  func(o *ConnectOptions) { o.RetryInterval = 0 },
		"zero max wait":        func(o *ConnectOptions) { o.MaxWait = 0 },
		"zero ping timeout":    func(o *ConnectOptions) { o.PingTimeout = 0 },
		"negative threshold":   func(o *ConnectOptions) { o.WarnThreshold = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			opts := testOptions("127.0.0.1:0")
			mutate(&opts)
			if err := opts.validate(); err == nil {
				t.Error("validate() should reject the options")
			}
		})
	}
}

func TestBackoffCaps(t *testing.T) {
	b := &backoff{next: 10 * time.Millisecond, max: 30 * time.Millisecond}
	want := []time.Duration{10, 20, 30, 30}
	for i, w := range want {
		if got := b.wait(); got != w*time.Millisecond {
			t.Errorf("wait #%d = %v, want %v", i, got, w*time.Millisecond)
		}
	}
}
