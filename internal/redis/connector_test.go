package redis

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/vidmark/internal/logger"
	"github.com/alicebob/miniredis/v2"
)

func testOptions(addr string) Options {
	return Options{
		Addr:           addr,
		DialTimeout:    50 * time.Millisecond,
		ReadTimeout:    50 * time.Millisecond,
		WriteTimeout:   50 * time.Millisecond,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        40 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), testOptions(mr.Addr()), logger.NewNop())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestConnectGivesUp(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	start := time.Now()
	if _, err := Connect(context.Background(), testOptions(addr), logger.NewNop()); err == nil {
		t.Fatal("Connect() to a closed server should fail")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect() took %v, want it bounded by the connect timeout", elapsed)
	}
}

func TestOptionsValidate(t *testing.T) {
	valid := testOptions("localhost:6379")

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Options) {}},
		{name: "empty addr", mutate: func(o *Options) { o.Addr = "" }, wantErr: true},
		{name: "zero connect timeout", mutate: func(o *Options) { o.ConnectTimeout = 0 }, wantErr: true},
		{name: "zero retry interval", mutate: func(o *Options) { o.RetryInterval = 0 }, wantErr: true},
		{name: "max wait below interval", mutate: func(o *Options) { o.MaxWait = time.Millisecond }, wantErr: true},
		{name: "zero ping timeout", mutate: func(o *Options) { o.PingTimeout = 0 }, wantErr: true},
		{name: "negative warn threshold", mutate: func(o *Options) { o.WarnThreshold = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			if err := opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNextWait(t *testing.T) {
	tests := []struct {
		wait, limit, want time.Duration
	}{
		{wait: time.Second, limit: 10 * time.Second, want: 2 * time.Second},
		{wait: 6 * time.Second, limit: 10 * time.Second, want: 10 * time.Second},
		{wait: 10 * time.Second, limit: 10 * time.Second, want: 10 * time.Second},
	}
	for _, tt := range tests {
		if got := nextWait(tt.wait, tt.limit); got != tt.want {
			t.Errorf("nextWait(%v, %v) = %v, want %v", tt.wait, tt.limit, got, tt.want)
		}
	}
}
