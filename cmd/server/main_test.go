package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/foodgram/internal/config"
)

// freeAddr returns a loopback address nobody listens on right now.
func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	_ = lis.Close()
	return addr
}

func occupy(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = lis.Close() })
	return lis.Addr().String()
}

func Test_serve_HealthAddrInUse_LeavesHTTPDown(t *testing.T) {
	httpAddr := freeAddr(t)
	hs := &http.Server{Addr: httpAddr, Handler: http.NotFoundHandler()}

	err := serve(context.Background(), hs, config.GRPCConfig{HealthAddr: occupy(t)}, time.Second, zap.NewNop())
	if err == nil {
		t.Fatalf("want bind error for the health address")
	}

	lis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		t.Fatalf("http address still taken after a failed start: %v", err)
	}
	_ = lis.Close()
}

func Test_serve_HTTPFailureStopsHealth(t *testing.T) {
	hs := &http.Server{Addr: occupy(t), Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), hs, config.GRPCConfig{HealthAddr: "127.0.0.1:0"}, time.Second, zap.NewNop())
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("want http bind error")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not return after the http listener failed")
	}
}

func Test_serve_StopsOnCancel(t *testing.T) {
	hs := &http.Server{Addr: freeAddr(t), Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, hs, config.GRPCConfig{HealthAddr: "127.0.0.1:0"}, time.Second, zap.NewNop())
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not return after cancel")
	}
}
