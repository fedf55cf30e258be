package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"
)

func startBlockingServer(t *testing.T, release <-chan struct{}) (*http.Server, net.Listener, chan struct{}) {
	t.Helper()
	entered := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		io.WriteString(w, "done")
	})}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return srv, ln, entered
}

func TestRunServerDrainsInFlightRequests(t *testing.T) {
	release := make(chan struct{})
	srv, ln, entered := startBlockingServer(t, release)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- runServer(ctx, srv, ln, 5*time.Second) }()

	type result struct {
		status int
		body   string
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		res, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			resCh <- result{err: err}
			return
		}
		defer res.Body.Close()
		b, _ := io.ReadAll(res.Body)
		resCh <- result{status: res.StatusCode, body: string(b)}
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("request never reached the handler")
	}
	cancel()

	select {
	case err := <-runErr:
		t.Fatalf("runServer returned while a request was in flight: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("runServer: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runServer did not return after the request finished")
	}
	res := <-resCh
	if res.err != nil || res.status != http.StatusOK || res.body != "done" {
		t.Fatalf("in-flight request not completed: %+v", res)
	}
}

func TestRunServerShutdownTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	srv, ln, entered := startBlockingServer(t, release)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- runServer(ctx, srv, ln, 100*time.Millisecond) }()
	go func() {
		if res, err := http.Get("http://" + ln.Addr().String() + "/"); err == nil {
			res.Body.Close()
		}
	}()

	<-entered
	cancel()
	select {
	case err := <-runErr:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runServer ignored the shutdown timeout")
	}
}

func TestRunServerReportsServeError(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ln.Close()
	err = runServer(context.Background(), &http.Server{Handler: http.NotFoundHandler()}, ln, time.Second)
	if err == nil {
		t.Fatalf("expected error from a closed listener")
	}
}
