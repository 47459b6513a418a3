package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

func TestFetcher_NoCredential(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	f := NewFetcher(server.URL, StaticCredential(""))

	p, err := f.Fetch(context.Background(), "https://www.github.com/golang/go")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if p.Title != "Github" {
		t.Errorf("Title = %q, want %q", p.Title, "Github")
	}
	if p.Description != NoKeyDescription {
		t.Errorf("Description = %q, want %q", p.Description, NoKeyDescription)
	}
	if p.Image != "" {
		t.Errorf("Image = %q, want empty", p.Image)
	}
	if p.Domain != "github.com" {
		t.Errorf("Domain = %q, want github.com", p.Domain)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("provider called %d times without a key, want 0", n)
	}
}

func TestFetcher_NilCredential(t *testing.T) {
	f := NewFetcher("http://127.0.0.1:1", nil)
	p, err := f.Fetch(context.Background(), "https://example.org")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if p.Title == "" {
		t.Error("Title should never be empty")
	}
}

func TestFetcher_Provider(t *testing.T) {
	tests := map[string]struct {
		status          int
		body            string
		wantTitle       string
		wantDescription string
		wantImage       string
	}{
		"full response": {
			status:          http.StatusOK,
			body:            `{"title":"React","description":"The library for web UIs","image":"https://react.dev/og.png","url":"https://react.dev/"}`,
			wantTitle:       "React",
			wantDescription: "The library for web UIs",
			wantImage:       "https://react.dev/og.png",
		},
		"missing title falls back per field": {
			status:          http.StatusOK,
			body:            `{"description":"only a description"}`,
			wantTitle:       "React",
			wantDescription: "only a description",
		},
		"non 2xx": {
			status:          http.StatusTooManyRequests,
			body:            `{"error":429}`,
			wantTitle:       "React",
			wantDescription: FetchFailedDescription,
		},
		"server error": {
			status:          http.StatusInternalServerError,
			body:            `oops`,
			wantTitle:       "React",
			wantDescription: FetchFailedDescription,
		},
		"malformed json": {
			status:          http.StatusOK,
			body:            `{"title":`,
			wantTitle:       "React",
			wantDescription: FetchFailedDescription,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				if got := r.URL.Query().Get("key"); got != "secret" {
					t.Errorf("key param = %q, want secret", got)
				}
				if got := r.URL.Query().Get("q"); got != "https://react.dev/learn" {
					t.Errorf("q param = %q, want the bookmark url", got)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			f := NewFetcher(server.URL, StaticCredential("secret"), WithHTTPClient(server.Client()))

			p, err := f.Fetch(context.Background(), "https://react.dev/learn")
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if p.Title != tc.wantTitle {
				t.Errorf("Title = %q, want %q", p.Title, tc.wantTitle)
			}
			if p.Description != tc.wantDescription {
				t.Errorf("Description = %q, want %q", p.Description, tc.wantDescription)
			}
			if p.Image != tc.wantImage {
				t.Errorf("Image = %q, want %q", p.Image, tc.wantImage)
			}
			if p.Domain != "react.dev" {
				t.Errorf("Domain = %q, want react.dev", p.Domain)
			}
			if n := atomic.LoadInt32(&attempts); n != 1 {
				t.Errorf("provider called %d times, want exactly 1 (no retry)", n)
			}
		})
	}
}

func TestFetcher_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	f := NewFetcher(endpoint, StaticCredential("secret"))
	p, err := f.Fetch(context.Background(), "https://news.ycombinator.com/item?id=1")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if p.Title != "News Ycombinator" {
		t.Errorf("Title = %q, want %q", p.Title, "News Ycombinator")
	}
	if p.Description != FetchFailedDescription {
		t.Errorf("Description = %q, want %q", p.Description, FetchFailedDescription)
	}
}

func TestFetcher_KeyChangeTakesEffect(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"title":"Live"}`))
	}))
	defer server.Close()

	cred := StaticCredential("")
	f := NewFetcher(server.URL, cred, WithHTTPClient(server.Client()))

	p, _ := f.Fetch(context.Background(), "https://example.com")
	if p.Description != NoKeyDescription {
		t.Fatalf("Description = %q, want no-key notice", p.Description)
	}

	if err := cred.Set(context.Background(), "k"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	p, _ = f.Fetch(context.Background(), "https://example.com")
	if p.Title != "Live" {
		t.Errorf("Title after Set = %q, want Live", p.Title)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("provider calls = %d, want 1", n)
	}
}

func TestFetcher_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := NewFetcher(server.URL, StaticCredential("secret"), WithHTTPClient(server.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	p, err := f.Fetch(ctx, "https://react.dev/learn")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}
	if p != (domain.Preview{}) {
		t.Errorf("Fetch() preview = %+v, want zero value", p)
	}
}

func TestFetcher_TimeoutKeepsCustomClient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	tests := map[string][]Option{
		"client then timeout": {WithHTTPClient(server.Client()), WithTimeout(20 * time.Millisecond)},
		"timeout then client": {WithTimeout(20 * time.Millisecond), WithHTTPClient(server.Client())},
	}

	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			f := NewFetcher(server.URL, StaticCredential("secret"), opts...)

			if f.httpClient.Transport != server.Client().Transport {
				t.Error("custom client transport was dropped")
			}
			if f.httpClient.Timeout != 20*time.Millisecond {
				t.Errorf("Timeout = %v, want 20ms", f.httpClient.Timeout)
			}

			p, err := f.Fetch(context.Background(), "https://react.dev/learn")
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if p.Description != FetchFailedDescription {
				t.Errorf("Description = %q, want %q", p.Description, FetchFailedDescription)
			}
		})
	}
}
