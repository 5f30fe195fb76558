package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stylemuse/shopassist/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.CatalogConfig{
		BaseURL:    srv.URL,
		APIKey:     "key",
		MaxResults: 10,
		CacheTTL:   time.Minute,
	}, nil), srv
}

func TestSearch(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "minimalist tote bag" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(`{"results":[
			{"asin":"B01","title":"Minimalist Canvas Tote Bag","price":29.99,"rating":4.5,"review_count":812,"is_prime":true,"image":"https://img/b01.jpg","link":"https://shop/b01","category":"bags"},
			{"asin":"B02","title":"Linen Tote","price":39.0}
		]}`))
	})

	products := c.Search(context.Background(), []string{"minimalist", "tote bag"}, 5)
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if products[0].ID != "B01" || !products[0].IsPrime || products[0].Category != "bags" {
		t.Errorf("unexpected first product: %+v", products[0])
	}
}

func TestSearch_HTTPErrorSwallowed(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	products := c.Search(context.Background(), []string{"tote"}, 5)
	if products == nil || len(products) != 0 {
		t.Errorf("got %v, want empty non-nil slice", products)
	}
}

func TestSearch_NetworkErrorSwallowed(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	products := c.Search(context.Background(), []string{"tote"}, 5)
	if len(products) != 0 {
		t.Errorf("got %d products, want 0", len(products))
	}
}

func TestSearch_MalformedResponseSwallowed(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	if products := c.Search(context.Background(), []string{"tote"}, 5); len(products) != 0 {
		t.Errorf("got %d products, want 0", len(products))
	}
}

func TestSearch_NoTermsNoRequest(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if products := c.Search(context.Background(), nil, 5); len(products) != 0 {
		t.Errorf("got %d products, want 0", len(products))
	}
	if called {
		t.Error("no request should be made without search terms")
	}
}

func TestSearch_LimitClampedToMaxResults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want clamped 10", got)
		}
		w.Write([]byte(`{"results":[]}`))
	})
	c.Search(context.Background(), []string{"tote"}, 500)
}
