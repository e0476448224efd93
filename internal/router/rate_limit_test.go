package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storefront-next/internal/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newJSONContext(body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"
	return c
}

func TestKeyByIPAndJSONField(t *testing.T) {
	c := newJSONContext(`{"email":" Test@Example.com "}`)

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key want test@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Test@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestKeyByIPAndNestedJSONField(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "nested", body: `{"customer":{"email":"Jane@Example.com"}}`, want: "jane@example.com|1.2.3.4"},
		{name: "missing", body: `{"customer":{}}`, want: "1.2.3.4"},
		{name: "not object", body: `{"customer":"jane"}`, want: "1.2.3.4"},
		{name: "not string", body: `{"customer":{"email":42}}`, want: "1.2.3.4"},
		{name: "invalid json", body: `{"customer":`, want: "1.2.3.4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := KeyByIPAndJSONField("customer.email")(newJSONContext(tc.body))
			if got != tc.want {
				t.Fatalf("key want %s got %s", tc.want, got)
			}
		})
	}
}

func TestKeyByCartToken(t *testing.T) {
	c := newJSONContext("")
	if got := KeyByCartToken(c); got != "1.2.3.4" {
		t.Fatalf("without token want ip got %s", got)
	}
	c.Request.Header.Set(constants.HeaderCartToken, " ABC-123 ")
	if got := KeyByCartToken(c); got != "cart|abc-123" {
		t.Fatalf("want cart|abc-123 got %s", got)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestRateLimitMiddlewareBlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.Use(RateLimitMiddleware(client, RateLimitRule{Prefix: "test:rate:checkout", WindowSeconds: 60, MaxRequests: 2}, KeyByCartToken))
	r.POST("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0})
	})
	send := func(token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Header.Set(constants.HeaderCartToken, token)
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := send("cart-a"); !strings.Contains(w.Body.String(), `"status_code":0`) {
			t.Fatalf("request %d should pass, got %s", i+1, w.Body.String())
		}
	}

	w := send("cart-a")
	if !strings.Contains(w.Body.String(), `"status_code":429`) {
		t.Fatalf("third request should be limited, got %s", w.Body.String())
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("retry-after want 60 got %q", w.Header().Get("Retry-After"))
	}
	if !mr.Exists("test:rate:checkout:cart|cart-a") {
		t.Fatalf("counter key missing, keys=%v", mr.Keys())
	}

	if w := send("cart-b"); !strings.Contains(w.Body.String(), `"status_code":0`) {
		t.Fatalf("other cart should pass, got %s", w.Body.String())
	}
}

func TestRateLimitMiddlewareRedisFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	cases := []struct {
		name     string
		failOpen bool
		want     string
	}{
		{name: "fail open", failOpen: true, want: `"status_code":0`},
		{name: "fail closed", failOpen: false, want: `"status_code":500`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RateLimitMiddleware(client, RateLimitRule{Prefix: "test:rate", WindowSeconds: 60, MaxRequests: 1, FailOpen: tc.failOpen}, KeyByIP))
			r.POST("/contact", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status_code": 0})
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/contact", nil))
			if !strings.Contains(w.Body.String(), tc.want) {
				t.Fatalf("want %s got %s", tc.want, w.Body.String())
			}
		})
	}
}
