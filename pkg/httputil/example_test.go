package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/navtree/pkg/httputil"
)

func ExampleCache() {
	dir := filepath.Join(os.TempDir(), "navtree-example")
	cache, err := httputil.NewCache(dir, 24*time.Hour)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer os.RemoveAll(dir)

	snap := cache.Namespace("http://localhost:8080:")
	if err := snap.Set("dashboards", []string{"home", "sales"}); err != nil {
		fmt.Println("Error:", err)
		return
	}

	var links []string
	if ok, err := snap.Get("dashboards", &links); ok && err == nil {
		fmt.Println("Links:", links)
	}
	// Output:
	// Links: [home sales]
}

func ExampleRetry() {
	calls := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &httputil.RetryableError{Err: errors.New("connection refused")}
		}
		return nil
	})
	fmt.Println("Calls:", calls)
	fmt.Println("Error:", err)
	// Output:
	// Calls: 3
	// Error: <nil>
}
