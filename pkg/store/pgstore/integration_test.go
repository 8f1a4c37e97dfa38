package pgstore_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/navtree/pkg/store"
	"github.com/matzehuels/navtree/pkg/store/pgstore"
	"github.com/matzehuels/navtree/pkg/store/storetest"
)

func TestConformance(t *testing.T) {
	dsn := os.Getenv("NAVTREE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NAVTREE_TEST_POSTGRES_DSN not set")
	}
	n := 0
	storetest.Run(t, func(t *testing.T) store.Backend {
		n++
		prefix := fmt.Sprintf("navtree_test_%d_%d", time.Now().UnixNano(), n)
		s, err := pgstore.New(dsn, pgstore.WithTablePrefix(prefix))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return s
	})
}
