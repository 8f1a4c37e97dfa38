package mongostore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/store"
	"github.com/matzehuels/navtree/pkg/store/mongostore"
	"github.com/matzehuels/navtree/pkg/store/storetest"
)

func TestOpenRequiresURI(t *testing.T) {
	if _, err := mongostore.Open(context.Background(), "", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestConformance(t *testing.T) {
	uri := os.Getenv("NAVTREE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("NAVTREE_TEST_MONGO_URI not set")
	}
	n := 0
	storetest.Run(t, func(t *testing.T) store.Backend {
		n++
		ctx := context.Background()
		db := fmt.Sprintf("navtree_test_%d_%d", time.Now().UnixNano(), n)
		s, err := mongostore.Open(ctx, uri, db)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return s
	})
}
