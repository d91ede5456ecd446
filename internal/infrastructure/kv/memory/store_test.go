package memory

import (
	"context"
	"testing"
)

func TestStoreCopiesValues(t *testing.T) {
	store := New()
	value := []byte(`{"a":1}`)
	if err := store.Put(context.Background(), "k", value); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	value[2] = 'b'

	raw, found, err := store.Get(context.Background(), "k")
	if err != nil || !found {
		t.Fatalf("Get() found=%v err=%v", found, err)
	}
	if string(raw) != `{"a":1}` {
		t.Fatalf("stored value aliased caller buffer: %s", raw)
	}
}
