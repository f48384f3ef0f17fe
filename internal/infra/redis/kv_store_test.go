package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestKV(t *testing.T) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewKVStore(client), mr
}

func TestKVRoundTrip(t *testing.T) {
	store, mr := newTestKV(t)

	if _, ok, err := store.Get("identity_uid"); err != nil || ok {
		t.Fatalf("get on empty store: ok=%v err=%v", ok, err)
	}

	if err := store.Set("identity_uid", "sealed-blob"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := store.Get("identity_uid")
	if err != nil || !ok || v != "sealed-blob" {
		t.Fatalf("get: v=%q ok=%v err=%v", v, ok, err)
	}

	// Keys are namespaced so they cannot collide with the quiz cache.
	if !mr.Exists("local:identity_uid") {
		t.Fatal("expected namespaced key in redis")
	}

	if err := store.Delete("identity_uid"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get("identity_uid"); ok {
		t.Fatal("key still present after delete")
	}
}

func TestKVGetReportsConnectionErrors(t *testing.T) {
	store, mr := newTestKV(t)
	mr.Close()

	if _, _, err := store.Get("identity_uid"); err == nil {
		t.Fatal("expected error with redis down")
	}
}
