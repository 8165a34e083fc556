package redis

import (
	"slices"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedisClient starts a miniredis server and a client for it. Both are
// closed when the test ends.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// requireKeys fails unless the server holds exactly the given keys.
func requireKeys(t *testing.T, mr *miniredis.Miniredis, want ...string) {
	t.Helper()

	got := mr.Keys()
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected redis keys: got %v, want %v", got, want)
	}
}
