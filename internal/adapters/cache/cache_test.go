package cache

import (
	"context"
	"delivery-route-console/internal/adapters/repositories"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/platform/db"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSQLGeocodeCacheRoundTrip(t *testing.T) {
	conn, dialect, err := db.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn, dialect); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	c := NewSQLGeocodeCache(conn, dialect)
	ctx := context.Background()

	if err := c.PutMany(ctx, map[string]domain.Coordinates{
		"Khreshchatyk 1": {Lat: 50.45, Lon: 30.52},
		"Podil 3":        {Lat: 50.46, Lon: 30.51},
	}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	// Overwrite one entry.
	if err := c.PutMany(ctx, map[string]domain.Coordinates{"Podil 3": {Lat: 1, Lon: 2}}); err != nil {
		t.Fatalf("PutMany overwrite: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"Khreshchatyk 1", "Podil 3", "Podil 3", "missing", ""})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(GetMany) = %d, want 2", len(got))
	}
	if got["Podil 3"] != (domain.Coordinates{Lat: 1, Lon: 2}) {
		t.Fatalf("Podil 3 = %+v, want overwritten value", got["Podil 3"])
	}
	if got["Khreshchatyk 1"].Lat != 50.45 {
		t.Fatalf("Khreshchatyk 1 = %+v", got["Khreshchatyk 1"])
	}
}

func TestRedisGeocodeCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisGeocodeCache(client, time.Hour)
	ctx := context.Background()

	if err := c.PutMany(ctx, map[string]domain.Coordinates{"Khreshchatyk 1": {Lat: 50.45, Lon: 30.52}}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	got, err := c.GetMany(ctx, []string{"Khreshchatyk 1", "missing"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 1 || got["Khreshchatyk 1"] != (domain.Coordinates{Lat: 50.45, Lon: 30.52}) {
		t.Fatalf("GetMany = %+v", got)
	}

	if ttl := mr.TTL(geocodeKey("Khreshchatyk 1")); ttl != time.Hour {
		t.Fatalf("TTL = %v, want 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	got, err = c.GetMany(ctx, []string{"Khreshchatyk 1"})
	if err != nil {
		t.Fatalf("GetMany after expiry: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expired entry still returned: %+v", got)
	}
}
