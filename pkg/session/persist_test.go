package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"givelife/pkg/domain"
)

func TestFilePersisterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	p := FilePersister{Path: path}
	ctx := context.Background()

	if _, ok, err := p.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty load, got ok=%v err=%v", ok, err)
	}
	snap := Snapshot{Token: "tok", User: domain.User{ID: "u1", Email: "u1@example.com", Role: domain.RoleHospital}}
	if err := p.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %o", perm)
	}
	got, ok, err := p.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Token != "tok" || got.User.Role != domain.RoleHospital {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if err := p.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := p.Clear(ctx); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
}

func TestFilePersisterCorruptFileIsDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"token":"t","user":"{not json"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := New(context.Background(), Config{Auth: &fakeAuth{}, Persister: FilePersister{Path: path}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if s.State().Authenticated {
		t.Fatalf("expected corrupt session to be ignored")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected corrupt session file removed, stat err=%v", err)
	}
}

func TestRedisPersister(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	sessions, err := NewRedisSessions(client, "test:session", time.Minute)
	if err != nil {
		t.Fatalf("new redis sessions: %v", err)
	}
	ctx := context.Background()

	p := sessions.For("sid-1")
	if _, ok, err := p.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty load, got ok=%v err=%v", ok, err)
	}
	if err := p.Save(ctx, Snapshot{Token: "tok", User: domain.User{ID: "u1", Role: domain.RoleAdmin}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := mr.HGet("test:session:sid-1", "token"); got != "tok" {
		t.Fatalf("unexpected token field %q", got)
	}
	if ttl := mr.TTL("test:session:sid-1"); ttl != time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}
	if _, ok, _ := sessions.For("sid-2").Load(ctx); ok {
		t.Fatalf("sessions must not leak across ids")
	}

	mr.FastForward(61 * time.Second)
	if _, ok, _ := p.Load(ctx); ok {
		t.Fatalf("expected session to expire")
	}

	_ = p.Save(ctx, Snapshot{Token: "tok2", User: domain.User{ID: "u1"}})
	if err := p.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("test:session:sid-1") {
		t.Fatalf("expected key deleted")
	}
}

func TestNewRedisSessionsValidates(t *testing.T) {
	if _, err := NewRedisSessions(nil, "", time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	defer client.Close()
	if _, err := NewRedisSessions(client, "", 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}
