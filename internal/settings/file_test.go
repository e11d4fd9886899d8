package settings

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	logx "modewatch/pkg/logx"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.json")

	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer st.Close()

	if _, ok, err := st.Get(ctx, "schedules"); err != nil || ok {
		t.Fatalf("fresh store Get = (ok=%v, err=%v), want absent", ok, err)
	}

	want := json.RawMessage(`{"list":[{"id":"a"}]}`)
	if err := st.Put(ctx, "schedules", want); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, ok, err := st.Get(ctx, "schedules")
	if err != nil || !ok {
		t.Fatalf("Get = (ok=%v, err=%v)", ok, err)
	}
	if string(got) != string(want) {
		t.Fatalf("Get = %s, want %s", got, want)
	}

	// A fresh open sees the persisted value.
	st2, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer st2.Close()
	got, ok, err = st2.Get(ctx, "schedules")
	if err != nil || !ok || string(got) != string(want) {
		t.Fatalf("reopened Get = (%s, %v, %v)", got, ok, err)
	}
}

func TestFileStoreSurvivesCorruptFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer st.Close()

	if _, ok, _ := st.Get(ctx, "anything"); ok {
		t.Fatal("corrupt file should start empty")
	}
	if err := st.Put(ctx, "k", json.RawMessage(`1`)); err != nil {
		t.Fatalf("Put after corrupt open: %v", err)
	}
}

func TestOpenDriverDispatch(t *testing.T) {
	t.Parallel()
	if st, err := Open(Config{}, logx.Nop()); err != nil || st != nil {
		t.Fatalf("empty driver = (%v, %v), want disabled (nil, nil)", st, err)
	}
	if st, err := Open(Config{Driver: "none"}, logx.Nop()); err != nil || st != nil {
		t.Fatalf("driver none = (%v, %v), want disabled (nil, nil)", st, err)
	}
	if _, err := Open(Config{Driver: "bogus"}, logx.Nop()); err == nil {
		t.Fatal("unknown driver should error")
	}
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatal("file driver without path should error")
	}
}
