package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testSession() Session {
	return Session{
		Token:  "abc",
		UserID: "42",
		Email:  "ranger@ops.io",
		Role:   RoleAgent,
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	want := testSession()
	if err := st.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok := st.Load()
	if !ok {
		t.Fatal("Load() ok = false after Save")
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestStore_LoadAbsentInitially(t *testing.T) {
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if _, ok := st.Load(); ok {
		t.Error("Load() ok = true for fresh store")
	}
	if st.Token() != "" {
		t.Errorf("Token() = %q, want empty", st.Token())
	}
}

func TestStore_ClearRemovesSession(t *testing.T) {
	st, _ := NewStore(t.TempDir())
	st.Save(testSession())

	if err := st.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := st.Load(); ok {
		t.Error("Load() ok = true after Clear")
	}

	// Clearing twice is the same as clearing once
	if err := st.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, _ := NewStore(dir)
	want := testSession()
	if err := first.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	got, ok := second.Load()
	if !ok {
		t.Fatal("session did not survive reopen")
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestStore_RejectsIncompleteSession(t *testing.T) {
	st, _ := NewStore(t.TempDir())

	incomplete := testSession()
	incomplete.Email = ""

	if err := st.Save(incomplete); err == nil {
		t.Error("Save() should reject a session with a missing field")
	}
	if _, ok := st.Load(); ok {
		t.Error("failed Save must not leave a session behind")
	}
}

func TestStore_PartialFileTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()

	// A session file missing the role field, as if written by a buggy
	// or older client.
	path := filepath.Join(dir, "session.json")
	os.WriteFile(path, []byte(`{"token":"abc","user_id":"42","email":"ranger@ops.io"}`), 0600)

	st, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, ok := st.Load(); ok {
		t.Error("partial session on disk must load as absent")
	}
}

func TestStore_CorruptFileTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "session.json"), []byte("not json"), 0600)

	st, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, ok := st.Load(); ok {
		t.Error("corrupt session on disk must load as absent")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	st, _ := NewStore(t.TempDir())
	sess := testSession()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				st.Save(sess)
				if got, ok := st.Load(); ok && got != sess {
					t.Errorf("observed torn session: %+v", got)
				}
				st.Token()
			}
		}()
	}
	wg.Wait()
}
