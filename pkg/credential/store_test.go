package credential_test

import (
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/loopline-dev/loopline/pkg/credential"
)

// recordingMirror records cookies written by the store.
type recordingMirror struct {
	cookies []*http.Cookie
}

func (m *recordingMirror) SetCookie(c *http.Cookie) {
	m.cookies = append(m.cookies, c)
}

func (m *recordingMirror) last(t *testing.T) *http.Cookie {
	t.Helper()
	if len(m.cookies) == 0 {
		t.Fatal("expected a cookie write")
	}
	return m.cookies[len(m.cookies)-1]
}

// failingStorage fails deletes of one key to exercise partial-clear handling.
type failingStorage struct {
	credential.Storage
	failDelete string
}

func (f *failingStorage) Delete(key string) error {
	if key == f.failDelete {
		return errors.New("storage unavailable")
	}
	return f.Storage.Delete(key)
}

func TestStore_SaveWritesBothKeys(t *testing.T) {
	storage := credential.NewMemoryStorage()
	store := credential.NewStore(storage)

	if err := store.Save("tok-123"); err != nil {
		t.Fatalf("save: %v", err)
	}

	for _, key := range []string{credential.PrimaryKey, credential.LegacyKey} {
		got, err := storage.Get(key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if got != "tok-123" {
			t.Errorf("expected %s to hold tok-123, got %q", key, got)
		}
	}
}

func TestStore_SaveRejectsEmptyToken(t *testing.T) {
	store := credential.NewStore(credential.NewMemoryStorage())
	if err := store.Save(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestStore_LoadPrefersPrimary(t *testing.T) {
	storage := credential.NewMemoryStorage()
	storage.Set(credential.PrimaryKey, "primary")
	storage.Set(credential.LegacyKey, "legacy")

	store := credential.NewStore(storage)
	tok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok != "primary" {
		t.Errorf("expected primary, got %q", tok)
	}
}

func TestStore_LoadFallsBackToLegacy(t *testing.T) {
	storage := credential.NewMemoryStorage()
	storage.Set(credential.LegacyKey, "legacy-only")

	store := credential.NewStore(storage)
	tok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok != "legacy-only" {
		t.Errorf("expected legacy-only, got %q", tok)
	}
}

func TestStore_LoadEmpty(t *testing.T) {
	store := credential.NewStore(credential.NewMemoryStorage())
	tok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok != "" {
		t.Errorf("expected empty token, got %q", tok)
	}
}

func TestStore_ClearRemovesAllCopies(t *testing.T) {
	storage := credential.NewMemoryStorage()
	mirror := &recordingMirror{}
	store := credential.NewStore(storage, credential.WithMirror(mirror))

	if err := store.Save("tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	tok, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok != "" {
		t.Errorf("expected empty store after clear, got %q", tok)
	}

	expired := mirror.last(t)
	if expired.Value != "" || expired.MaxAge != -1 {
		t.Errorf("expected expired mirror cookie, got value=%q maxAge=%d", expired.Value, expired.MaxAge)
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := credential.NewStore(credential.NewMemoryStorage())
	if err := store.Clear(); err != nil {
		t.Fatalf("clear on empty store: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestStore_ClearAttemptsEveryCopy(t *testing.T) {
	backing := credential.NewMemoryStorage()
	storage := &failingStorage{Storage: backing, failDelete: credential.PrimaryKey}
	mirror := &recordingMirror{}
	store := credential.NewStore(storage, credential.WithMirror(mirror))

	backing.Set(credential.PrimaryKey, "tok")
	backing.Set(credential.LegacyKey, "tok")

	if err := store.Clear(); err == nil {
		t.Fatal("expected error from failing delete")
	}

	// The legacy copy and the cookie mirror must still have been cleared.
	legacy, _ := backing.Get(credential.LegacyKey)
	if legacy != "" {
		t.Errorf("expected legacy key cleared, got %q", legacy)
	}
	if expired := mirror.last(t); expired.MaxAge != -1 {
		t.Errorf("expected mirror cookie expired, got maxAge=%d", expired.MaxAge)
	}
}

func TestStore_MirrorCookieAttributes(t *testing.T) {
	mirror := &recordingMirror{}
	store := credential.NewStore(credential.NewMemoryStorage(), credential.WithMirror(mirror))

	if err := store.Save("tok-abc"); err != nil {
		t.Fatalf("save: %v", err)
	}

	c := mirror.last(t)
	if c.Name != credential.CookieName {
		t.Errorf("expected cookie name %s, got %s", credential.CookieName, c.Name)
	}
	if c.Value != "tok-abc" {
		t.Errorf("expected cookie value tok-abc, got %q", c.Value)
	}
	if c.Path != "/" {
		t.Errorf("expected path /, got %q", c.Path)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax, got %v", c.SameSite)
	}
	if c.MaxAge != credential.DefaultCookieMaxAge {
		t.Errorf("expected max-age %d, got %d", credential.DefaultCookieMaxAge, c.MaxAge)
	}
}

func TestFileStorage_RoundTrip(t *testing.T) {
	storage, err := credential.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new file storage: %v", err)
	}

	if got, _ := storage.Get("access_token"); got != "" {
		t.Errorf("expected empty value before set, got %q", got)
	}

	if err := storage.Set("access_token", "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := storage.Get("access_token")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "tok" {
		t.Errorf("expected tok, got %q", got)
	}

	if err := storage.Delete("access_token"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := storage.Delete("access_token"); err != nil {
		t.Fatalf("delete absent key: %v", err)
	}
}

func TestFileStorage_RejectsPathKeys(t *testing.T) {
	storage, err := credential.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new file storage: %v", err)
	}
	if _, err := storage.Get("../escape"); err == nil {
		t.Fatal("expected error for path traversal key")
	}
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	storage, err := credential.OpenSQLiteStorage(filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatalf("open sqlite storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	if got, _ := storage.Get("access_token"); got != "" {
		t.Errorf("expected empty value before set, got %q", got)
	}

	if err := storage.Set("access_token", "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := storage.Set("access_token", "tok-2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := storage.Get("access_token")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "tok-2" {
		t.Errorf("expected tok-2, got %q", got)
	}

	if err := storage.Delete("access_token"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := storage.Get("access_token"); got != "" {
		t.Errorf("expected empty value after delete, got %q", got)
	}
}
