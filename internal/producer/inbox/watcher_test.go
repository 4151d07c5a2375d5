package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shown struct {
	kind    domain.Kind
	title   string
	message string
	data    domain.Data
}

type fakeNotifier struct {
	mu    sync.Mutex
	shown []shown
}

func (f *fakeNotifier) record(kind domain.Kind, title, message string, data domain.Data) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, shown{kind: kind, title: title, message: message, data: data})
	return "id"
}

func (f *fakeNotifier) ShowMessage(title, message string, data domain.Data) string {
	return f.record(domain.KindInfo, title, message, data)
}

func (f *fakeNotifier) ShowWarning(title, message string, data domain.Data) string {
	return f.record(domain.KindWarning, title, message, data)
}

func (f *fakeNotifier) all() []shown {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shown(nil), f.shown...)
}

func writeMessage(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestScanShowsEachFileOnce(t *testing.T) {
	dir := t.TempDir()
	writeMessage(t, dir, "002.json", `{"conversation_id":"c-2","from":"Lee","body":"Pickup at 5?"}`)
	writeMessage(t, dir, "001.json", `{"conversation_id":"c-1","from":"Dana","body":"Is my refill ready?","received_at":"2026-04-02T09:15:00Z"}`)
	writeMessage(t, dir, "notes.txt", "ignored")

	n := &fakeNotifier{}
	w := NewWatcher(dir, n, nil)

	count, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got := n.all()
	require.Len(t, got, 2)
	assert.Equal(t, "New message from Dana", got[0].title)
	assert.Equal(t, "Is my refill ready?", got[0].message)
	assert.Equal(t, domain.Data{
		"conversation_id": "c-1",
		"from":            "Dana",
		"file":            "001.json",
		"received_at":     "2026-04-02T09:15:00Z",
	}, got[0].data)
	assert.Equal(t, "New message from Lee", got[1].title)

	count, err = w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Len(t, n.all(), 2)
}

func TestScanReportsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeMessage(t, dir, "bad.json", `{"from":`)
	writeMessage(t, dir, "empty.json", `{}`)

	n := &fakeNotifier{}
	count, err := NewWatcher(dir, n, nil).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	got := n.all()
	require.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, domain.KindWarning, s.kind)
		assert.Equal(t, "Unreadable inbox message", s.title)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), &fakeNotifier{}, nil).Scan(context.Background())
	assert.Error(t, err)
}

func TestRunPicksUpNewFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	n := &fakeNotifier{}
	w := NewWatcher(dir, n, nil)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(dir)
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)

	writeMessage(t, dir, "003.json", `{"from":"Sam","body":"Thanks!"}`)
	assert.Eventually(t, func() bool { return len(n.all()) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, "New message from Sam", n.all()[0].title)
}

func TestIsMessageFile(t *testing.T) {
	assert.True(t, isMessageFile("/tmp/inbox/a.json"))
	assert.True(t, isMessageFile("B.JSON"))
	assert.False(t, isMessageFile(".a.json.swp"))
	assert.False(t, isMessageFile(".hidden.json"))
	assert.False(t, isMessageFile("a.txt"))
}
