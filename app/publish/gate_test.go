package publish

import (
	"context"
	"fmt"
	"testing"
)

type sinkCall struct {
	method         string
	chat           string
	payload        string
	disablePreview bool
}

// mockSink records calls and fails on demand
type mockSink struct {
	calls    []sinkCall
	photoErr error
	textErr  error
}

func (m *mockSink) SendText(ctx context.Context, chat, html string, disablePreview bool) error {
	m.calls = append(m.calls, sinkCall{method: "text", chat: chat, payload: html, disablePreview: disablePreview})
	return m.textErr
}

func (m *mockSink) SendPhoto(ctx context.Context, chat, photoURL, captionHTML string) error {
	m.calls = append(m.calls, sinkCall{method: "photo", chat: chat, payload: photoURL})
	return m.photoErr
}

// mockRepository implements database.PostRepositoryInterface in memory
type mockRepository struct {
	marked  map[string]bool
	markErr error
	evicted int
}

func newMockRepository() *mockRepository {
	return &mockRepository{marked: make(map[string]bool)}
}

func (m *mockRepository) Seen(source, postKey string) (bool, error) {
	return m.marked[source+"/"+postKey], nil
}

func (m *mockRepository) SeenFingerprint(fingerprint string) (bool, error) {
	return false, nil
}

func (m *mockRepository) Mark(source, postKey, fingerprint string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.marked[source+"/"+postKey] = true
	return nil
}

func (m *mockRepository) Evict(ceiling int) (int, error) {
	m.evicted++
	return 0, nil
}

func (m *mockRepository) Count() (int, error) {
	return len(m.marked), nil
}

type mockTracker struct {
	published int
	saves     int
}

func (m *mockTracker) PublishSucceeded() { m.published++ }
func (m *mockTracker) Save() error {
	m.saves++
	return nil
}

func newTestGate(sink *mockSink, repository *mockRepository, tracker *mockTracker) *Gate {
	return NewGate(sink, repository, tracker, "@channel", "@admin", 0, 100)
}

func TestPublishTextPost(t *testing.T) {
	sink := &mockSink{}
	repository := newMockRepository()
	tracker := &mockTracker{}
	gate := newTestGate(sink, repository, tracker)

	post := Post{Source: "news", Key: "42", Fingerprint: "fp", HTML: "<b>Заголовок</b>"}
	if err := gate.Publish(context.Background(), post); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sink.calls) != 1 || sink.calls[0].method != "text" {
		t.Fatalf("Expected one text send, got %+v", sink.calls)
	}
	if !repository.marked["news/42"] {
		t.Error("Expected identity marked after confirmed send")
	}
	if repository.evicted != 1 {
		t.Errorf("Expected eviction after mark, got %d", repository.evicted)
	}
	if tracker.published != 1 || tracker.saves != 1 {
		t.Errorf("Expected stats bump and snapshot save, published=%d saves=%d", tracker.published, tracker.saves)
	}
}

func TestPublishPhotoPost(t *testing.T) {
	sink := &mockSink{}
	gate := newTestGate(sink, newMockRepository(), &mockTracker{})

	post := Post{Source: "news", Key: "43", HTML: "caption", ImageURL: "https://cdn.example.com/p.jpg"}
	if err := gate.Publish(context.Background(), post); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sink.calls) != 1 || sink.calls[0].method != "photo" {
		t.Fatalf("Expected one photo send, got %+v", sink.calls)
	}
}

func TestPublishPhotoFailureFallsBackToText(t *testing.T) {
	sink := &mockSink{photoErr: fmt.Errorf("wrong file identifier")}
	repository := newMockRepository()
	gate := newTestGate(sink, repository, &mockTracker{})

	post := Post{Source: "news", Key: "44", HTML: "caption", ImageURL: "https://cdn.example.com/p.jpg"}
	if err := gate.Publish(context.Background(), post); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sink.calls) != 2 || sink.calls[0].method != "photo" || sink.calls[1].method != "text" {
		t.Fatalf("Expected photo attempt then text fallback, got %+v", sink.calls)
	}
	if !repository.marked["news/44"] {
		t.Error("Expected identity marked after fallback delivery")
	}
}

func TestPublishDeliveryFailureLeavesUnmarked(t *testing.T) {
	sink := &mockSink{textErr: fmt.Errorf("chat not found")}
	repository := newMockRepository()
	tracker := &mockTracker{}
	gate := newTestGate(sink, repository, tracker)

	post := Post{Source: "news", Key: "45", HTML: "text"}
	if err := gate.Publish(context.Background(), post); err == nil {
		t.Fatal("Expected error on delivery failure")
	}

	if repository.marked["news/45"] {
		t.Error("Expected identity left unmarked so the next cycle retries")
	}
	if tracker.published != 0 {
		t.Error("Expected no stats bump on failed delivery")
	}
}

func TestPublishReportDisablesPreviewAndSkipsPhoto(t *testing.T) {
	sink := &mockSink{}
	gate := newTestGate(sink, newMockRepository(), &mockTracker{})

	post := Post{Source: "news", Key: "46", HTML: "report body", ImageURL: "https://cdn.example.com/p.jpg", IsReport: true}
	if err := gate.Publish(context.Background(), post); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sink.calls) != 1 || sink.calls[0].method != "text" {
		t.Fatalf("Expected report to go as text, got %+v", sink.calls)
	}
	if !sink.calls[0].disablePreview {
		t.Error("Expected report to disable link preview")
	}
}

func TestAlert(t *testing.T) {
	sink := &mockSink{}
	gate := newTestGate(sink, newMockRepository(), &mockTracker{})

	gate.Alert(context.Background(), "cycle failed")

	if len(sink.calls) != 1 || sink.calls[0].chat != "@admin" {
		t.Fatalf("Expected alert sent to admin chat, got %+v", sink.calls)
	}
	if !sink.calls[0].disablePreview {
		t.Error("Expected alert to disable preview")
	}
}

func TestAlertWithoutAdminChat(t *testing.T) {
	sink := &mockSink{}
	gate := NewGate(sink, newMockRepository(), &mockTracker{}, "@channel", "", 0, 100)

	gate.Alert(context.Background(), "nobody listens")

	if len(sink.calls) != 0 {
		t.Errorf("Expected no send without admin chat, got %+v", sink.calls)
	}
}
