package processing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spacesedan/moodflow/internal/models"
	"github.com/spacesedan/moodflow/internal/sentiment"
)

type memoryStore struct {
	mu         sync.Mutex
	entries    []models.JournalEntry
	failWrites map[string]int
	writes     map[string]int
	putErr     error
	putCalls   int
	lastLimit  int
}

func newMemoryStore(entries ...models.JournalEntry) *memoryStore {
	return &memoryStore{
		entries:    entries,
		failWrites: map[string]int{},
		writes:     map[string]int{},
	}
}

func (m *memoryStore) GetUnanalyzedEntries(_ context.Context, userID string, limit int) ([]models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit

	var out []models.JournalEntry
	for _, e := range m.entries {
		if e.UserID == userID && !e.IsAnalyzed() {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryStore) UpdateEntryAnalysis(_ context.Context, userID, entryID string, result models.AnalysisResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writes[entryID]++
	if m.failWrites[entryID] > 0 {
		m.failWrites[entryID]--
		return errors.New("throttled")
	}
	for i := range m.entries {
		if m.entries[i].UserID == userID && m.entries[i].EntryID == entryID {
			m.entries[i].ApplyAnalysis(result)
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memoryStore) ScanAllEntries(context.Context) ([]models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.JournalEntry(nil), m.entries...), nil
}

func (m *memoryStore) PutEntries(_ context.Context, entries []models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	for _, e := range entries {
		for i := range m.entries {
			if m.entries[i].EntryID == e.EntryID {
				m.entries[i] = e
			}
		}
	}
	return nil
}

func (m *memoryStore) UsersWithUnanalyzedEntries(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var users []string
	for _, e := range m.entries {
		if !e.IsAnalyzed() && !seen[e.UserID] {
			seen[e.UserID] = true
			users = append(users, e.UserID)
		}
	}
	return users, nil
}

func newTestAnalyzer(store EntryStore, scorer sentiment.Scorer) *EntryAnalyzer {
	a := NewEntryAnalyzer(store, scorer, 0)
	a.Backoff = 0
	return a
}

func TestAnalyzeUnscored_NoEntries(t *testing.T) {
	t.Parallel()

	report, err := newTestAnalyzer(newMemoryStore(), sentiment.NewLexiconScorer()).AnalyzeUnscored(context.Background(), "u1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if report.Notice != NO_NEW_ENTRIES || report.Analyzed != 0 {
		t.Fatalf("report=%+v", report)
	}
}

func TestAnalyzeUnscored_ScoresAndWritesBack(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(
		models.JournalEntry{UserID: "u1", EntryID: "e2", Content: "I feel hopeless and exhausted and sad"},
		models.JournalEntry{UserID: "u1", EntryID: "e1", Content: "Today was a great day and I feel happy"},
		models.JournalEntry{UserID: "u2", EntryID: "e3", Content: "I am angry"},
	)

	report, err := newTestAnalyzer(store, sentiment.NewLexiconScorer()).AnalyzeUnscored(context.Background(), "u1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if report.Analyzed != 2 || report.Failed != 0 {
		t.Fatalf("report=%+v", report)
	}
	if report.Insight != "Analyzed 2 entries using keyword detection" {
		t.Fatalf("Insight=%q", report.Insight)
	}
	if store.lastLimit != ANALYZE_BATCH_LIMIT {
		t.Fatalf("limit=%d", store.lastLimit)
	}

	if store.entries[0].Emotion != sentiment.EmotionSad || store.entries[1].Emotion != sentiment.EmotionHappy {
		t.Fatalf("entries=%+v", store.entries)
	}
	if store.entries[2].IsAnalyzed() {
		t.Fatalf("other users' entries must not be touched")
	}
}

func TestAnalyzeUnscored_RetriesWrites(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(
		models.JournalEntry{UserID: "u1", EntryID: "flaky", Content: "calm"},
		models.JournalEntry{UserID: "u1", EntryID: "broken", Content: "calm"},
	)
	store.failWrites["flaky"] = WRITE_ATTEMPTS - 1
	store.failWrites["broken"] = WRITE_ATTEMPTS

	report, err := newTestAnalyzer(store, sentiment.NewLexiconScorer()).AnalyzeUnscored(context.Background(), "u1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if report.Analyzed != 1 || report.Failed != 1 {
		t.Fatalf("report=%+v", report)
	}
	if store.writes["flaky"] != WRITE_ATTEMPTS || store.writes["broken"] != WRITE_ATTEMPTS {
		t.Fatalf("writes=%v", store.writes)
	}
}

type failingScorer struct{}

func (failingScorer) Name() string { return "failing" }

func (failingScorer) Score(context.Context, string) (models.AnalysisResult, error) {
	return models.AnalysisResult{}, errors.New("unavailable")
}

func TestAnalyzeUnscored_ScorerErrorUsesLexicon(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(models.JournalEntry{UserID: "u1", EntryID: "e1", Content: "I am anxious"})

	report, err := newTestAnalyzer(store, failingScorer{}).AnalyzeUnscored(context.Background(), "u1")
	if err != nil || report.Analyzed != 1 {
		t.Fatalf("report=%+v err=%v", report, err)
	}
	if store.entries[0].Emotion != sentiment.EmotionAnxious || store.entries[0].AnalysisSource != sentiment.SourceLexicon {
		t.Fatalf("entry=%+v", store.entries[0])
	}
}

func TestReanalyzeAll(t *testing.T) {
	t.Parallel()

	stale := 0.9
	entries := make([]models.JournalEntry, 0, 30)
	for i := 0; i < 30; i++ {
		entries = append(entries, models.JournalEntry{
			UserID:    "u1",
			EntryID:   string(rune('a' + i)),
			Content:   "I am so stressed",
			Emotion:   "Calm",
			Sentiment: &stale,
		})
	}
	store := newMemoryStore(entries...)

	report, err := ReanalyzeAll(context.Background(), store)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if report.Total != 30 || report.Updated != 30 || report.Errors != 0 {
		t.Fatalf("report=%+v", report)
	}
	if store.putCalls != 2 {
		t.Fatalf("putCalls=%d", store.putCalls)
	}
	for _, e := range store.entries {
		if e.Emotion != sentiment.EmotionStressed || e.Sentiment == nil || *e.Sentiment >= 0.5 {
			t.Fatalf("entry=%+v", e)
		}
	}

	store.putErr = errors.New("throttled")
	report, _ = ReanalyzeAll(context.Background(), store)
	if report.Errors != 30 || report.Updated != 0 {
		t.Fatalf("report=%+v", report)
	}
}

func TestAnalyzePendingUsers(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(
		models.JournalEntry{UserID: "u1", EntryID: "e1", Content: "happy"},
		models.JournalEntry{UserID: "u2", EntryID: "e2", Content: "sad"},
	)

	if err := AnalyzePendingUsers(context.Background(), store, newTestAnalyzer(store, sentiment.NewLexiconScorer())); err != nil {
		t.Fatalf("err=%v", err)
	}
	for _, e := range store.entries {
		if !e.IsAnalyzed() {
			t.Fatalf("entry %s not analyzed", e.EntryID)
		}
	}
}

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	if _, err := NewScheduler(context.Background(), "not a spec", store, newTestAnalyzer(store, sentiment.NewLexiconScorer())); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewScheduler(context.Background(), "*/15 * * * *", store, newTestAnalyzer(store, sentiment.NewLexiconScorer())); err != nil {
		t.Fatalf("err=%v", err)
	}
}
