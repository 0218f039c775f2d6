package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// Most recent error strings kept for the status surface.
	maxRecentErrors = 5
	// Ceiling on each cache; oldest-inserted entries go first.
	maxCacheEntries = 1000

	backupDateLayout = "2006-01-02"
)

// State holds the process-wide pipeline state: translation and report
// caches plus cycle statistics. Caches are optimizations, never a
// correctness dependency. Mutations come from the single active cycle
// and from HTTP readers, hence the RWMutex.
type State struct {
	path       string
	backupDir  string
	backupDays int

	mu               sync.RWMutex
	translations     map[string]string
	translationOrder []string
	reports          map[string]string
	reportOrder      []string
	stats            Stats
	lastBackupDate   string
}

// Load reads the snapshot at path. An absent or corrupt snapshot is
// logged and yields empty state, never an error: in-memory state is
// authoritative from then on.
func Load(path, backupDir string, backupDays int) *State {
	s := &State{
		path:         path,
		backupDir:    backupDir,
		backupDays:   backupDays,
		translations: make(map[string]string),
		reports:      make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read state snapshot, starting empty", "path", path, "error", err)
		}
		return s
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("Corrupt state snapshot, starting empty", "path", path, "error", err)
		return s
	}

	if snap.Translations != nil {
		s.translations = snap.Translations
	}
	s.translationOrder = rebuildOrder(snap.TranslationOrder, s.translations)
	if snap.Reports != nil {
		s.reports = snap.Reports
	}
	s.reportOrder = rebuildOrder(snap.ReportOrder, s.reports)
	s.stats = snap.Stats

	slog.Debug("State snapshot loaded",
		"translations", len(s.translations),
		"reports", len(s.reports),
		"total_published", s.stats.TotalPublished)

	return s
}

// rebuildOrder keeps only order entries that still have a cache value,
// then appends any keys the order list missed.
func rebuildOrder(order []string, cache map[string]string) []string {
	seen := make(map[string]bool, len(order))
	rebuilt := make([]string, 0, len(cache))
	for _, key := range order {
		if _, ok := cache[key]; ok && !seen[key] {
			rebuilt = append(rebuilt, key)
			seen[key] = true
		}
	}
	for key := range cache {
		if !seen[key] {
			rebuilt = append(rebuilt, key)
		}
	}
	return rebuilt
}

// Translation looks up a cached translation by key.
func (s *State) Translation(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.translations[key]
	return value, ok
}

// SetTranslation caches a translation. A re-set of an existing key
// updates the value without refreshing its eviction position.
func (s *State) SetTranslation(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translations, s.translationOrder = insertBounded(s.translations, s.translationOrder, key, value)
}

// Report looks up a cached enrichment report by topic hash.
func (s *State) Report(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.reports[key]
	return value, ok
}

// SetReport caches an enrichment report.
func (s *State) SetReport(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports, s.reportOrder = insertBounded(s.reports, s.reportOrder, key, value)
}

func insertBounded(cache map[string]string, order []string, key, value string) (map[string]string, []string) {
	if _, exists := cache[key]; !exists {
		order = append(order, key)
	}
	cache[key] = value

	for len(order) > maxCacheEntries {
		oldest := order[0]
		order = order[1:]
		delete(cache, oldest)
	}

	return cache, order
}

// CycleStarted resets the per-cycle counter and records the cycle
// timestamp.
func (s *State) CycleStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.stats.LastRunAt = &now
	s.stats.LastPublished = 0
}

// PublishSucceeded bumps the per-cycle and cumulative counters.
func (s *State) PublishSucceeded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.LastPublished++
	s.stats.TotalPublished++
}

// RecordError appends to the bounded rolling error list.
func (s *State) RecordError(message string) {
	if strings.TrimSpace(message) == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.RecentErrors = append(s.stats.RecentErrors, message)
	if len(s.stats.RecentErrors) > maxRecentErrors {
		s.stats.RecentErrors = s.stats.RecentErrors[len(s.stats.RecentErrors)-maxRecentErrors:]
	}
}

// Stats returns a copy of the current statistics.
func (s *State) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statsCopy := s.stats
	statsCopy.RecentErrors = append([]string(nil), s.stats.RecentErrors...)
	return statsCopy
}

// CacheSizes returns the translation and report cache entry counts.
func (s *State) CacheSizes() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.translations), len(s.reports)
}

// Save writes the snapshot atomically (temp file + rename) and, at
// most once per day, places a dated copy into the backup directory,
// pruning copies past the retention window.
func (s *State) Save() error {
	s.mu.Lock()
	snap := snapshot{
		Translations:     s.translations,
		TranslationOrder: s.translationOrder,
		Reports:          s.reports,
		ReportOrder:      s.reportOrder,
		Stats:            s.stats,
		SavedAt:          time.Now().UTC(),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	today := snap.SavedAt.Format(backupDateLayout)
	needBackup := s.backupDir != "" && s.lastBackupDate != today
	s.mu.Unlock()

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write state snapshot: %w", err)
	}

	if needBackup {
		if err := s.writeBackup(today, data); err != nil {
			// Not latched; the next save retries the dated copy.
			slog.Warn("Failed to write dated state backup", "error", err)
		} else {
			s.mu.Lock()
			s.lastBackupDate = today
			s.mu.Unlock()
		}
		s.pruneBackups()
	}

	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func (s *State) writeBackup(date string, data []byte) error {
	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return err
	}

	backupPath := filepath.Join(s.backupDir, fmt.Sprintf("state-%s.json", date))
	return writeAtomic(backupPath, data)
}

// pruneBackups deletes dated copies older than the retention window.
func (s *State) pruneBackups() {
	if s.backupDays <= 0 {
		return
	}

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.backupDays)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "state-") || !strings.HasSuffix(name, ".json") {
			continue
		}

		date, err := time.Parse(backupDateLayout, strings.TrimSuffix(strings.TrimPrefix(name, "state-"), ".json"))
		if err != nil {
			continue
		}

		if date.Before(cutoff) {
			if err := os.Remove(filepath.Join(s.backupDir, name)); err != nil {
				slog.Warn("Failed to prune state backup", "file", name, "error", err)
			} else {
				slog.Debug("Pruned state backup", "file", name)
			}
		}
	}
}
