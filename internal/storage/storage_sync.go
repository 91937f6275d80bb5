package storage

import (
	"fmt"
	"time"
)

// SyncRecord describes one slash command publish.
type SyncRecord struct {
	Endpoint string    `json:"endpoint"`
	Count    int       `json:"count"`
	Hash     string    `json:"hash"`
	At       time.Time `json:"at"`
}

// syncHistory loads the sync log. Callers hold mu.
func (s *Storage) syncHistory() ([]SyncRecord, error) {
	records := []SyncRecord{}
	if _, err := s.ds.Get(syncKey, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// RecordSync stores a publish, keeping the most recent ones.
func (s *Storage) RecordSync(endpoint string, count int, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.syncHistory()
	if err != nil {
		return err
	}

	records = append(records, SyncRecord{Endpoint: endpoint, Count: count, Hash: hash, At: time.Now()})
	if len(records) > syncHistoryLimit {
		records = records[len(records)-syncHistoryLimit:]
	}
	if err := s.ds.Set(syncKey, records); err != nil {
		return fmt.Errorf("failed to save sync record: %w", err)
	}
	return nil
}

// SyncHistory returns stored publishes, oldest first.
func (s *Storage) SyncHistory() ([]SyncRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncHistory()
}

// LastSync returns the latest publish to endpoint, or nil.
func (s *Storage) LastSync(endpoint string) (*SyncRecord, error) {
	records, err := s.SyncHistory()
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Endpoint == endpoint {
			r := records[i]
			return &r, nil
		}
	}
	return nil, nil
}
