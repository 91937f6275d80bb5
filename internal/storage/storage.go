// /internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const (
	commandHistoryLimit int = 20
	syncHistoryLimit    int = 50

	syncKey = "_slash_sync"
)

// Storage keeps one Record per guild plus the slash sync log. Every
// read-modify-write of a key runs under mu.
type Storage struct {
	ds     *datastore.DataStore
	cancel context.CancelFunc
	mu     sync.Mutex
}

// CommandHistoryRecord is one executed command. Source tells organic
// messages ("message") from slash interactions ("slash").
type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Source    string    `json:"source"`
	Datetime  time.Time `json:"datetime"`
}

type Tag struct {
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	Tags                map[string]Tag         `json:"tags"`
}

// New opens the store at filePath. Autosaving stops when ctx is cancelled
// or Close is called, whichever comes first.
func New(ctx context.Context, filePath string) (*Storage, error) {
	ctx, cancel := context.WithCancel(ctx)
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open datastore: %w", err)
	}
	return &Storage{ds: ds, cancel: cancel}, nil
}

// Close stops autosaving and writes the store to disk.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

// getOrCreateGuildRecord loads a guild's record. Callers hold mu.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	var record Record
	exists, err := s.ds.Get(guildID, &record)
	if err != nil {
		return nil, err
	}
	if !exists {
		newRecord := &Record{
			CommandsHistoryList: []CommandHistoryRecord{},
			Tags:                map[string]Tag{},
		}
		if err := s.ds.Set(guildID, newRecord); err != nil {
			return nil, fmt.Errorf("failed to create guild record: %w", err)
		}
		return newRecord, nil
	}

	if record.Tags == nil {
		record.Tags = map[string]Tag{}
	}
	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	return &record, nil
}

func (s *Storage) saveGuildRecord(guildID string, record *Record) error {
	if err := s.ds.Set(guildID, record); err != nil {
		return fmt.Errorf("failed to save guild record: %w", err)
	}
	return nil
}

// AppendCommandToHistory appends a command history record for a guild
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, command)
	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}
	return s.saveGuildRecord(guildID, record)
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	return record.CommandsHistoryList, nil
}
