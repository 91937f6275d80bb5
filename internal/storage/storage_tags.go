package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrTagNotFound is returned by GetTag for unknown names.
var ErrTagNotFound = errors.New("tag not found")

func (s *Storage) SetTag(guildID string, tag Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	tag.Name = strings.ToLower(tag.Name)
	if tag.UpdatedAt.IsZero() {
		tag.UpdatedAt = time.Now()
	}
	record.Tags[tag.Name] = tag
	return s.saveGuildRecord(guildID, record)
}

func (s *Storage) GetTag(guildID, name string) (*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	tag, exists := record.Tags[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("%q: %w", name, ErrTagNotFound)
	}
	return &tag, nil
}

// DeleteTag reports whether the tag existed.
func (s *Storage) DeleteTag(guildID, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return false, err
	}

	name = strings.ToLower(name)
	if _, exists := record.Tags[name]; !exists {
		return false, nil
	}
	delete(record.Tags, name)
	if err := s.saveGuildRecord(guildID, record); err != nil {
		return false, err
	}
	return true, nil
}

// ListTags returns tag names sorted alphabetically.
func (s *Storage) ListTags(guildID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(record.Tags))
	for name := range record.Tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
