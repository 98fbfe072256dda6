// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/autobrr/shareconnect/internal/domain"
)

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// ProfileStore keeps the configured profiles in memory and, when a path is
// set, mirrors every mutation to a YAML file.
type ProfileStore struct {
	mu       sync.RWMutex
	path     string
	profiles []Profile
}

// NewProfileStore returns an empty store. An empty path keeps it in memory only.
func NewProfileStore(path string) *ProfileStore {
	return &ProfileStore{path: path}
}

// LoadProfileStore reads path if it exists. A missing file yields an empty store.
func LoadProfileStore(path string) (*ProfileStore, error) {
	s := NewProfileStore(path)
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file, or "" for an in-memory store.
func (s *ProfileStore) Path() string {
	return s.path
}

// Reload replaces the in-memory profiles with the file contents.
func (s *ProfileStore) Reload() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.mu.Lock()
		s.profiles = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read profiles: %w", err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse profiles %s: %w", s.path, err)
	}

	assigned, err := validateProfiles(file.Profiles)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Hand-written entries without an id get one on first load.
	if assigned {
		return s.commitLocked(file.Profiles)
	}
	s.profiles = file.Profiles
	return nil
}

func validateProfiles(profiles []Profile) (assigned bool, err error) {
	seen := make(map[uuid.UUID]struct{}, len(profiles))
	defaults := 0

	for i := range profiles {
		p := &profiles[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
			assigned = true
		}
		if err := p.Validate(); err != nil {
			return false, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		if _, ok := seen[p.ID]; ok {
			return false, fmt.Errorf("%w: %s", ErrDuplicateProfileID, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.IsDefault {
			defaults++
		}
	}

	if defaults > 1 {
		return false, ErrMultipleDefaults
	}
	return assigned, nil
}

// List returns a copy of all profiles in insertion order.
func (s *ProfileStore) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

func (s *ProfileStore) Get(id uuid.UUID) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.profiles[i], nil
	}
	return Profile{}, ErrProfileNotFound
}

// Lookup resolves a profile by ID or, failing that, by case-insensitive name.
func (s *ProfileStore) Lookup(ref string) (Profile, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return s.Get(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return Profile{}, ErrProfileNotFound
}

// Default returns the profile flagged as default, if any.
func (s *ProfileStore) Default() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.IsDefault {
			return p, true
		}
	}
	return Profile{}, false
}

// Add validates p, assigns an ID when missing and appends it.
func (s *ProfileStore) Add(p Profile) (Profile, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(p.ID) >= 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrDuplicateProfileID, p.ID)
	}

	next := append(s.cloneLocked(), p)
	if p.IsDefault {
		clearDefaults(next, p.ID)
	}
	if err := s.commitLocked(next); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Update replaces the profile with the same ID. A password echoed back in its
// redacted form keeps the stored one.
func (s *ProfileStore) Update(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(p.ID)
	if i < 0 {
		return ErrProfileNotFound
	}
	if domain.IsRedactedValue(p.Password) {
		p.Password = s.profiles[i].Password
	}

	next := s.cloneLocked()
	next[i] = p
	if p.IsDefault {
		clearDefaults(next, p.ID)
	}
	return s.commitLocked(next)
}

func (s *ProfileStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrProfileNotFound
	}

	next := s.cloneLocked()
	next = append(next[:i], next[i+1:]...)
	return s.commitLocked(next)
}

// SetDefault marks id as the default and clears the flag on every other
// profile in one step.
func (s *ProfileStore) SetDefault(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrProfileNotFound
	}

	next := s.cloneLocked()
	next[i].IsDefault = true
	clearDefaults(next, id)
	return s.commitLocked(next)
}

// EncodeYAML renders the stored profiles in the on-disk format.
func (s *ProfileStore) EncodeYAML() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return encodeProfiles(s.profiles)
}

func (s *ProfileStore) indexOf(id uuid.UUID) int {
	for i, p := range s.profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *ProfileStore) cloneLocked() []Profile {
	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// commitLocked persists next before swapping it in so a failed write leaves
// the store unchanged.
func (s *ProfileStore) commitLocked(next []Profile) error {
	if s.path != "" {
		if err := writeProfiles(s.path, next); err != nil {
			return err
		}
	}
	s.profiles = next
	return nil
}

func clearDefaults(profiles []Profile, keep uuid.UUID) {
	for i := range profiles {
		if profiles[i].ID != keep {
			profiles[i].IsDefault = false
		}
	}
}

func encodeProfiles(profiles []Profile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(profileFile{Profiles: profiles}); err != nil {
		return nil, fmt.Errorf("failed to encode profiles: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeProfiles(path string, profiles []Profile) error {
	data, err := encodeProfiles(profiles)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".profiles-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp profiles file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
