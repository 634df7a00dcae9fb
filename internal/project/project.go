// Package project provides project file handling and persistence.
//
// Persisted fields are exactly the canonical state: lines, gates and the
// display scale. Derived state (posts, panels, spans, warnings) is excluded
// and fully recomputed after any snapshot load.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"fence-planner/internal/fence"
	"fence-planner/internal/geo"
	"fence-planner/internal/store"
)

// File represents a fence planner project file (.fenceproj).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name,omitempty"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Origin anchors the planar working frame.
	Origin geo.Point `json:"origin"`

	Scale float64      `json:"scale"`
	Lines []fence.Line `json:"lines"`
	Gates []fence.Gate `json:"gates,omitempty"`
}

// currentVersion is written by Save; Load accepts this version only.
const currentVersion = 1

// New creates an empty project anchored at the given origin.
func New(name string, origin geo.Point) *File {
	now := time.Now()
	return &File{
		Version:  currentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
		Origin:   origin,
		Scale:    1,
	}
}

// Load loads a project from a .fenceproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	if proj.Version != currentVersion {
		return nil, fmt.Errorf("unsupported project version %d", proj.Version)
	}
	if proj.Scale <= 0 {
		proj.Scale = 1
	}
	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Version = currentVersion
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Hydrate pushes the project's canonical state into a store.
func (p *File) Hydrate(s *store.Store) {
	s.Hydrate(p.Lines, p.Gates, p.Scale)
}

// Capture copies a store's canonical state into the project.
func (p *File) Capture(s *store.Store) {
	p.Lines = s.Lines()
	p.Gates = s.Gates()
	p.Scale = s.Scale()
}
