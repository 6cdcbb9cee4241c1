// Package storage defines persistence contracts for save slots and demos.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested save or demo is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a demo name is already taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// Save is one named save slot. Data holds the session JSON; the other fields
// are copied out of it so slots can be listed without decoding.
type Save struct {
	Name          string
	Campaign      string
	MissionNumber int
	MissionPhase  int
	Version       string
	Data          []byte
	UpdatedAt     time.Time
}

// Demo is one recorded input log.
type Demo struct {
	Name      string
	Campaign  string
	Ticks     uint32
	Events    int
	Data      []byte
	CreatedAt time.Time
}

// SaveStore persists save slots. Saving under an existing name overwrites it.
type SaveStore interface {
	PutSave(ctx context.Context, save Save) error
	GetSave(ctx context.Context, name string) (Save, error)
	ListSaves(ctx context.Context) ([]Save, error)
}

// DemoStore persists demos. Demos are immutable once stored.
type DemoStore interface {
	PutDemo(ctx context.Context, demo Demo) error
	GetDemo(ctx context.Context, name string) (Demo, error)
	ListDemos(ctx context.Context) ([]Demo, error)
}
