// Package seed loads an initial roster into a store.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

// File is the seed file layout.
type File struct {
	Members       []*models.Member       `json:"members"`
	Announcements []*models.Announcement `json:"announcements"`
}

// Result counts what Load created.
type Result struct {
	Members       int
	Announcements int
}

// LoadFile seeds store from the JSON file at path.
func LoadFile(ctx context.Context, store storage.Store, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Load(ctx, store, f)
}

// Load seeds store from r. Members that already exist are skipped, so a
// seed can be applied on every start. Announcements are only added to a
// store that has none.
func Load(ctx context.Context, store storage.Store, r io.Reader) (Result, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return Result{}, fmt.Errorf("failed to decode seed file: %w", err)
	}

	var res Result
	for _, m := range file.Members {
		if m.ID == "" {
			return res, fmt.Errorf("%w: seed member %q has no id", models.ErrValidation, m.Name)
		}
		for _, d := range m.PayoutDates {
			if err := models.CheckTime("payout date of seed member "+m.ID, d); err != nil {
				return res, err
			}
		}
		if m.Role == "" {
			m.Role = models.RoleMember
		}
		m.Version = 0

		err := store.CreateMember(ctx, m)
		if errors.Is(err, models.ErrConflict) {
			slog.Debug("Seed member exists", "member_id", m.ID)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("failed to seed member %s: %w", m.ID, err)
		}
		res.Members++
	}

	if len(file.Announcements) == 0 {
		return res, nil
	}
	existing, err := store.ListAnnouncements(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list announcements: %w", err)
	}
	if len(existing) > 0 {
		return res, nil
	}
	for _, a := range file.Announcements {
		if err := store.CreateAnnouncement(ctx, a); err != nil {
			return res, fmt.Errorf("failed to seed announcement %s: %w", a.ID, err)
		}
		res.Announcements++
	}

	return res, nil
}
