package game

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Garsondee/soldier-campaign/internal/gamedata"
	"github.com/Garsondee/soldier-campaign/internal/storage"
)

const (
	autosaveName  = "autosave"
	quicksaveName = "quicksave"
)

// saveRecord snapshots sess into a save slot. The snapshot is a copy and may
// be handed to another goroutine.
func saveRecord(sess *gamedata.Session, name string, now time.Time) (storage.Save, error) {
	data, err := sess.ToJSON(name)
	if err != nil {
		return storage.Save{}, err
	}
	return storage.Save{
		Name:          name,
		Campaign:      sess.CampaignName,
		MissionNumber: sess.MissionNumber,
		MissionPhase:  sess.MissionPhase,
		Version:       gamedata.CurrentRelease.String(),
		Data:          data,
		UpdatedAt:     now,
	}, nil
}

// demoRecord packages the session's event log for the demo store. The name
// is the demo file's base name stamped with the time so reruns do not
// collide.
func demoRecord(sess *gamedata.Session, file string, now time.Time) (storage.Demo, error) {
	data, err := sess.Recorded.ToJSON()
	if err != nil {
		return storage.Demo{}, err
	}
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return storage.Demo{
		Name:      fmt.Sprintf("%s@%s", base, now.UTC().Format("20060102T150405Z")),
		Campaign:  sess.CampaignName,
		Ticks:     sess.Recorded.Length(),
		Events:    sess.Recorded.Len(),
		Data:      data,
		CreatedAt: now,
	}, nil
}
