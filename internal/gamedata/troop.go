// Package gamedata holds the meta-state that survives between missions: the
// recruit roster, promotions, heroes, scores and the campaign position, plus
// the phase progression machine that moves a session through a campaign.
package gamedata

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	// RosterSize is the number of troop slots a squad carries.
	RosterSize = 9
	// MaxRank is the highest rank a recruit can reach.
	MaxRank = 15
	// NoRecruit marks an empty roster slot.
	NoRecruit int16 = -1
)

// SpriteRef is a non-owning reference to the sprite a troop is drawn with.
// The simulation owns the sprite; this package only stores and compares it.
type SpriteRef struct {
	id    int32
	bound bool
}

// Unset is the reference of a troop that has no sprite yet.
var Unset = SpriteRef{}

// BoundTo returns a reference to sprite id.
func BoundTo(id int32) SpriteRef {
	return SpriteRef{id: id, bound: true}
}

// ID returns the sprite id and whether the reference is bound.
func (r SpriteRef) ID() (int32, bool) {
	return r.id, r.bound
}

// IsBound reports whether the reference points at a sprite.
func (r SpriteRef) IsBound() bool {
	return r.bound
}

func (r SpriteRef) String() string {
	if !r.bound {
		return "unset"
	}
	return fmt.Sprintf("sprite#%d", r.id)
}

// MarshalJSON writes null for Unset and the sprite id otherwise.
func (r SpriteRef) MarshalJSON() ([]byte, error) {
	if !r.bound {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *SpriteRef) UnmarshalJSON(data []byte) error {
	var id *int32
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id == nil {
		*r = Unset
		return nil
	}
	*r = BoundTo(*id)
	return nil
}

// Troop is one roster slot.
type Troop struct {
	RecruitID  int16     `json:"recruitId"`
	Rank       uint8     `json:"rank"`
	PhaseCount uint8     `json:"phaseCount"` // phases completed this mission
	Kills      uint16    `json:"kills"`
	Selected   bool      `json:"selected"`
	Sprite     SpriteRef `json:"sprite"`
	// Field6 is read by older saves but has no effect on play.
	Field6 uint16 `json:"field6"`
}

// NewTroop returns an empty slot.
func NewTroop() Troop {
	t := Troop{}
	t.Clear()
	t.RecruitID = NoRecruit
	return t
}

// Empty reports whether the slot holds no recruit.
func (t *Troop) Empty() bool {
	return t.RecruitID == NoRecruit
}

// Clear resets everything but the recruit id.
func (t *Troop) Clear() {
	t.Rank = 0
	t.PhaseCount = 0
	t.Kills = 0
	t.Selected = false
	t.Sprite = Unset
	t.Field6 = 0
}

// PromotedRank is the rank the troop reaches when promoted now.
func (t *Troop) PromotedRank() uint8 {
	r := int(t.PhaseCount) + int(t.Rank)
	if r > MaxRank {
		return MaxRank
	}
	return uint8(r)
}

// Promote applies PromotedRank. Empty slots are left alone.
func (t *Troop) Promote() {
	if t.Empty() {
		return
	}
	t.Rank = t.PromotedRank()
}

// Label is the short name used in journals, e.g. "R12".
func (t *Troop) Label() string {
	if t.Empty() {
		return "--"
	}
	return fmt.Sprintf("R%d", t.RecruitID)
}

// Hero is the record of a recruit taken at the moment of death.
type Hero struct {
	RecruitID int16 `json:"recruitId"`
	Rank      int16 `json:"rank"`
	Kills     int16 `json:"kills"`
}

// NewHero snapshots t.
func NewHero(t Troop) Hero {
	return Hero{
		RecruitID: t.RecruitID,
		Rank:      int16(t.Rank),
		Kills:     int16(t.Kills),
	}
}

// Roster is the fixed set of troop slots. The slot index is storage only; a
// recruit is identified by its RecruitID.
type Roster [RosterSize]Troop

// NewRoster returns a roster with every slot empty.
func NewRoster() Roster {
	var r Roster
	r.Clear()
	return r
}

// Clear empties every slot.
func (r *Roster) Clear() {
	for i := range r {
		r[i] = NewTroop()
	}
}

// Deployable counts occupied slots.
func (r *Roster) Deployable() int {
	n := 0
	for i := range r {
		if !r[i].Empty() {
			n++
		}
	}
	return n
}

// Find returns the slot holding recruitID.
func (r *Roster) Find(recruitID int16) (int, bool) {
	if recruitID == NoRecruit {
		return -1, false
	}
	for i := range r {
		if r[i].RecruitID == recruitID {
			return i, true
		}
	}
	return -1, false
}

// Vacate empties slot.
func (r *Roster) Vacate(slot int) {
	r[slot] = NewTroop()
}

// FirstEmpty returns the lowest empty slot.
func (r *Roster) FirstEmpty() (int, bool) {
	for i := range r {
		if r[i].Empty() {
			return i, true
		}
	}
	return -1, false
}

// SortOrder returns slot indices in display order: occupied slots first by
// rank (highest first) then recruit id (lowest first), empty slots last. The
// roster itself is not reordered.
func (r *Roster) SortOrder() []int {
	order := make([]int, RosterSize)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := &r[order[a]], &r[order[b]]
		if ta.Empty() != tb.Empty() {
			return !ta.Empty()
		}
		if ta.Empty() {
			return false
		}
		if ta.Rank != tb.Rank {
			return ta.Rank > tb.Rank
		}
		return ta.RecruitID < tb.RecruitID
	})
	return order
}

// Sorted returns copies of the troops in display order.
func (r *Roster) Sorted() []Troop {
	out := make([]Troop, 0, RosterSize)
	for _, i := range r.SortOrder() {
		out = append(out, r[i])
	}
	return out
}
