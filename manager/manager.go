// Package manager implements the C3D metadata dictionary: a Header plus a
// collection of Groups indexed by both their signed numeric id and their
// upper-cased name, and the derived properties (point rate, frame range,
// analog layout, ...) that fall back from the parameter dictionary to the
// Header when a parameter is absent.
package manager

import (
	"fmt"
	"strings"

	"github.com/gocap3d/c3d/dtype"
	"github.com/gocap3d/c3d/errs"
	"github.com/gocap3d/c3d/group"
	"github.com/gocap3d/c3d/internal/fingerprint"
	"github.com/gocap3d/c3d/param"
	"github.com/gocap3d/c3d/section"
	"github.com/gocap3d/c3d/warn"
)

// Manager owns a Header and a dual-keyed group dictionary. Every Group
// added through AddGroup is reachable both by its numeric id and by its
// name; removing it clears both keys.
type Manager struct {
	Header *section.Header
	Dtypes dtype.Dtypes

	byID   map[int]*group.Group
	byName map[string]*group.Group
	order  []int
}

// New creates a Manager around h (a non-nil Header) and dt.
func New(h *section.Header, dt dtype.Dtypes) *Manager {
	return &Manager{
		Header: h,
		Dtypes: dt,
		byID:   make(map[int]*group.Group),
		byName: make(map[string]*group.Group),
	}
}

// GroupByID returns the group with the given numeric id.
func (m *Manager) GroupByID(id int) (*group.Group, bool) {
	g, ok := m.byID[id]

	return g, ok
}

// GroupByName returns the group with the given name, case-insensitive.
func (m *Manager) GroupByName(name string) (*group.Group, bool) {
	g, ok := m.byName[strings.ToUpper(name)]

	return g, ok
}

// Groups returns every group, in ascending id order.
func (m *Manager) Groups() []*group.Group {
	ids := append([]int(nil), m.order...)
	sortInts(ids)

	out := make([]*group.Group, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.byID[id])
	}

	return out
}

// GroupIDs returns every group id, in ascending order.
func (m *Manager) GroupIDs() []int {
	ids := append([]int(nil), m.order...)
	sortInts(ids)

	return ids
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// AddGroup creates a new group under the given numeric id and name. If id
// already exists, it fails with ErrDuplicateGroupID. If name already exists:
// when renameDuplicatedGroups is true, the new group is renamed to
// "NAME{id}" and a warning is emitted (the original group keeps its name);
// otherwise it fails with ErrDuplicateGroupName.
func (m *Manager) AddGroup(id int, name, desc string, renameDuplicatedGroups bool) (*group.Group, error) {
	if _, exists := m.byID[id]; exists {
		return nil, fmt.Errorf("%w: %d", errs.ErrDuplicateGroupID, id)
	}

	upper := strings.ToUpper(name)
	if _, exists := m.byName[upper]; exists {
		if !renameDuplicatedGroups {
			return nil, fmt.Errorf("%w: %s", errs.ErrDuplicateGroupName, upper)
		}

		renamed := fmt.Sprintf("%s%d", upper, id)
		warn.Sink("c3d: repeated group name %s renamed to %s", upper, renamed)
		upper = renamed
	}

	g := group.New(upper, desc)
	m.byID[id] = g
	m.byName[upper] = g
	m.order = append(m.order, id)

	return g, nil
}

// EnsureGroupPlaceholder returns the group already keyed by id, or creates
// an unnamed one. Used by the parameter walk when a parameter record is
// read before its group's own header record; the placeholder is keyed only
// by id until the group record arrives and supplies its name via
// RenameGroupName (or AddGroup, if no placeholder existed).
func (m *Manager) EnsureGroupPlaceholder(id int) *group.Group {
	if g, ok := m.byID[id]; ok {
		return g
	}

	g := group.New(fmt.Sprintf("GROUP_%d", id), "")
	m.byID[id] = g
	m.order = append(m.order, id)

	return g
}

// RemoveGroup removes the group with the given id from both keys.
func (m *Manager) RemoveGroup(id int) {
	g, ok := m.byID[id]
	if !ok {
		return
	}

	delete(m.byID, id)
	delete(m.byName, g.Name)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)

			break
		}
	}
}

// RenameGroupName renames the group with the given id to newName, failing
// if newName is already in use by a different group.
func (m *Manager) RenameGroupName(id int, newName string) error {
	g, ok := m.byID[id]
	if !ok {
		return errs.ErrGroupNotFound
	}

	upper := strings.ToUpper(newName)
	if upper == g.Name {
		return nil
	}
	if _, exists := m.byName[upper]; exists {
		return errs.ErrDuplicateGroupName
	}

	delete(m.byName, g.Name)
	g.Name = upper
	m.byName[upper] = g

	return nil
}

// RenameGroupID reassigns the group currently keyed by oldID to newID,
// failing if newID is already in use.
func (m *Manager) RenameGroupID(oldID, newID int) error {
	if oldID == newID {
		return nil
	}

	g, ok := m.byID[oldID]
	if !ok {
		return errs.ErrGroupNotFound
	}
	if _, exists := m.byID[newID]; exists {
		return errs.ErrDuplicateGroupID
	}

	delete(m.byID, oldID)
	m.byID[newID] = g
	for i, oid := range m.order {
		if oid == oldID {
			m.order[i] = newID

			break
		}
	}

	return nil
}

// splitPath splits a "GROUP.PARAM" or "GROUP:PARAM" path on whichever of
// '.' or ':' appears first, case-folding both halves.
func splitPath(path string) (groupName, paramName string, hasParam bool) {
	upper := strings.ToUpper(path)
	if i := strings.IndexAny(upper, ".:"); i >= 0 {
		return upper[:i], upper[i+1:], true
	}

	return upper, "", false
}

// Param resolves a "GROUP.PARAM" or "GROUP:PARAM" path, case-insensitively.
// It returns false if either segment is missing.
func (m *Manager) Param(path string) (*param.Param, bool) {
	groupName, paramName, hasParam := splitPath(path)
	if !hasParam {
		return nil, false
	}

	g, ok := m.byName[groupName]
	if !ok {
		return nil, false
	}

	return g.Get(paramName)
}

// PointRate is POINT:RATE, falling back to the header's frame rate.
func (m *Manager) PointRate() float32 {
	if p, ok := m.Param("POINT.RATE"); ok {
		return p.Float32Value(m.Dtypes)
	}

	return m.Header.FrameRate
}

// PointScale is POINT:SCALE, falling back to the header's scale factor.
// Negative means the point data is stored as float, not scaled int16.
func (m *Manager) PointScale() float32 {
	if p, ok := m.Param("POINT.SCALE"); ok {
		return p.Float32Value(m.Dtypes)
	}

	return m.Header.ScaleFactor
}

// PointUsed is POINT:USED, falling back to the header's point count.
func (m *Manager) PointUsed() uint32 {
	if p, ok := m.Param("POINT.USED"); ok {
		return p.AsIntegerValue(m.Dtypes)
	}

	return uint32(m.Header.PointCount)
}

// AnalogUsed is ANALOG:USED, falling back to the header's analog count.
func (m *Manager) AnalogUsed() uint32 {
	if p, ok := m.Param("ANALOG.USED"); ok {
		return p.AsIntegerValue(m.Dtypes)
	}

	return uint32(m.Header.AnalogCount)
}

// AnalogRate is ANALOG:RATE, falling back to header.analog_per_frame *
// PointRate.
func (m *Manager) AnalogRate() float32 {
	if p, ok := m.Param("ANALOG.RATE"); ok {
		return p.Float32Value(m.Dtypes)
	}

	return float32(m.Header.AnalogPerFrame) * m.PointRate()
}

// AnalogPerFrame is AnalogRate / PointRate, rounded down.
func (m *Manager) AnalogPerFrame() int {
	rate := m.PointRate()
	if rate == 0 {
		return 0
	}

	return int(m.AnalogRate() / rate)
}

// FirstFrame is TRIAL:ACTUAL_START_FIELD (via AsIntegerValue), falling back
// to the header's first frame.
func (m *Manager) FirstFrame() uint32 {
	if p, ok := m.Param("TRIAL.ACTUAL_START_FIELD"); ok {
		return p.AsIntegerValue(m.Dtypes)
	}

	return uint32(m.Header.FirstFrame)
}

// LastFrame returns the header's last frame when it forms a valid,
// non-default range (first < last and last != 65535); otherwise it is the
// maximum of header.LastFrame, TRIAL:ACTUAL_END_FIELD, POINT:LONG_FRAMES,
// and POINT:FRAMES, with missing candidates treated as 0.
func (m *Manager) LastFrame() uint32 {
	h := m.Header
	if h.FirstFrame < h.LastFrame && h.LastFrame != 65535 {
		return uint32(h.LastFrame)
	}

	best := uint32(h.LastFrame)
	if p, ok := m.Param("TRIAL.ACTUAL_END_FIELD"); ok {
		if v := p.AsIntegerValue(m.Dtypes); v > best {
			best = v
		}
	}
	if p, ok := m.Param("POINT.LONG_FRAMES"); ok {
		if v := p.AsIntegerValue(m.Dtypes); v > best {
			best = v
		}
	}
	if p, ok := m.Param("POINT.FRAMES"); ok {
		if v := p.AsIntegerValue(m.Dtypes); v > best {
			best = v
		}
	}

	return best
}

// FrameCount is LastFrame - FirstFrame + 1.
func (m *Manager) FrameCount() uint32 {
	return m.LastFrame() - m.FirstFrame() + 1
}

// CheckMetadata cross-checks the header against the parameter dictionary.
// It returns an error for the four strict mismatches (point count, scale
// factor, frame rate, analog_per_frame/analog_count consistency) and emits
// non-fatal warnings through warn.Sink for a missing or mismatched
// POINT:DATA_START and for missing label/description parameters.
func (m *Manager) CheckMetadata() error {
	if m.PointUsed() != uint32(m.Header.PointCount) {
		return fmt.Errorf("%w: point count %d != header %d", errs.ErrInconsistentMetadata, m.PointUsed(), m.Header.PointCount)
	}
	if m.PointScale() != m.Header.ScaleFactor {
		return fmt.Errorf("%w: point scale %v != header %v", errs.ErrInconsistentMetadata, m.PointScale(), m.Header.ScaleFactor)
	}
	if m.PointRate() != m.Header.FrameRate {
		return fmt.Errorf("%w: frame rate %v != header %v", errs.ErrInconsistentMetadata, m.PointRate(), m.Header.FrameRate)
	}

	expectedPerFrame := 0
	if m.PointRate() != 0 {
		expectedPerFrame = int(m.AnalogRate() / m.PointRate())
	}
	if int(m.Header.AnalogPerFrame) != expectedPerFrame && m.Header.AnalogPerFrame != 0 {
		return fmt.Errorf("%w: analog_per_frame %d != %d", errs.ErrInconsistentMetadata, m.Header.AnalogPerFrame, expectedPerFrame)
	}
	if uint32(m.Header.AnalogCount) != m.AnalogUsed()*uint32(m.Header.AnalogPerFrame) {
		return fmt.Errorf("%w: analog_count %d != analog_used * analog_per_frame", errs.ErrInconsistentMetadata, m.Header.AnalogCount)
	}

	if p, ok := m.Param("POINT.DATA_START"); ok {
		if v := p.AsIntegerValue(m.Dtypes); v != uint32(m.Header.DataBlock) {
			warn.Sink("c3d: POINT:DATA_START %d does not match header data_block %d", v, m.Header.DataBlock)
		}
	} else {
		warn.Sink("c3d: missing expected parameter POINT:DATA_START")
	}

	for _, path := range []string{"POINT.LABELS", "POINT.DESCRIPTIONS", "ANALOG.LABELS", "ANALOG.DESCRIPTIONS"} {
		if _, ok := m.Param(path); !ok {
			warn.Sink("c3d: missing expected parameter %s", path)
		}
	}

	return nil
}

// Fingerprint returns an xxHash64 digest over the encoded header and
// parameter dictionary, so a caller can cheaply detect whether a file's
// metadata changed between two reads (e.g. incremental-ingest dedup)
// without diffing the dictionary field by field.
func (m *Manager) Fingerprint() uint64 {
	return fingerprint.Header(m.Header.Bytes(), m.Groups(), m.GroupIDs())
}
