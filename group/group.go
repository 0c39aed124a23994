// Package group implements a named, ordered collection of parameters, the
// C3D file's unit of metadata organization below the Manager's dictionary.
package group

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/gocap3d/c3d/errs"
	"github.com/gocap3d/c3d/param"
)

// Group holds parameters in a case-folded, insertion-ordered collection.
// Every child Param's Name equals the key it was added under.
type Group struct {
	Name string
	Desc string

	order  []string
	params map[string]*param.Param
}

// New creates an empty group with the given (upper-cased) name.
func New(name, desc string) *Group {
	return &Group{
		Name:   strings.ToUpper(name),
		Desc:   desc,
		params: make(map[string]*param.Param),
	}
}

// Get returns the parameter with the given name (case-insensitive).
func (g *Group) Get(name string) (*param.Param, bool) {
	p, ok := g.params[strings.ToUpper(name)]

	return p, ok
}

// Params returns the group's parameters in insertion order.
func (g *Group) Params() []*param.Param {
	out := make([]*param.Param, len(g.order))
	for i, name := range g.order {
		out[i] = g.params[name]
	}

	return out
}

// ParamNames returns the group's parameter names in insertion order.
func (g *Group) ParamNames() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)

	return out
}

// Add inserts p, keyed by its (upper-cased) Name. Replaces an existing
// parameter under the same name.
func (g *Group) Add(p *param.Param) {
	key := strings.ToUpper(p.Name)
	p.Name = key
	if _, exists := g.params[key]; !exists {
		g.order = append(g.order, key)
	}
	g.params[key] = p
}

// AddParam is a convenience constructor: build a Param from its fields, add
// it to the group, and return it.
func (g *Group) AddParam(name, desc string, bytesPerElement int8, bytes []byte, dimensions ...uint8) *param.Param {
	p := param.New(name)
	p.Desc = desc
	p.BytesPerElement = bytesPerElement
	p.Bytes = bytes
	p.Dimensions = dimensions

	g.Add(p)

	return p
}

// RemoveParam deletes the named parameter, if present.
func (g *Group) RemoveParam(name string) {
	key := strings.ToUpper(name)
	if _, ok := g.params[key]; !ok {
		return
	}
	delete(g.params, key)
	for i, n := range g.order {
		if n == key {
			g.order = append(g.order[:i], g.order[i+1:]...)

			break
		}
	}
}

// RenameParam renames an existing parameter, failing if the new name
// already exists.
func (g *Group) RenameParam(oldName, newName string) error {
	oldKey := strings.ToUpper(oldName)
	newKey := strings.ToUpper(newName)

	p, ok := g.params[oldKey]
	if !ok {
		return errs.ErrParamNotFound
	}
	if oldKey == newKey {
		return nil
	}
	if _, exists := g.params[newKey]; exists {
		return errs.ErrDuplicateParamName
	}

	p.Name = newKey
	delete(g.params, oldKey)
	g.params[newKey] = p
	for i, n := range g.order {
		if n == oldKey {
			g.order[i] = newKey

			break
		}
	}

	return nil
}

// BinarySize returns the number of bytes Write emits for this group,
// including its on-wire header and every child parameter.
func (g *Group) BinarySize() int {
	size := 1 + 1 + len(g.Name) + 2 + 1 + len(g.Desc)
	for _, name := range g.order {
		size += g.params[name].BinarySize()
	}

	return size
}

// Write encodes the group header (name_len, -group_id, name, offset_to_next,
// desc_len, desc) followed by every child parameter, under the given
// (positive) group id.
func (g *Group) Write(groupID int8, w io.Writer) error {
	name := []byte(g.Name)
	header := 1 + 1 + len(name) + 2 + 1 + len(g.Desc)

	if _, err := w.Write([]byte{byte(int8(len(name))), byte(-groupID)}); err != nil {
		return err
	}
	if _, err := w.Write(name); err != nil {
		return err
	}

	offset := int16(header - 2 - len(name)) //nolint:gosec
	if err := binary.Write(w, binary.LittleEndian, offset); err != nil {
		return err
	}

	desc := []byte(g.Desc)
	if _, err := w.Write([]byte{byte(len(desc))}); err != nil {
		return err
	}
	if len(desc) > 0 {
		if _, err := w.Write(desc); err != nil {
			return err
		}
	}

	for _, name := range g.order {
		if err := g.params[name].Write(groupID, w); err != nil {
			return err
		}
	}

	return nil
}
