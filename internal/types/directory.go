package types

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Directory maps normalised student IDs to records and remembers the order
// in which records were first inserted (or loaded). That order is the order
// of listings, search results, and the keys of the persisted snapshot.
//
// A Directory is not safe for concurrent use; the directory service guards
// it with a mutex.
type Directory struct {
	records *orderedmap.OrderedMap[string, Student]
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{records: orderedmap.New[string, Student]()}
}

// Len returns the number of records.
func (d *Directory) Len() int {
	return d.records.Len()
}

// Has reports whether id is present.
func (d *Directory) Has(id string) bool {
	_, ok := d.records.Get(id)
	return ok
}

// Get returns the record stored under id.
func (d *Directory) Get(id string) (Student, bool) {
	return d.records.Get(id)
}

// Put stores s under s.ID. Replacing an existing record keeps its position.
func (d *Directory) Put(s Student) {
	d.records.Set(s.ID, s)
}

// Delete removes the record stored under id and returns it.
func (d *Directory) Delete(id string) (Student, bool) {
	return d.records.Delete(id)
}

// Students returns every record in directory order. The result is never nil.
func (d *Directory) Students() []Student {
	out := make([]Student, 0, d.records.Len())
	for pair := d.records.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Clone returns a copy that shares no map state with d.
func (d *Directory) Clone() *Directory {
	c := NewDirectory()
	for pair := d.records.Oldest(); pair != nil; pair = pair.Next() {
		c.records.Set(pair.Key, pair.Value)
	}
	return c
}

// MarshalJSON encodes the directory as a JSON object keyed by student ID,
// keys in directory order.
func (d *Directory) MarshalJSON() ([]byte, error) {
	return d.records.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object keyed by student ID, keeping the key
// order of the document. d is only replaced when the whole document decodes.
func (d *Directory) UnmarshalJSON(data []byte) error {
	decoded := orderedmap.New[string, Student]()
	if err := decoded.UnmarshalJSON(data); err != nil {
		return err
	}

	records := orderedmap.New[string, Student]()
	for pair := decoded.Oldest(); pair != nil; pair = pair.Next() {
		s := pair.Value
		s.ID = pair.Key
		records.Set(pair.Key, s)
	}
	d.records = records
	return nil
}
