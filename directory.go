package tiff

import (
	"sort"
	"strconv"
)

// Directory is an Image File Directory: a map of Tag to Entry, plus the
// pointer to the next IFD in the chain (zero meaning "none"). Entries are
// stored keyed by tag number; iteration always yields them in ascending
// tag order, matching how they must appear on disk.
type Directory struct {
	entries map[Tag]Entry
	nextIfd uint64 // 0 means no next IFD
}

// NewDirectory returns an empty directory. An empty directory cannot be
// encoded to a file; it must gain at least one entry first.
func NewDirectory() *Directory {
	return &Directory{entries: make(map[Tag]Entry)}
}

// Get returns the entry for tag, or false if it is not present.
func (d *Directory) Get(tag Tag) (Entry, bool) {
	e, ok := d.entries[tag]
	return e, ok
}

// Contains reports whether tag is present in the directory.
func (d *Directory) Contains(tag Tag) bool {
	_, ok := d.entries[tag]
	return ok
}

// Set inserts or overwrites the entry for tag.
func (d *Directory) Set(tag Tag, entry Entry) {
	entry.Tag = tag
	d.entries[tag] = entry
}

// Extend inserts every (tag, entry) pair, overwriting any tag already
// present in the directory.
func (d *Directory) Extend(pairs map[Tag]Entry) {
	for tag, entry := range pairs {
		d.Set(tag, entry)
	}
}

// Len returns the number of entries.
func (d *Directory) Len() int { return len(d.entries) }

// IsEmpty reports whether the directory has no entries.
func (d *Directory) IsEmpty() bool { return len(d.entries) == 0 }

// Next returns the offset of the next IFD and whether one is present.
func (d *Directory) Next() (uint64, bool) {
	if d.nextIfd == 0 {
		return 0, false
	}
	return d.nextIfd, true
}

// SetNext records the offset of the next IFD; pass 0 to clear it.
func (d *Directory) SetNext(offset uint64) { d.nextIfd = offset }

// DirEntry pairs a tag with its entry, returned by ordered iteration.
type DirEntry struct {
	Tag   Tag
	Entry Entry
}

// Entries returns every (tag, entry) pair in ascending tag order.
func (d *Directory) Entries() []DirEntry {
	out := make([]DirEntry, 0, len(d.entries))
	for tag, entry := range d.entries {
		out = append(out, DirEntry{Tag: tag, Entry: entry})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

func (d *Directory) String() string {
	s := "Directory{\n"
	for _, e := range d.Entries() {
		s += "  " + e.Tag.String() + ": " + e.Entry.Type.String() + "[" + strconv.FormatUint(e.Entry.Count, 10) + "]\n"
	}
	if next, ok := d.Next(); ok {
		s += "  next: " + strconv.FormatUint(next, 10) + "\n"
	}
	return s + "}"
}
