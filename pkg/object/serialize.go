package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are sorted by Name so identical
// directories always encode to identical bytes. Each entry is one line:
//
//	type hash name
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		if err := ValidateEntryName(e.Name); err != nil {
			return nil, fmt.Errorf("marshal tree: %w", err)
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("marshal tree: duplicate entry %q", e.Name)
		}
		if e.Type != TypeBlob && e.Type != TypeTree {
			return nil, fmt.Errorf("marshal tree: entry %q has type %q", e.Name, e.Type)
		}
		if !IsHash(string(e.Hash)) {
			return nil, fmt.Errorf("marshal tree: entry %q has invalid hash %q", e.Name, e.Hash)
		}
		fmt.Fprintf(&buf, "%s %s %s\n", e.Type, e.Hash, e.Name)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a TreeObj from its serialized form. Entries must be
// in canonical order.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	if len(data) == 0 {
		return tr, nil
	}
	if data[len(data)-1] != '\n' {
		return nil, fmt.Errorf("unmarshal tree: %w: missing trailing newline", ErrCorruptObject)
	}
	text := string(data[:len(data)-1])
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unmarshal tree: %w: malformed entry %q", ErrCorruptObject, line)
		}
		entryType := ObjectType(parts[0])
		if entryType != TypeBlob && entryType != TypeTree {
			return nil, fmt.Errorf("unmarshal tree: %w: entry type %q", ErrCorruptObject, parts[0])
		}
		if !IsHash(parts[1]) {
			return nil, fmt.Errorf("unmarshal tree: %w: entry hash %q", ErrCorruptObject, parts[1])
		}
		if err := ValidateEntryName(parts[2]); err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w: %v", ErrCorruptObject, err)
		}
		if n := len(tr.Entries); n > 0 && tr.Entries[n-1].Name >= parts[2] {
			return nil, fmt.Errorf("unmarshal tree: %w: entry %q out of order", ErrCorruptObject, parts[2])
		}
		tr.Entries = append(tr.Entries, TreeEntry{
			Type: entryType,
			Hash: Hash(parts[1]),
			Name: parts[2],
		})
	}
	return tr, nil
}

// ValidateEntryName rejects names that cannot be encoded in a tree line or
// that would escape the directory they are materialized into.
func ValidateEntryName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty entry name")
	case name == "." || name == "..":
		return fmt.Errorf("invalid entry name %q", name)
	case strings.ContainsAny(name, "/\x00\n"):
		return fmt.Errorf("invalid entry name %q", name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (optional)
//	signature S  (optional)
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	if c.Parent != "" {
		fmt.Fprintf(&buf, "parent %s\n", string(c.Parent))
	}
	if strings.TrimSpace(c.Signature) != "" {
		fmt.Fprintf(&buf, "signature %s\n", c.Signature)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: %w: missing header/message separator", ErrCorruptObject)
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	seen := make(map[string]bool, 3)
	order := map[string]int{"tree": 0, "parent": 1, "signature": 2}
	last := -1
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: %w: malformed header line %q", ErrCorruptObject, line)
		}
		pos, known := order[key]
		if !known {
			return nil, fmt.Errorf("unmarshal commit: %w: unknown header key %q", ErrCorruptObject, key)
		}
		if seen[key] || pos < last {
			return nil, fmt.Errorf("unmarshal commit: %w: unexpected %q header", ErrCorruptObject, key)
		}
		seen[key] = true
		last = pos

		switch key {
		case "tree":
			if !IsHash(val) {
				return nil, fmt.Errorf("unmarshal commit: %w: bad tree hash %q", ErrCorruptObject, val)
			}
			c.TreeHash = Hash(val)
		case "parent":
			if !IsHash(val) {
				return nil, fmt.Errorf("unmarshal commit: %w: bad parent hash %q", ErrCorruptObject, val)
			}
			c.Parent = Hash(val)
		case "signature":
			c.Signature = val
		}
	}
	if !seen["tree"] {
		return nil, fmt.Errorf("unmarshal commit: %w: missing tree header", ErrCorruptObject)
	}
	return c, nil
}

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit. The payload excludes the signature field itself.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}

// ---------------------------------------------------------------------------
// Object
// ---------------------------------------------------------------------------

// Marshal serializes any object variant into its type tag and payload.
func Marshal(obj Object) (ObjectType, []byte, error) {
	switch o := obj.(type) {
	case *Blob:
		return TypeBlob, MarshalBlob(o), nil
	case *TreeObj:
		data, err := MarshalTree(o)
		if err != nil {
			return "", nil, err
		}
		return TypeTree, data, nil
	case *CommitObj:
		return TypeCommit, MarshalCommit(o), nil
	default:
		return "", nil, fmt.Errorf("marshal: unsupported object %T", obj)
	}
}

// Unmarshal decodes a payload according to its type tag.
func Unmarshal(objType ObjectType, data []byte) (Object, error) {
	var (
		obj Object
		err error
	)
	switch objType {
	case TypeBlob:
		obj, err = UnmarshalBlob(data)
	case TypeTree:
		obj, err = UnmarshalTree(data)
	case TypeCommit:
		obj, err = UnmarshalCommit(data)
	default:
		return nil, fmt.Errorf("unmarshal: %w: unknown type %q", ErrCorruptObject, objType)
	}
	if err != nil {
		return nil, err
	}
	return obj, nil
}
