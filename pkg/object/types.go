package object

import "fmt"

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// ParseObjectType maps a stored type tag to its ObjectType.
func ParseObjectType(tag string) (ObjectType, error) {
	switch ObjectType(tag) {
	case TypeBlob, TypeTree, TypeCommit:
		return ObjectType(tag), nil
	default:
		return "", fmt.Errorf("%w: unknown type tag %q", ErrCorruptObject, tag)
	}
}

// Object is the closed set of stored object variants: *Blob, *TreeObj and
// *CommitObj.
type Object interface {
	Type() ObjectType
	isObject()
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Type is TypeBlob for files and
// TypeTree for subdirectories.
type TreeEntry struct {
	Type ObjectType
	Hash Hash
	Name string
}

// IsDir reports whether the entry references a subtree.
func (e TreeEntry) IsDir() bool { return e.Type == TypeTree }

// TreeObj holds a sorted list of tree entries.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// CommitObj represents a snapshot pointing to a tree and at most one parent.
type CommitObj struct {
	TreeHash  Hash
	Parent    Hash // empty for a root commit
	Signature string
	Message   string
}

func (*Blob) Type() ObjectType      { return TypeBlob }
func (*TreeObj) Type() ObjectType   { return TypeTree }
func (*CommitObj) Type() ObjectType { return TypeCommit }

func (*Blob) isObject()      {}
func (*TreeObj) isObject()   {}
func (*CommitObj) isObject() {}
