package main

import (
	"fmt"

	"github.com/odvcencio/gitox/pkg/object"
	"github.com/odvcencio/gitox/pkg/repo"
)

// resolveTreeish resolves arg to a tree hash, peeling a commit to its tree.
func resolveTreeish(r *repo.Repo, arg string) (object.Hash, error) {
	h, err := r.ResolveOID(arg)
	if err != nil {
		return "", err
	}
	objType, _, err := r.Store.Read(h)
	if err != nil {
		return "", err
	}
	switch objType {
	case object.TypeTree:
		return h, nil
	case object.TypeCommit:
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return "", err
		}
		return c.TreeHash, nil
	default:
		return "", &object.TypeMismatchError{Hash: h, Got: objType, Want: object.TypeTree}
	}
}

func shortHash(h object.Hash) string {
	s := string(h)
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}

func requireHead(r *repo.Repo) (object.Hash, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	if head == "" {
		return "", fmt.Errorf("HEAD is not set: %w", repo.ErrUnknownReference)
	}
	return head, nil
}
