package repo

import (
	"fmt"

	"github.com/odvcencio/gitox/pkg/object"
	"github.com/sirupsen/logrus"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// Commit snapshots the working directory and records it on top of HEAD.
//
//  1. WriteTree over the working directory root
//  2. Read HEAD to get the parent commit hash (if any)
//  3. Write the commit object
//  4. Move HEAD to the new commit
func (r *Repo) Commit(message string) (object.Hash, error) {
	return r.CommitWithSigner(message, nil)
}

// CommitWithSigner creates a new commit and signs it when signer is provided.
func (r *Repo) CommitWithSigner(message string, signer CommitSigner) (object.Hash, error) {
	treeHash, err := r.WriteTree(r.RootDir)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parent, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if parent != "" {
		if _, err := r.Store.ReadCommit(parent); err != nil {
			return "", fmt.Errorf("commit: parent: %w", err)
		}
	}

	commitObj := &object.CommitObj{
		TreeHash: treeHash,
		Parent:   parent,
		Message:  message,
	}
	if signer != nil {
		signature, err := signer(object.CommitSigningPayload(commitObj))
		if err != nil {
			return "", fmt.Errorf("commit: sign commit: %w", err)
		}
		commitObj.Signature = signature
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	// HEAD moves only once the commit object is in the store.
	if err := r.UpdateRef(HeadRef, commitHash); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	r.Logger().WithFields(logrus.Fields{
		"oid":    commitHash,
		"tree":   treeHash,
		"parent": parent,
		"signed": signer != nil,
	}).Debug("commit created")
	return commitHash, nil
}
