package repo

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/odvcencio/gitox/pkg/object"
	"golang.org/x/crypto/ssh"
)

// SignaturePrefix tags the signature format stored in commit objects:
// sshsig-v1:<algorithm>:<base64 public key>:<base64 signature>.
const SignaturePrefix = "sshsig-v1"

var (
	// ErrUnsigned is returned by VerifyCommit for commits without a signature.
	ErrUnsigned = errors.New("commit is not signed")
	// ErrBadSignature is returned when a signature does not verify.
	ErrBadSignature = errors.New("bad commit signature")
)

// SignatureInfo describes a verified commit signature.
type SignatureInfo struct {
	Format      string // signature algorithm, e.g. ssh-ed25519
	PublicKey   ssh.PublicKey
	Fingerprint string // SHA256:... fingerprint of PublicKey
}

// SSHSigner returns a CommitSigner that signs with signer and embeds its
// public key in the signature.
func SSHSigner(signer ssh.Signer) CommitSigner {
	pubB64 := base64.StdEncoding.EncodeToString(signer.PublicKey().Marshal())
	return func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s", SignaturePrefix, sig.Format, pubB64, sigB64), nil
	}
}

// NewSSHSigner loads an unencrypted OpenSSH or PEM private key from keyPath.
func NewSSHSigner(keyPath string) (CommitSigner, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read signing key %q: %w", keyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse signing key %q: %w", keyPath, err)
	}
	return SSHSigner(signer), nil
}

// VerifyCommit checks the signature embedded in commit h against the
// public key it carries and the commit's signing payload.
func (r *Repo) VerifyCommit(h object.Hash) (*SignatureInfo, error) {
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return nil, fmt.Errorf("verify commit: %w", err)
	}
	if strings.TrimSpace(c.Signature) == "" {
		return nil, fmt.Errorf("verify commit %s: %w", h, ErrUnsigned)
	}
	info, err := VerifySignature(c.Signature, object.CommitSigningPayload(c))
	if err != nil {
		return nil, fmt.Errorf("verify commit %s: %w", h, err)
	}
	return info, nil
}

// VerifySignature checks an encoded signature over payload.
func VerifySignature(encoded string, payload []byte) (*SignatureInfo, error) {
	parts := strings.Split(strings.TrimSpace(encoded), ":")
	if len(parts) != 4 || parts[0] != SignaturePrefix {
		return nil, fmt.Errorf("%w: unrecognized signature encoding", ErrBadSignature)
	}
	pubRaw, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrBadSignature, err)
	}
	sigRaw, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrBadSignature, err)
	}
	pub, err := ssh.ParsePublicKey(pubRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrBadSignature, err)
	}

	sig := &ssh.Signature{Format: parts[1], Blob: sigRaw}
	if err := pub.Verify(payload, sig); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return &SignatureInfo{
		Format:      parts[1],
		PublicKey:   pub,
		Fingerprint: ssh.FingerprintSHA256(pub),
	}, nil
}
