// Package pass keeps chatsync entries (the session token and the persisted
// open-window lists) in the unix password store, one gpg-encrypted entry per
// key under a common folder.
package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/bnema/chatsync/internal/ports"
)

var ErrUnavailable = errors.New("pass command unavailable")

// pass prints this for show and rm on a missing entry.
const missingEntry = "is not in the password store"

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

type Store struct {
	folder string
	run    runFunc
}

var _ ports.KVStore = (*Store)(nil)

// NewStore keeps every entry under folder, e.g. "chatsync/" turns the key
// "session_token" into the pass entry "chatsync/session_token".
func NewStore(folder string) *Store {
	return &Store{folder: folder, run: runPassCommand}
}

func (s *Store) entry(key string) string {
	return s.folder + key
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("store chatsync entry %q: value spans several lines", key)
	}

	if _, stderr, err := s.run(ctx, value+"\n", "insert", "--multiline", "--force", s.entry(key)); err != nil {
		return entryError("store", key, err, stderr)
	}

	return nil
}

// Get returns the first line of the entry, which is where Put writes the
// value.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, "", "show", s.entry(key))
	if err != nil {
		if strings.Contains(stderr, missingEntry) {
			return "", fmt.Errorf("read chatsync entry %q: %w", key, domain.ErrKeyNotFound)
		}
		return "", entryError("read", key, err, stderr)
	}

	value, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(value, "\r"), nil
}

// Delete treats an entry that is already gone as removed.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, stderr, err := s.run(ctx, "", "rm", "--force", s.entry(key)); err != nil {
		if strings.Contains(stderr, missingEntry) {
			return nil
		}
		return entryError("remove", key, err, stderr)
	}

	return nil
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func entryError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("%s chatsync entry %q in pass: %w", op, key, err)
	}

	return fmt.Errorf("%s chatsync entry %q in pass: %w (%s)", op, key, err, stderr)
}
