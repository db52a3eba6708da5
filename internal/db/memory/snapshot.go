package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"Agora/internal/core/posts"
	"Agora/internal/core/profiles"
)

const snapshotVersion = 1

// ErrSnapshotCorrupt is returned when a snapshot fails its checksum or invariants
var ErrSnapshotCorrupt = errors.New("snapshot corrupt")

// snapshotEnvelope wraps the encoded state with the CID of its bytes
type snapshotEnvelope struct {
	Checksum string `cbor:"checksum"`
	Payload  []byte `cbor:"payload"`
	Version  int    `cbor:"version"`
}

type snapshotState struct {
	LastStamp  time.Time         `cbor:"lastStamp"`
	Profiles   []snapshotProfile `cbor:"profiles"`
	Posts      []snapshotPost    `cbor:"posts"`
	Follows    []snapshotFollow  `cbor:"follows"`
	NextPostID int64             `cbor:"nextPostId"`
}

type snapshotProfile struct {
	CreatedAt time.Time `cbor:"createdAt"`
	DID       string    `cbor:"did"`
	Username  string    `cbor:"username"`
	AvatarURL string    `cbor:"avatarUrl"`
}

type snapshotPost struct {
	CreatedAt time.Time         `cbor:"createdAt"`
	EditedAt  *time.Time        `cbor:"editedAt"`
	Author    string            `cbor:"author"`
	Content   string            `cbor:"content"`
	Likes     []string          `cbor:"likes"`
	Comments  []snapshotComment `cbor:"comments"`
	ID        int64             `cbor:"id"`
}

type snapshotComment struct {
	CreatedAt time.Time `cbor:"createdAt"`
	Author    string    `cbor:"author"`
	Content   string    `cbor:"content"`
}

type snapshotFollow struct {
	Follower string `cbor:"follower"`
	Followee string `cbor:"followee"`
}

func snapshotEncMode() (cbor.EncMode, error) {
	return cbor.EncOptions{
		Time: cbor.TimeRFC3339Nano,
		Sort: cbor.SortCanonical,
	}.EncMode()
}

func snapshotChecksum(payload []byte) (cid.Cid, error) {
	return cid.V1Builder{
		Codec:    cid.DagCBOR,
		MhType:   multihash.SHA2_256,
		MhLength: -1,
	}.Sum(payload)
}

// WriteSnapshot encodes the whole store to w under a read lock
func (s *Store) WriteSnapshot(w io.Writer) error {
	em, err := snapshotEncMode()
	if err != nil {
		return fmt.Errorf("failed to build CBOR encoder: %w", err)
	}

	s.mu.RLock()
	state := s.exportLocked()
	s.mu.RUnlock()

	payload, err := em.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	sum, err := snapshotChecksum(payload)
	if err != nil {
		return fmt.Errorf("failed to checksum snapshot: %w", err)
	}

	envelope, err := em.Marshal(snapshotEnvelope{
		Version:  snapshotVersion,
		Checksum: sum.String(),
		Payload:  payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot envelope: %w", err)
	}

	if _, err := w.Write(envelope); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot replaces the store contents with the snapshot read from r.
// The store is left untouched if the snapshot is invalid.
func (s *Store) ReadSnapshot(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	var envelope snapshotEnvelope
	if err := cbor.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if envelope.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrSnapshotCorrupt, envelope.Version)
	}

	expected, err := cid.Decode(envelope.Checksum)
	if err != nil {
		return fmt.Errorf("%w: bad checksum: %v", ErrSnapshotCorrupt, err)
	}
	actual, err := snapshotChecksum(envelope.Payload)
	if err != nil {
		return fmt.Errorf("failed to checksum snapshot: %w", err)
	}
	if !actual.Equals(expected) {
		return fmt.Errorf("%w: checksum mismatch (have %s, want %s)", ErrSnapshotCorrupt, actual, expected)
	}

	var state snapshotState
	if err := cbor.Unmarshal(envelope.Payload, &state); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importLocked(state)
}

// SaveSnapshotFile writes the snapshot to path atomically (temp file + rename)
func (s *Store) SaveSnapshotFile(path string) error {
	var buf bytes.Buffer
	if err := s.WriteSnapshot(&buf); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// LoadSnapshotFile restores the store from path.
// Returns false with no error when the file does not exist yet.
func (s *Store) LoadSnapshotFile(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := s.ReadSnapshot(f); err != nil {
		return false, err
	}
	return true, nil
}

// exportLocked copies the store into snapshot form. Must hold s.mu.
func (s *Store) exportLocked() snapshotState {
	state := snapshotState{
		LastStamp:  s.lastStamp,
		NextPostID: s.nextPostID,
		Profiles:   make([]snapshotProfile, 0, len(s.profiles)),
		Posts:      make([]snapshotPost, 0, len(s.posts)),
	}

	for _, p := range s.profiles {
		state.Profiles = append(state.Profiles, snapshotProfile{
			DID:       p.DID,
			Username:  p.Username,
			AvatarURL: p.AvatarURL,
			CreatedAt: p.CreatedAt,
		})
	}
	sort.Slice(state.Profiles, func(i, j int) bool { return state.Profiles[i].DID < state.Profiles[j].DID })

	for _, record := range s.posts {
		view := record.view()
		comments := make([]snapshotComment, len(view.Comments))
		for i, c := range view.Comments {
			comments[i] = snapshotComment{Author: c.AuthorDID, Content: c.Content, CreatedAt: c.CreatedAt}
		}
		state.Posts = append(state.Posts, snapshotPost{
			ID:        view.ID,
			Author:    view.AuthorDID,
			Content:   view.Content,
			CreatedAt: view.CreatedAt,
			EditedAt:  view.EditedAt,
			Likes:     view.Likes,
			Comments:  comments,
		})
	}
	sort.Slice(state.Posts, func(i, j int) bool { return state.Posts[i].ID < state.Posts[j].ID })

	followers := make([]string, 0, len(s.following))
	for follower := range s.following {
		followers = append(followers, follower)
	}
	sort.Strings(followers)
	for _, follower := range followers {
		for _, followee := range sortedKeys(s.following[follower]) {
			state.Follows = append(state.Follows, snapshotFollow{Follower: follower, Followee: followee})
		}
	}

	return state
}

// importLocked validates state and swaps it in. Must hold s.mu for writing.
func (s *Store) importLocked(state snapshotState) error {
	next := NewStore()
	next.lastStamp = state.LastStamp.UTC()
	next.nextPostID = state.NextPostID

	observe := func(t time.Time) {
		if t.After(next.lastStamp) {
			next.lastStamp = t.UTC()
		}
	}

	for _, p := range state.Profiles {
		if p.DID == "" {
			return fmt.Errorf("%w: profile with empty DID", ErrSnapshotCorrupt)
		}
		if _, dup := next.profiles[p.DID]; dup {
			return fmt.Errorf("%w: duplicate profile %s", ErrSnapshotCorrupt, p.DID)
		}
		next.profiles[p.DID] = profiles.Profile{
			DID:       p.DID,
			Username:  p.Username,
			AvatarURL: p.AvatarURL,
			CreatedAt: p.CreatedAt.UTC(),
		}
		observe(p.CreatedAt)
	}

	sort.Slice(state.Posts, func(i, j int) bool { return state.Posts[i].ID < state.Posts[j].ID })
	var prev *snapshotPost
	for i := range state.Posts {
		p := &state.Posts[i]
		if p.ID <= 0 || p.ID > state.NextPostID {
			return fmt.Errorf("%w: post id %d outside (0, %d]", ErrSnapshotCorrupt, p.ID, state.NextPostID)
		}
		if prev != nil {
			if prev.ID == p.ID {
				return fmt.Errorf("%w: duplicate post id %d", ErrSnapshotCorrupt, p.ID)
			}
			if p.CreatedAt.Before(prev.CreatedAt) {
				return fmt.Errorf("%w: post %d predates post %d", ErrSnapshotCorrupt, p.ID, prev.ID)
			}
		}
		prev = p

		record := &postRecord{
			id:        p.ID,
			author:    p.Author,
			content:   p.Content,
			createdAt: p.CreatedAt.UTC(),
			likes:     make(map[string]struct{}, len(p.Likes)),
			comments:  make([]posts.Comment, 0, len(p.Comments)),
		}
		if p.EditedAt != nil {
			t := p.EditedAt.UTC()
			record.editedAt = &t
			observe(t)
		}
		for _, did := range p.Likes {
			record.likes[did] = struct{}{}
		}
		for _, c := range p.Comments {
			record.comments = append(record.comments, posts.Comment{
				AuthorDID: c.Author,
				Content:   c.Content,
				CreatedAt: c.CreatedAt.UTC(),
			})
			observe(c.CreatedAt)
		}
		observe(p.CreatedAt)

		next.posts[p.ID] = record
		next.authorPosts[p.Author] = append(next.authorPosts[p.Author], p.ID)
	}

	for _, f := range state.Follows {
		if f.Follower == f.Followee {
			return fmt.Errorf("%w: self follow for %s", ErrSnapshotCorrupt, f.Follower)
		}
		addEdge(next.following, f.Follower, f.Followee)
		addEdge(next.followers, f.Followee, f.Follower)
	}

	s.profiles = next.profiles
	s.posts = next.posts
	s.authorPosts = next.authorPosts
	s.following = next.following
	s.followers = next.followers
	s.nextPostID = next.nextPostID
	s.lastStamp = next.lastStamp
	return nil
}

// Snapshotter periodically writes the store to a file and writes a final
// snapshot when its context is cancelled
type Snapshotter struct {
	store    *Store
	logger   *slog.Logger
	path     string
	interval time.Duration
}

// NewSnapshotter creates a snapshotter. An interval <= 0 only snapshots on shutdown.
func NewSnapshotter(store *Store, path string, interval time.Duration, logger *slog.Logger) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshotter{
		store:    store,
		path:     path,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is done, then writes the final snapshot
func (sn *Snapshotter) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if sn.interval > 0 {
		ticker := time.NewTicker(sn.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			if err := sn.store.SaveSnapshotFile(sn.path); err != nil {
				return fmt.Errorf("final snapshot failed: %w", err)
			}
			sn.logger.Info("final snapshot written", "path", sn.path)
			return nil
		case <-tick:
			if err := sn.store.SaveSnapshotFile(sn.path); err != nil {
				// Keep serving; the next tick or shutdown retries
				sn.logger.Error("periodic snapshot failed", "path", sn.path, "error", err)
				continue
			}
			sn.logger.Debug("periodic snapshot written", "path", sn.path)
		}
	}
}
