// Package demo loads a small fixed social graph for local development.
package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"Agora/internal/core/graph"
	"Agora/internal/core/posts"
	"Agora/internal/core/profiles"
)

// Demo identities
const (
	Alice   = "did:plc:demoalice"
	Bob     = "did:plc:demobob"
	Charlie = "did:plc:democharlie"
	Diana   = "did:plc:demodiana"
	Eve     = "did:plc:demoeve"
)

type demoUser struct {
	did      string
	username string
	avatar   string
}

var users = []demoUser{
	{Alice, "alice", "https://i.pravatar.cc/150?img=1"},
	{Bob, "bob", "https://i.pravatar.cc/150?img=2"},
	{Charlie, "charlie", "https://i.pravatar.cc/150?img=3"},
	{Diana, "diana", "https://i.pravatar.cc/150?img=4"},
	{Eve, "eve", "https://i.pravatar.cc/150?img=5"},
}

var follows = map[string][]string{
	Alice:   {Bob, Charlie},
	Bob:     {Alice, Diana},
	Charlie: {Alice, Eve},
	Diana:   {Alice, Bob, Eve},
	Eve:     {Charlie},
}

type demoPost struct {
	author   string
	content  string
	likers   []string
	comments []demoComment
}

type demoComment struct {
	author  string
	content string
}

// Posts are created in slice order, so later entries sort first in feeds
var postsToSeed = []demoPost{
	{author: Alice, content: "Hello everyone! First post from Alice.",
		likers:   []string{Bob, Charlie},
		comments: []demoComment{{Bob, "Welcome Alice!"}}},
	{author: Alice, content: "Loving this little social network."},
	{author: Bob, content: "Bob here. Go services FTW.",
		likers:   []string{Alice, Diana},
		comments: []demoComment{{Diana, "Absolutely!"}}},
	{author: Bob, content: "Working on the feed today."},
	{author: Bob, content: "Any tips for snapshotting state?"},
	{author: Charlie, content: "Read paths make feeds snappy.",
		likers:   []string{Alice, Bob, Eve},
		comments: []demoComment{{Eve, "Agreed!"}}},
	{author: Charlie, content: "Subscriptions or polling? I prefer light polling."},
	{author: Diana, content: "Frontend wired up with Vite."},
	{author: Diana, content: "Login is smooth!",
		likers:   []string{Alice, Bob, Charlie},
		comments: []demoComment{{Alice, "Thanks Diana!"}}},
	{author: Eve, content: "Eve testing comments & likes.",
		likers:   []string{Alice, Diana},
		comments: []demoComment{{Alice, "Looks good."}}},
	{author: Eve, content: "Decentralized storage > centralized servers."},
}

// Seeder writes the demo data through the public services
type Seeder struct {
	profiles profiles.Service
	posts    posts.Service
	graph    graph.Service
	logger   *slog.Logger
}

// NewSeeder creates a seeder
func NewSeeder(profileService profiles.Service, postService posts.Service, graphService graph.Service, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		profiles: profileService,
		posts:    postService,
		graph:    graphService,
		logger:   logger,
	}
}

// Seed loads the demo data. It returns (false, nil) without writing anything
// when the demo profiles already exist, e.g. after a snapshot restore.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	existing, err := s.profiles.GetProfile(ctx, Alice)
	if err != nil {
		return false, fmt.Errorf("failed to check for demo data: %w", err)
	}
	if existing != nil {
		s.logger.Info("demo data already present, skipping seed")
		return false, nil
	}

	for _, u := range users {
		_, err := s.profiles.Register(ctx, profiles.RegisterRequest{
			DID:       u.did,
			Username:  u.username,
			AvatarURL: u.avatar,
		})
		if err != nil && !errors.Is(err, profiles.ErrAlreadyRegistered) {
			return false, fmt.Errorf("failed to register %s: %w", u.username, err)
		}
	}

	for _, u := range users {
		for _, subject := range follows[u.did] {
			if err := s.graph.Follow(ctx, u.did, subject); err != nil {
				return false, fmt.Errorf("failed to follow %s -> %s: %w", u.did, subject, err)
			}
		}
	}

	for _, p := range postsToSeed {
		post, err := s.posts.CreatePost(ctx, posts.CreatePostRequest{AuthorDID: p.author, Content: p.content})
		if err != nil {
			return false, fmt.Errorf("failed to create demo post: %w", err)
		}
		for _, liker := range p.likers {
			if _, err := s.posts.LikePost(ctx, liker, post.ID); err != nil {
				return false, fmt.Errorf("failed to like post %d: %w", post.ID, err)
			}
		}
		for _, c := range p.comments {
			if _, err := s.posts.CommentPost(ctx, posts.CommentPostRequest{AuthorDID: c.author, ID: post.ID, Content: c.content}); err != nil {
				return false, fmt.Errorf("failed to comment on post %d: %w", post.ID, err)
			}
		}
	}

	s.logger.Info("demo data seeded",
		"profiles", len(users),
		"posts", len(postsToSeed))

	return true, nil
}
