package cli

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-graph/internal/app"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/service"
	"github.com/d60-Lab/social-graph/pkg/database"
	"github.com/d60-Lab/social-graph/pkg/logger"
)

type SeedOptions struct {
	Users        int
	PostsPerUser int
	MaxFollows   int
	Seed         int64
}

type SeedStats struct {
	Users         int
	Follows       int
	Posts         int
	Likes         int
	Comments      int
	Notifications int64
}

func NewSeedCommand(_ *RootOptions) *cobra.Command {
	opts := SeedOptions{}
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Populate the database with fake users, follows, posts and engagement",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()
			if err := database.Migrate(db); err != nil {
				return err
			}

			stats, err := Seed(cmd.Context(), app.New(cfg, db, nil), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d follows=%d posts=%d likes=%d comments=%d notifications=%d\n",
				stats.Users, stats.Follows, stats.Posts, stats.Likes, stats.Comments, stats.Notifications)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Users, "users", 50, "number of users")
	cmd.Flags().IntVar(&opts.PostsPerUser, "posts", 3, "posts per user")
	cmd.Flags().IntVar(&opts.MaxFollows, "follows", 10, "max follows per user")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed")
	return cmd
}

// Seed populates the database through the service layer, notifications included.
func Seed(ctx context.Context, a *app.App, opts SeedOptions) (SeedStats, error) {
	var stats SeedStats
	f := gofakeit.New(opts.Seed)

	users := make([]*model.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := a.Accounts.Register(ctx, service.RegisterInput{
			Username: fmt.Sprintf("%s%d", alnum(f.Username()), i),
			Email:    fmt.Sprintf("user%d.%s", i, strings.ToLower(f.Email())),
			Password: "password-" + fmt.Sprint(i),
		})
		if err != nil {
			return stats, fmt.Errorf("register user %d: %w", i, err)
		}
		bio := f.Sentence(8)
		if _, err := a.Accounts.UpdateProfile(ctx, u.ID, service.UpdateProfileInput{Bio: &bio}); err != nil {
			return stats, err
		}
		users = append(users, u)
	}
	stats.Users = len(users)
	if len(users) < 2 {
		return stats, nil
	}

	for _, u := range users {
		for n := f.IntRange(0, opts.MaxFollows); n > 0; n-- {
			target := users[f.IntRange(0, len(users)-1)]
			if target.ID == u.ID {
				continue
			}
			created, err := a.Relations.Follow(ctx, u.ID, target.ID)
			if err != nil {
				return stats, fmt.Errorf("follow: %w", err)
			}
			if created {
				stats.Follows++
			}
		}
	}

	var posts []*model.Post
	for _, u := range users {
		for n := 0; n < opts.PostsPerUser; n++ {
			p, err := a.Engagement.CreatePost(ctx, service.CreatePostInput{
				AuthorID: u.ID,
				Title:    f.Sentence(5),
				Content:  f.Paragraph(1, 3, 12, " "),
			})
			if err != nil {
				return stats, fmt.Errorf("create post: %w", err)
			}
			posts = append(posts, p)
		}
	}
	stats.Posts = len(posts)

	for _, p := range posts {
		for n := f.IntRange(0, 3); n > 0; n-- {
			liker := users[f.IntRange(0, len(users)-1)]
			_, err := a.Engagement.Like(ctx, liker.ID, p.ID)
			switch {
			case err == nil:
				stats.Likes++
			case service.KindOf(err) == service.KindDuplicateAction:
			default:
				return stats, fmt.Errorf("like: %w", err)
			}
		}
		if f.Bool() {
			commenter := users[f.IntRange(0, len(users)-1)]
			if _, err := a.Engagement.CreateComment(ctx, service.CreateCommentInput{
				PostID:   p.ID,
				AuthorID: commenter.ID,
				Content:  f.Sentence(10),
			}); err != nil {
				return stats, fmt.Errorf("comment: %w", err)
			}
			stats.Comments++
		}
	}

	for _, u := range users {
		n, err := a.Notifications.UnreadCount(ctx, u.ID)
		if err != nil {
			return stats, err
		}
		stats.Notifications += n
	}
	logger.Info("seed finished",
		zap.Int("users", stats.Users),
		zap.Int("follows", stats.Follows),
		zap.Int("posts", stats.Posts))
	return stats, nil
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() < 3 {
		return "user"
	}
	return b.String()
}
