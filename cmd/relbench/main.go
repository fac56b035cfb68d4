package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/social-graph/config"
	"github.com/d60-Lab/social-graph/internal/app"
	"github.com/d60-Lab/social-graph/internal/model"
	"github.com/d60-Lab/social-graph/internal/service"
	"github.com/d60-Lab/social-graph/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// timed runs op for every index in [0, n) on conc workers and returns per-op latencies.
func timed(n, conc int, op func(i int) error) ([]time.Duration, time.Duration, int) {
	if conc > n {
		conc = n
	}
	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var (
		mu     sync.Mutex
		recs   = make([]time.Duration, 0, n)
		errors int
		wg     sync.WaitGroup
	)
	start := time.Now()
	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				st := time.Now()
				err := op(i)
				d := time.Since(st)
				mu.Lock()
				recs = append(recs, d)
				if err != nil {
					errors++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return recs, time.Since(start), errors
}

func report(name string, recs []time.Duration, total time.Duration, errs int) {
	n := len(recs)
	if n == 0 {
		return
	}
	fmt.Printf("%-10s total: %v, per op: %v, p50: %v, p95: %v, p99: %v, errors: %d\n",
		name, total, total/time.Duration(n), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99), errs)
}

func main() {
	cfg := must(config.Load())
	cfg.Database.AutoMigrate = true
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()
	a := app.New(cfg, db, nil)
	ctx := context.Background()

	N := envInt("N", 10000)
	CONC := envInt("CONC", 1)
	PAGE := envInt("PAGE", 50)
	POSTS := envInt("POSTS", 100)

	// u0 is the celebrity every other user follows and likes.
	celeb := &model.User{ID: uuid.NewString(), Username: "celeb" + uuid.NewString()[:8], Password: "p"}
	celeb.Email = celeb.Username + "@example.com"
	must(0, db.Create(celeb).Error)

	users := make([]model.User, N)
	const batch = 1000
	for i := 0; i < N; i++ {
		id := uuid.NewString()
		users[i] = model.User{ID: id, Username: "u" + id[:8], Email: id[:8] + "@example.com", Password: "p"}
		if (i+1)%batch == 0 {
			sub := users[i+1-batch : i+1]
			must(0, db.Create(&sub).Error)
		}
	}
	if N%batch != 0 {
		sub := users[N-N%batch:]
		must(0, db.Create(&sub).Error)
	}

	posts := make([]*model.Post, 0, POSTS)
	for i := 0; i < POSTS; i++ {
		p := must(a.Engagement.CreatePost(ctx, service.CreatePostInput{
			AuthorID: celeb.ID,
			Title:    fmt.Sprintf("post %d", i),
			Content:  "benchmark",
		}))
		posts = append(posts, p)
	}

	fmt.Printf("N=%d, CONC=%d, PAGE=%d, POSTS=%d\n", N, CONC, PAGE, POSTS)

	recs, total, errs := timed(N, CONC, func(i int) error {
		_, err := a.Relations.Follow(ctx, users[i].ID, celeb.ID)
		return err
	})
	report("follow", recs, total, errs)

	recs, total, errs = timed(N, CONC, func(i int) error {
		_, err := a.Engagement.Like(ctx, users[i].ID, posts[i%len(posts)].ID)
		return err
	})
	report("like", recs, total, errs)

	recs, total, errs = timed(N, CONC, func(i int) error {
		_, err := a.Feed.Feed(ctx, users[i].ID, 1, PAGE)
		return err
	})
	report("feed", recs, total, errs)

	q0 := time.Now()
	_, _ = a.Relations.ListFans(ctx, celeb.ID, 1, PAGE)
	fmt.Printf("Query fans(%d) latency: %v\n", PAGE, time.Since(q0))

	q1 := time.Now()
	followers, following, _ := a.Relations.Counts(ctx, celeb.ID)
	fmt.Printf("Counts latency: %v (followers=%d, following=%d)\n", time.Since(q1), followers, following)

	q2 := time.Now()
	_, _ = a.Notifications.ListFor(ctx, celeb.ID, true, 1, PAGE)
	unread, _ := a.Notifications.UnreadCount(ctx, celeb.ID)
	fmt.Printf("Notifications(%d) latency: %v (unread=%d)\n", PAGE, time.Since(q2), unread)
}
