package feed

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"reverie/internal/observability"
)

// PageSize bounds every assembled feed.
const PageSize = 50

// BlockChecker reports whether the viewer has blocked (or is blocked by)
// the given user. A nil checker blocks nobody.
type BlockChecker interface {
	IsBlocked(userID uint) bool
}

// Assembler builds the three feed variants. Any lookup failure aborts that
// assembly and yields an empty list plus a logged error; assemblers never
// return an error to the render path.
type Assembler struct {
	gateway  Gateway
	logger   *slog.Logger
	pageSize int
}

// NewAssembler creates a feed assembler over the given gateway.
func NewAssembler(gateway Gateway, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{gateway: gateway, logger: logger, pageSize: PageSize}
}

// Following returns public dreams authored by anyone the viewer follows,
// newest first. A viewer who follows nobody gets an empty feed without a
// dream query being issued.
func (a *Assembler) Following(ctx context.Context, viewerID uint, blocked BlockChecker) []DreamRecord {
	defer observability.ObserveFeedAssembly("following", time.Now())

	followed, err := a.gateway.FollowedIDs(ctx, viewerID)
	if err != nil {
		return a.fail(ctx, "following", err)
	}
	if len(followed) == 0 {
		return []DreamRecord{}
	}

	raws, err := a.gateway.PublicByAuthors(ctx, followed, a.pageSize)
	if err != nil {
		return a.fail(ctx, "following", err)
	}

	records, err := a.assemble(ctx, viewerID, raws, blocked)
	if err != nil {
		return a.fail(ctx, "following", err)
	}
	return records
}

// Recent returns public dreams across all authors, newest first.
func (a *Assembler) Recent(ctx context.Context, viewerID uint, blocked BlockChecker) []DreamRecord {
	defer observability.ObserveFeedAssembly("recent", time.Now())

	raws, err := a.gateway.RecentPublic(ctx, a.pageSize)
	if err != nil {
		return a.fail(ctx, "recent", err)
	}

	records, err := a.assemble(ctx, viewerID, raws, blocked)
	if err != nil {
		return a.fail(ctx, "recent", err)
	}
	return records
}

// Search unions an author-username match with a title/body content match
// over public dreams. The two legs are issued in parallel.
func (a *Assembler) Search(ctx context.Context, viewerID uint, query string, blocked BlockChecker) []DreamRecord {
	defer observability.ObserveFeedAssembly("search", time.Now())

	var (
		wg          sync.WaitGroup
		authorRaws  []RawDream
		contentRaws []RawDream
		authorErr   error
		contentErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ids, err := a.gateway.SearchAuthors(ctx, query)
		if err != nil {
			authorErr = err
			return
		}
		if len(ids) == 0 {
			return
		}
		authorRaws, authorErr = a.gateway.PublicByAuthors(ctx, ids, a.pageSize)
	}()
	go func() {
		defer wg.Done()
		contentRaws, contentErr = a.gateway.SearchPublic(ctx, query, a.pageSize)
	}()
	wg.Wait()

	if authorErr != nil {
		return a.fail(ctx, "search", authorErr)
	}
	if contentErr != nil {
		return a.fail(ctx, "search", contentErr)
	}

	// Union the two match sets by dream ID.
	seen := make(map[string]struct{}, len(authorRaws)+len(contentRaws))
	union := make([]RawDream, 0, len(authorRaws)+len(contentRaws))
	for _, raw := range append(authorRaws, contentRaws...) {
		if _, dup := seen[raw.ID]; dup {
			continue
		}
		seen[raw.ID] = struct{}{}
		union = append(union, raw)
	}

	records, err := a.assemble(ctx, viewerID, union, blocked)
	if err != nil {
		return a.fail(ctx, "search", err)
	}
	return records
}

// assemble normalizes, drops private and blocked-author rows, enriches each
// record's counters concurrently, and returns a newest-first page.
func (a *Assembler) assemble(ctx context.Context, viewerID uint, raws []RawDream, blocked BlockChecker) ([]DreamRecord, error) {
	records := make([]DreamRecord, 0, len(raws))
	for _, raw := range raws {
		record := Normalize(raw)
		if !record.IsPublic {
			continue
		}
		if blocked != nil && blocked.IsBlocked(record.AuthorID) {
			continue
		}
		records = append(records, record)
	}

	if err := a.enrich(ctx, viewerID, records); err != nil {
		return nil, err
	}

	// Newest first; ties keep source order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if len(records) > a.pageSize {
		records = records[:a.pageSize]
	}
	return records, nil
}

// enrich fetches like count, comment count, and viewer-like membership for
// every record. The lookups are independent, dispatched together, and
// awaited jointly.
func (a *Assembler) enrich(ctx context.Context, viewerID uint, records []DreamRecord) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	recordErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for i := range records {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			count, err := a.gateway.LikeCount(ctx, records[i].ID)
			if err != nil {
				recordErr(err)
				return
			}
			records[i].LikeCount = count
		}(i)
		go func(i int) {
			defer wg.Done()
			count, err := a.gateway.CommentCount(ctx, records[i].ID)
			if err != nil {
				recordErr(err)
				return
			}
			records[i].CommentCount = count
		}(i)
		go func(i int) {
			defer wg.Done()
			liked, err := a.gateway.HasLiked(ctx, viewerID, records[i].ID)
			if err != nil {
				recordErr(err)
				return
			}
			records[i].ViewerHasLiked = liked
		}(i)
	}
	wg.Wait()
	return firstErr
}

func (a *Assembler) fail(ctx context.Context, variant string, err error) []DreamRecord {
	a.logger.ErrorContext(ctx, "feed assembly aborted",
		slog.String("feed", variant),
		slog.String("error", err.Error()),
	)
	observability.FeedAssemblyErrors.WithLabelValues(variant).Inc()
	return []DreamRecord{}
}
