package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veldshoe/storefront_api/internal/models"
	"github.com/veldshoe/storefront_api/internal/utils"
	"github.com/veldshoe/storefront_api/pkg/commerce"
)

const (
	// initialPageSize is the backend's maximum page size, used for the
	// first fetch of a sort/category selection.
	initialPageSize = 100
	// loadMorePageSize is the page size for follow-up fetches.
	loadMorePageSize = 24
	// revealIncrement is how many filtered products each load-more call
	// reveals to the client. Display count and fetch count are decoupled.
	revealIncrement = 24
)

// sessionPhase is the load state of a catalog session.
type sessionPhase int

const (
	phaseIdle sessionPhase = iota
	phaseLoading
	phaseLoadingMore
	phaseExhausted
)

// CatalogFetcher retrieves catalog pages from the commerce backend.
// *commerce.Client satisfies it.
type CatalogFetcher interface {
	GetProducts(ctx context.Context, q commerce.ProductsQuery) (*commerce.ProductsPage, error)
}

// BrowseParams fix the sort/category selection of a catalog session. The
// backend cursor is only valid for one combination; any change restarts
// pagination from the beginning.
type BrowseParams struct {
	OrderField commerce.OrderField
	Order      commerce.SortOrder
	Categories []string
}

func (p BrowseParams) equal(other BrowseParams) bool {
	if p.OrderField != other.OrderField || p.Order != other.Order {
		return false
	}
	if len(p.Categories) != len(other.Categories) {
		return false
	}
	for i := range p.Categories {
		if p.Categories[i] != other.Categories[i] {
			return false
		}
	}
	return true
}

// catalogSession is the per-session accumulation state. All fields are
// guarded by mu; fetches run outside the lock and re-validate tag before
// applying their result (stale-response guard).
type catalogSession struct {
	mu sync.Mutex

	params BrowseParams
	tag    uint64
	// primed is true once the first page for the current params has been
	// applied. A failed initial fetch leaves it false so a retry re-issues
	// the request instead of serving the empty accumulation.
	primed   bool
	products []models.Product
	seen     map[string]struct{}
	cursor   string
	hasNext  bool
	phase    sessionPhase
	lastErr  error
	revealed int
	touched  time.Time
}

// CatalogView is the computed response for the current session and filter
// selection.
type CatalogView struct {
	Items    []models.Product `json:"items"`
	Facets   Facets           `json:"facets"`
	HasMore  bool             `json:"hasMore"`
	Fetched  int              `json:"fetched"`
	Filtered int              `json:"filtered"`
}

// CatalogService accumulates catalog pages per browsing session, applies
// stock filtering and deduplication on arrival, and exposes load-more
// semantics with a stale-response guard.
type CatalogService struct {
	fetcher CatalogFetcher
	facets  *FacetEngine

	mu       sync.Mutex
	sessions map[string]*catalogSession
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(fetcher CatalogFetcher, facets *FacetEngine) *CatalogService {
	return &CatalogService{
		fetcher:  fetcher,
		facets:   facets,
		sessions: make(map[string]*catalogSession),
	}
}

func (s *CatalogService) session(id string) *catalogSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &catalogSession{seen: make(map[string]struct{}), touched: time.Now()}
		s.sessions[id] = sess
	}
	return sess
}

// Browse returns the catalog view for the given sort/category parameters.
// When the parameters differ from the session's current ones, or the first
// page for them was never applied (fresh session or failed initial fetch),
// the accumulated set and cursor are discarded and a fresh first page is
// fetched at the backend's maximum page size. Changing parameters also
// invalidates any in-flight fetch via the tag bump.
func (s *CatalogService) Browse(ctx context.Context, sessionID string, params BrowseParams, sel FilterSelection) (*CatalogView, error) {
	sess := s.session(sessionID)

	sess.mu.Lock()
	sess.touched = time.Now()
	if sess.phase == phaseLoading && sess.params.equal(params) {
		// The first page for these params is already in flight.
		view := s.buildView(sess, sel)
		sess.mu.Unlock()
		return view, nil
	}
	if sess.primed && sess.params.equal(params) {
		view := s.buildView(sess, sel)
		sess.mu.Unlock()
		return view, nil
	}

	// Reset accumulation; the tag bump makes any in-flight response stale.
	sess.tag++
	tag := sess.tag
	sess.params = params
	sess.primed = false
	sess.products = nil
	sess.seen = make(map[string]struct{})
	sess.cursor = ""
	sess.hasNext = false
	sess.lastErr = nil
	sess.revealed = revealIncrement
	sess.phase = phaseLoading
	sess.mu.Unlock()

	page, err := s.fetcher.GetProducts(ctx, commerce.ProductsQuery{
		First:      initialPageSize,
		OrderField: params.OrderField,
		Order:      params.Order,
		Categories: params.Categories,
	})

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.tag != tag {
		// Parameters changed while the request was in flight; this
		// response must not touch the session.
		log.Debug().Str("session", sessionID).Msg("discarding stale catalog response")
		return s.buildView(sess, sel), nil
	}
	if err != nil {
		sess.phase = phaseIdle
		sess.lastErr = err
		return s.buildView(sess, sel), fmt.Errorf("%w: %v", utils.ErrBackendFailed, err)
	}
	s.applyPage(sess, page)
	return s.buildView(sess, sel), nil
}

// LoadMore reveals the next display increment and, when the filtered set is
// close to exhausted relative to what has been fetched, pulls another
// backend page with the stored cursor. At most one fetch per session may be
// in flight; re-entrant calls while loading return the current view
// unchanged. A fetch failure returns the session to idle with the
// accumulated pages retained, so the caller may retry.
func (s *CatalogService) LoadMore(ctx context.Context, sessionID string, sel FilterSelection) (*CatalogView, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, utils.ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.touched = time.Now()
	if sess.phase == phaseLoading || sess.phase == phaseLoadingMore {
		view := s.buildView(sess, sel)
		sess.mu.Unlock()
		return view, nil
	}

	revealed := sess.revealed + revealIncrement

	filtered := s.facets.ApplyFilters(sess.products, sel)
	if !sess.hasNext || revealed+revealIncrement <= len(filtered) {
		// Enough filtered rows buffered (or nothing more to fetch):
		// no backend trip needed for this reveal.
		sess.revealed = revealed
		view := s.buildView(sess, sel)
		sess.mu.Unlock()
		return view, nil
	}

	tag := sess.tag
	cursor := sess.cursor
	params := sess.params
	sess.phase = phaseLoadingMore
	sess.mu.Unlock()

	page, err := s.fetcher.GetProducts(ctx, commerce.ProductsQuery{
		First:      loadMorePageSize,
		After:      cursor,
		OrderField: params.OrderField,
		Order:      params.Order,
		Categories: params.Categories,
	})

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.tag != tag {
		log.Debug().Str("session", sessionID).Msg("discarding stale load-more response")
		return s.buildView(sess, sel), nil
	}
	if err != nil {
		// The reveal increment is not committed, so a retry shows the
		// next increment rather than skipping one.
		sess.phase = phaseIdle
		sess.lastErr = err
		return s.buildView(sess, sel), fmt.Errorf("%w: %v", utils.ErrBackendFailed, err)
	}
	sess.revealed = revealed
	s.applyPage(sess, page)
	return s.buildView(sess, sel), nil
}

// applyPage filters a fetched page for purchasability, deduplicates against
// the accumulated set, and appends. Caller holds sess.mu.
func (s *CatalogService) applyPage(sess *catalogSession, page *commerce.ProductsPage) {
	for _, p := range mapProducts(page.Nodes) {
		if !p.Purchasable() {
			continue
		}
		if _, dup := sess.seen[p.ID]; dup {
			continue
		}
		sess.seen[p.ID] = struct{}{}
		sess.products = append(sess.products, p)
	}
	sess.cursor = page.PageInfo.EndCursor
	sess.hasNext = page.PageInfo.HasNextPage
	sess.primed = true
	sess.lastErr = nil
	if sess.hasNext {
		sess.phase = phaseIdle
	} else {
		sess.phase = phaseExhausted
	}
}

// buildView computes the visible slice and facets for a selection. Caller
// holds sess.mu.
func (s *CatalogService) buildView(sess *catalogSession, sel FilterSelection) *CatalogView {
	filtered := s.facets.ApplyFilters(sess.products, sel)
	visible := filtered
	if sess.revealed < len(filtered) {
		visible = filtered[:sess.revealed]
	}
	return &CatalogView{
		Items:    visible,
		Facets:   s.facets.DeriveFacets(sess.products, sel),
		HasMore:  len(visible) < len(filtered) || sess.hasNext,
		Fetched:  len(sess.products),
		Filtered: len(filtered),
	}
}

// ReapIdle drops sessions untouched for longer than maxIdle and returns the
// number removed.
func (s *CatalogService) ReapIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.touched.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// SessionCount returns the number of live catalog sessions.
func (s *CatalogService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
