package university

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/unidash/unidash/core"
)

// Tab identifies one of the three mutually exclusive list views.
type Tab string

const (
	TabConfirm    Tab = "confirm"
	TabInProgress Tab = "in_progress"
	TabDelete     Tab = "delete"
)

func (t Tab) Valid() bool {
	switch t {
	case TabConfirm, TabInProgress, TabDelete:
		return true
	}
	return false
}

// TargetStatus is the status a row must have to show under t.
func (t Tab) TargetStatus() Status {
	switch t {
	case TabInProgress:
		return StatusInProgress
	case TabDelete:
		return StatusDeleted
	default:
		return StatusConfirmed
	}
}

// DeletePhase tracks the two-phase permanent-delete action.
type DeletePhase string

const (
	DeleteIdle       DeletePhase = "idle"
	DeleteConfirming DeletePhase = "confirming"
)

// ListController owns the paginated, filtered, tabbed view state of the
// university list and reconciles it with the repository. Methods serialize on
// an internal mutex, standing in for the single-threaded event loop of a
// browser UI. Every remote failure is converted into a user-visible
// notification and the last successfully fetched snapshot stays on screen.
type ListController struct {
	mu  sync.Mutex
	svc *Service
	log core.Logger

	tab         Tab
	page        int
	limit       int
	total       int
	search      string
	filters     FilterSet
	fieldSearch FilterKey // active single-field remote search; "" = baseline
	rows        []University
	selected    map[string]struct{}
	deletePhase DeletePhase
	notice      string
	errMsg      string
}

func NewListController(svc *Service, logger core.Logger) *ListController {
	return &ListController{
		svc:         svc,
		log:         logger,
		tab:         TabConfirm,
		page:        1,
		limit:       DefaultPageSize,
		filters:     FilterSet{},
		selected:    make(map[string]struct{}),
		deletePhase: DeleteIdle,
	}
}

// Fetch loads the baseline paginated list. On failure the previous snapshot
// is left untouched and the error is kept as a notification.
func (c *ListController) Fetch(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetch(ctx)
}

// fetch must be called with c.mu held.
func (c *ListController) fetch(ctx context.Context) error {
	c.notice, c.errMsg = "", ""
	page, err := c.svc.List(ctx, ListQuery{Page: c.page, Limit: c.limit, Search: c.search})
	if err != nil {
		c.errMsg = err.Error()
		c.log.Warn(fmt.Sprintf("fetching universities: %v", err), err)
		return err
	}
	c.rows = page.Data
	c.total = page.Pagination.Total
	if c.fieldSearch != "" {
		// the baseline list supersedes the field search entirely,
		// including its filter entry
		delete(c.filters, c.fieldSearch)
		c.fieldSearch = ""
	}
	c.pruneSelection()
	return nil
}

// SearchByField runs the dedicated remote query for one filter key,
// bypassing pagination. A new field search supersedes the previous one;
// clearing the value re-triggers the baseline fetch.
func (c *ListController) SearchByField(ctx context.Context, key FilterKey, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchByField(ctx, key, value)
}

// searchByField must be called with c.mu held.
func (c *ListController) searchByField(ctx context.Context, key FilterKey, value string) error {
	value = core.CleanString(value)
	if value == "" {
		delete(c.filters, key)
		if c.fieldSearch == key {
			return c.fetch(ctx)
		}
		return nil
	}

	c.notice, c.errMsg = "", ""
	results, err := c.svc.SearchByField(ctx, key, value)
	if err != nil {
		c.errMsg = err.Error()
		c.log.Warn(fmt.Sprintf("searching universities by %s: %v", key, err), err)
		return err
	}
	c.filters[key] = value
	c.fieldSearch = key
	c.rows = results
	c.total = len(results)
	c.page = 1
	c.pruneSelection()
	if len(results) == 0 {
		c.notice = fmt.Sprintf("no universities found for %s %q", key, value)
	}
	return nil
}

// SetFilters merges patch into the filter map. Remote keys trigger their
// dedicated search; local keys only affect the Visible predicate.
func (c *ListController) SetFilters(ctx context.Context, patch FilterSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	for key, value := range patch {
		if !key.Valid() {
			continue
		}
		if key.Remote() {
			if e := c.searchByField(ctx, key, value); e != nil {
				err = e
			}
			continue
		}
		c.filters.Merge(FilterSet{key: value})
	}
	return err
}

// SetSearch updates the free-text term and re-fetches the baseline list.
func (c *ListController) SetSearch(ctx context.Context, search string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = core.CleanString(search)
	c.page = 1
	return c.fetch(ctx)
}

func (c *ListController) SetTab(tab Tab) error {
	if !tab.Valid() {
		return core.NewValidationError(errBadTab,
			core.FieldError{Field: "tab", Error: errBadTab.Error()})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = tab
	c.selected = make(map[string]struct{})
	c.deletePhase = DeleteIdle
	c.notice, c.errMsg = "", ""
	return nil
}

func (c *ListController) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		return core.NewValidationError(errBadPage,
			core.FieldError{Field: "page", Error: errBadPage.Error()})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
	return c.fetch(ctx)
}

func (c *ListController) SetLimit(ctx context.Context, limit int) error {
	if !ValidPageSize(limit) {
		return core.NewValidationError(errBadLimit,
			core.FieldError{Field: "limit", Error: errBadLimit.Error()})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = limit
	c.page = 1
	return c.fetch(ctx)
}

// Visible returns the rows of the loaded snapshot that pass the local
// predicate for the active tab.
func (c *ListController) Visible() []University {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible()
}

// visible must be called with c.mu held.
func (c *ListController) visible() []University {
	out := make([]University, 0, len(c.rows))
	for _, u := range c.rows {
		if Match(u, c.search, c.filters, c.tab.TargetStatus()) {
			out = append(out, u)
		}
	}
	return out
}

// Select checks the given rows; ids not visible in the active tab are ignored.
func (c *ListController) Select(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vis := make(map[string]struct{})
	for _, u := range c.visible() {
		vis[u.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := vis[id]; ok {
			c.selected[id] = struct{}{}
		}
	}
}

func (c *ListController) Deselect(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.selected, id)
	}
}

// SelectAll checks every visible row of the active tab, or clears the
// selection. Selecting all on an empty list leaves the selection empty.
func (c *ListController) SelectAll(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selected = make(map[string]struct{})
	if !on {
		return
	}
	for _, u := range c.visible() {
		c.selected[u.ID] = struct{}{}
	}
}

func (c *ListController) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedIDs()
}

// selectedIDs must be called with c.mu held.
func (c *ListController) selectedIDs() []string {
	ids := make([]string, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// pruneSelection drops checked ids that vanished from the snapshot.
// Must be called with c.mu held.
func (c *ListController) pruneSelection() {
	present := make(map[string]struct{}, len(c.rows))
	for _, u := range c.rows {
		present[u.ID] = struct{}{}
	}
	for id := range c.selected {
		if _, ok := present[id]; !ok {
			delete(c.selected, id)
		}
	}
}

// Transition moves the selection to target. On success the selection is
// cleared and the list re-fetched; on (partial) failure a single aggregated
// error is surfaced and already-updated rows are not rolled back.
func (c *ListController) Transition(ctx context.Context, target Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := c.selectedIDs()
	if len(ids) == 0 {
		c.notice = "no universities selected"
		return nil
	}
	if err := c.svc.Transition(ctx, ids, target); err != nil {
		c.errMsg = err.Error()
		c.log.Warn(fmt.Sprintf("bulk transition to %s: %v", target, err), err)
		return err
	}
	c.selected = make(map[string]struct{})
	return c.fetch(ctx)
}

// PermanentlyDelete is two-phase: the first call only arms a confirmation
// prompt; the confirmed second call issues the network deletes. Failure
// reports an error and leaves the prompt dismissed.
func (c *ListController) PermanentlyDelete(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := c.selectedIDs()
	if len(ids) == 0 {
		c.notice = "no universities selected"
		return nil
	}

	if c.deletePhase == DeleteIdle {
		c.deletePhase = DeleteConfirming
		return nil
	}

	c.deletePhase = DeleteIdle
	if err := c.svc.Remove(ctx, ids); err != nil {
		c.errMsg = err.Error()
		c.log.Warn(fmt.Sprintf("permanent delete: %v", err), err)
		return err
	}
	c.selected = make(map[string]struct{})
	return c.fetch(ctx)
}

// CancelDelete dismisses an armed confirmation prompt.
func (c *ListController) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletePhase = DeleteIdle
}

// ConfirmAll transitions every currently loaded in-progress row to confirmed.
// Informational no-op when none exist.
func (c *ListController) ConfirmAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []string
	for _, u := range c.rows {
		if u.Status == StatusInProgress {
			ids = append(ids, u.ID)
		}
	}
	if len(ids) == 0 {
		c.notice = "no in-progress universities to confirm"
		return nil
	}
	if err := c.svc.Transition(ctx, ids, StatusConfirmed); err != nil {
		c.errMsg = err.Error()
		c.log.Warn(fmt.Sprintf("confirm all: %v", err), err)
		return err
	}
	c.selected = make(map[string]struct{})
	return c.fetch(ctx)
}

// PaginationLabel renders the "Showing X-Y of Z" caption.
func (c *ListController) PaginationLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paginationLabel()
}

// paginationLabel must be called with c.mu held.
func (c *ListController) paginationLabel() string {
	if c.total == 0 {
		return "Showing 0 of 0"
	}
	start := (c.page-1)*c.limit + 1
	end := c.page * c.limit
	if end > c.total {
		end = c.total
	}
	return fmt.Sprintf("Showing %d-%d of %d", start, end, c.total)
}

// ViewState is a JSON-friendly snapshot of the controller.
type ViewState struct {
	Tab             Tab                  `json:"tab"`
	Page            int                  `json:"page"`
	Limit           int                  `json:"limit"`
	Total           int                  `json:"total"`
	Search          string               `json:"search"`
	Filters         map[FilterKey]string `json:"filters"`
	FieldSearch     FilterKey            `json:"field_search,omitempty"`
	Rows            []University         `json:"rows"`
	Selected        []string             `json:"selected"`
	DeletePhase     DeletePhase          `json:"delete_phase"`
	Notice          string               `json:"notice,omitempty"`
	Error           string               `json:"error,omitempty"`
	PaginationLabel string               `json:"pagination_label"`
}

func (c *ListController) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ViewState{
		Tab:             c.tab,
		Page:            c.page,
		Limit:           c.limit,
		Total:           c.total,
		Search:          c.search,
		Filters:         c.filters.Clone(),
		FieldSearch:     c.fieldSearch,
		Rows:            c.visible(),
		Selected:        c.selectedIDs(),
		DeletePhase:     c.deletePhase,
		Notice:          c.notice,
		Error:           c.errMsg,
		PaginationLabel: c.paginationLabel(),
	}
}
