// Package listview coordinates the filter state behind administrative list
// screens: dependent dropdown chains, mutually exclusive filters, debounced
// search and pagination, all reduced to one deterministic query string.
package listview

import (
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultPageSize = 20
)

// State tracks every input that shapes a list query. All mutating methods
// reset the page to 1, since any change can shrink the result set below the
// current offset.
type State struct {
	mu sync.Mutex

	filters  map[string]string
	children map[string][]string
	parents  map[string]string
	groups   [][]string

	search        string
	pendingSearch string
	debounce      time.Duration
	timer         *time.Timer
	generation    int

	page     int
	pageSize int

	onChange func()
}

func NewState() *State {
	return &State{
		filters:  make(map[string]string),
		children: make(map[string][]string),
		parents:  make(map[string]string),
		debounce: DefaultDebounce,
		page:     1,
		pageSize: DefaultPageSize,
	}
}

// Cascade declares that the child fields depend on parent: they stay
// disabled until the parent has a value, and they are cleared whenever the
// parent changes.
func (s *State) Cascade(parent string, children ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[parent] = append(s.children[parent], children...)
	for _, child := range children {
		s.parents[child] = parent
	}
}

// Precedence declares a group of mutually exclusive fields, strongest
// first. Setting any member clears the rest of the group, and if several
// somehow hold values the strongest one wins in Params.
func (s *State) Precedence(fields ...string) {
	s.mu.Lock()
	s.groups = append(s.groups, fields)
	s.mu.Unlock()
}

// SetDebounce adjusts the search quiet period. Zero commits immediately.
func (s *State) SetDebounce(d time.Duration) {
	s.mu.Lock()
	s.debounce = d
	s.mu.Unlock()
}

// OnChange registers a hook fired after every committed change, typically
// to re-run the query. It is invoked without the state lock held.
func (s *State) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Set stores a filter value, clears every descendant in its cascade chain
// and every other member of its precedence groups, and resets to page 1.
// Re-setting the current value is a no-op, so restoring a record's parent
// selection on an edit form does not wipe the child value that came with it.
func (s *State) Set(field, value string) {
	s.mu.Lock()
	if s.filters[field] == value {
		s.mu.Unlock()
		return
	}
	s.filters[field] = value
	s.clearDescendants(field)
	s.clearGroupSiblings(field)
	s.page = 1
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Clear unsets a filter. Descendants are cleared as well: without the
// parent their values no longer mean anything.
func (s *State) Clear(field string) {
	s.Set(field, "")
}

func (s *State) Value(field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters[field]
}

// Enabled reports whether a field may be interacted with. A field with a
// cascade parent stays disabled until the whole ancestor chain has values.
func (s *State) Enabled(field string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ancestorsSet(field)
}

// FetchAllowed reports whether the option list for a field should be
// requested at all. Fetching a child list without its parent value would
// query an unscoped collection, so the guard is the same ancestor check.
func (s *State) FetchAllowed(field string) bool {
	return s.Enabled(field)
}

func (s *State) ancestorsSet(field string) bool {
	for {
		parent, ok := s.parents[field]
		if !ok {
			return true
		}
		if s.filters[parent] == "" {
			return false
		}
		field = parent
	}
}

// clearDescendants must be called with the lock held.
func (s *State) clearDescendants(field string) {
	queue := append([]string(nil), s.children[field]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		s.filters[next] = ""
		queue = append(queue, s.children[next]...)
	}
}

// clearGroupSiblings must be called with the lock held.
func (s *State) clearGroupSiblings(field string) {
	for _, group := range s.groups {
		member := false
		for _, f := range group {
			if f == field {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		for _, f := range group {
			if f != field {
				s.filters[f] = ""
			}
		}
	}
}

// shadowed must be called with the lock held. A field is shadowed when a
// stronger member of one of its precedence groups holds a value. Fields
// outside every group are never shadowed.
func (s *State) shadowed(field string) bool {
	for _, group := range s.groups {
		idx := -1
		for i, f := range group {
			if f == field {
				idx = i
				break
			}
		}
		if idx <= 0 {
			continue
		}
		for _, stronger := range group[:idx] {
			if s.filters[stronger] != "" {
				return true
			}
		}
	}
	return false
}

// SetSearch records the text but does not commit it until the debounce
// window passes without another keystroke. Intermediate values are
// discarded; only the final quiet value triggers a query.
func (s *State) SetSearch(text string) {
	s.mu.Lock()
	s.pendingSearch = text
	s.generation++
	gen := s.generation
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.debounce <= 0 {
		s.mu.Unlock()
		s.commitSearch(gen)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.commitSearch(gen) })
	s.mu.Unlock()
}

// FlushSearch commits whatever is pending right now, e.g. on Enter.
func (s *State) FlushSearch() {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.commitSearch(gen)
}

func (s *State) commitSearch(gen int) {
	s.mu.Lock()
	if gen != s.generation {
		// A newer keystroke superseded this commit.
		s.mu.Unlock()
		return
	}
	if s.pendingSearch == s.search {
		s.mu.Unlock()
		return
	}
	s.search = s.pendingSearch
	s.page = 1
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *State) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

func (s *State) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *State) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSize
}

func (s *State) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.page = page
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetPageSize changes the page length and snaps back to the first page;
// keeping the old page number against a different size would land on an
// arbitrary window.
func (s *State) SetPageSize(size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	s.mu.Lock()
	s.pageSize = size
	s.page = 1
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Params renders the committed state as a query string. Empty filters are
// omitted, shadowed precedence members are suppressed, and page/pageSize
// are always present so the server answers with the paged envelope.
func (s *State) Params() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := url.Values{}
	for field, value := range s.filters {
		if value == "" || s.shadowed(field) {
			continue
		}
		values.Set(field, value)
	}
	if s.search != "" {
		values.Set("search", s.search)
	}
	values.Set("page", strconv.Itoa(s.page))
	values.Set("pageSize", strconv.Itoa(s.pageSize))
	return values
}
