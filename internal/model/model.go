// Package model holds the in-memory stream graph a DCF valuation is run
// against: the FinancialModel (streams + settings), its validation rules,
// and the topological execution order the cashflow builder and drivers walk.
package model

// FinancialModel is a mapping id -> Stream plus ModelSettings and a name.
// Insertion order is preserved for the user-visible ordering the UI may
// reorder; it is not the execution order (see GetExecutionOrder).
type FinancialModel struct {
	Name     string
	Settings ModelSettings

	streams map[string]Stream
	order   []string
}

// New creates an empty model with the given name and settings.
func New(name string, settings ModelSettings) *FinancialModel {
	return &FinancialModel{
		Name:     name,
		Settings: settings,
		streams:  make(map[string]Stream),
	}
}

// Get returns the stream with the given id.
func (m *FinancialModel) Get(id string) (Stream, bool) {
	s, ok := m.streams[id]
	return s, ok
}

// Streams returns every stream in insertion order.
func (m *FinancialModel) Streams() []Stream {
	out := make([]Stream, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.streams[id])
	}
	return out
}

// AddStream inserts a new stream. It rejects a duplicate id, a dangling
// parent reference, or a resulting cycle.
func (m *FinancialModel) AddStream(s Stream) error {
	if _, exists := m.streams[s.ID]; exists {
		return graphErr("duplicate stream id %q", s.ID)
	}
	if err := m.checkParentage(s); err != nil {
		return err
	}
	if err := validateStreamFields(s); err != nil {
		return err
	}
	m.streams[s.ID] = s
	m.order = append(m.order, s.ID)
	return nil
}

// UpdateStream replaces the stream stored at id with s (s.ID is forced to
// id). Rejects the same structural/validation errors as AddStream, plus
// ErrNotFound if id is unknown.
func (m *FinancialModel) UpdateStream(id string, s Stream) error {
	if _, exists := m.streams[id]; !exists {
		return ErrNotFound
	}
	s.ID = id
	if err := m.checkParentage(s); err != nil {
		return err
	}
	if err := validateStreamFields(s); err != nil {
		return err
	}

	previous := m.streams[id]
	m.streams[id] = s
	if m.hasCycleFrom(id) {
		m.streams[id] = previous
		return graphErr("update would create a cycle at %q", id)
	}
	return nil
}

// RemoveStream deletes the stream with the given id. Any child whose
// parent_stream_id equals id is re-parented to nil (it becomes a root).
func (m *FinancialModel) RemoveStream(id string) error {
	if _, exists := m.streams[id]; !exists {
		return ErrNotFound
	}
	delete(m.streams, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	for oid, s := range m.streams {
		if s.ParentStreamID != nil && *s.ParentStreamID == id {
			s.ParentStreamID = nil
			m.streams[oid] = s
		}
	}
	return nil
}

// GetChildren returns every stream whose parent_stream_id equals id, in
// insertion order.
func (m *FinancialModel) GetChildren(id string) []Stream {
	var out []Stream
	for _, oid := range m.order {
		s := m.streams[oid]
		if s.ParentStreamID != nil && *s.ParentStreamID == id {
			out = append(out, s)
		}
	}
	return out
}

// checkParentage rejects a dangling parent reference or an immediate
// self-parent cycle. Cycles introduced by re-pointing an existing stream's
// parent deeper into the graph are caught by hasCycleFrom after the
// tentative write (see UpdateStream).
func (m *FinancialModel) checkParentage(s Stream) error {
	if s.ParentStreamID == nil {
		return nil
	}
	if *s.ParentStreamID == s.ID {
		return graphErr("stream %q cannot be its own parent", s.ID)
	}
	if _, ok := m.streams[*s.ParentStreamID]; !ok {
		return graphErr("stream %q references missing parent %q", s.ID, *s.ParentStreamID)
	}
	return nil
}

// hasCycleFrom walks the parent chain starting at id and reports whether it
// loops back on itself.
func (m *FinancialModel) hasCycleFrom(id string) bool {
	visited := make(map[string]bool)
	cur := id
	for {
		if visited[cur] {
			return true
		}
		visited[cur] = true
		s, ok := m.streams[cur]
		if !ok || s.ParentStreamID == nil {
			return false
		}
		cur = *s.ParentStreamID
	}
}

// GetExecutionOrder returns stream ids in Kahn topological order: roots
// first, each child only after its parent, ties broken by insertion order.
// Cycles are rejected by Validate/AddStream/UpdateStream, not here; a
// stream left orphaned by a cycle is simply omitted from the result.
func (m *FinancialModel) GetExecutionOrder() []string {
	indegree := make(map[string]int, len(m.order))
	childrenOf := make(map[string][]string, len(m.order))
	for _, id := range m.order {
		indegree[id] = 0
	}
	for _, id := range m.order {
		s := m.streams[id]
		if s.ParentStreamID == nil {
			continue
		}
		if _, ok := m.streams[*s.ParentStreamID]; !ok {
			continue
		}
		childrenOf[*s.ParentStreamID] = append(childrenOf[*s.ParentStreamID], id)
		indegree[id]++
	}

	queue := make([]string, 0, len(m.order))
	for _, id := range m.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	result := make([]string, 0, len(m.order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)
		for _, child := range childrenOf[id] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return result
}
