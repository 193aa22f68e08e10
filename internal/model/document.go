package model

import "encoding/json"

// DocumentVersion tags the wire format produced by Marshal. Unknown
// top-level fields in a document being read are ignored (Go's json package
// does this by default); "_comment" fields are likewise ignored since
// Document never declares a field to receive them.
const DocumentVersion = "1"

// DocumentMetadata is the optional envelope persisted alongside a model:
// a version tag and timestamps, kept separate from the in-memory struct so
// the wire format can evolve without touching FinancialModel itself.
type DocumentMetadata struct {
	Version   string `json:"version"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Document is the structured persistence/template format: name, settings,
// an ordered list of streams, and optional metadata.
type Document struct {
	Name     string            `json:"name"`
	Settings ModelSettings     `json:"settings"`
	Streams  []Stream          `json:"streams"`
	Metadata *DocumentMetadata `json:"_metadata,omitempty"`
}

// ToDocument snapshots the model into its persistence form.
func (m *FinancialModel) ToDocument() Document {
	return Document{
		Name:     m.Name,
		Settings: m.Settings,
		Streams:  m.Streams(),
		Metadata: &DocumentMetadata{Version: DocumentVersion},
	}
}

// FromDocument rebuilds a model from a document, re-inserting streams via
// AddStream so graph invariants are re-checked. Streams are first ordered
// so that every parent precedes its children regardless of the document's
// own order: UpdateStream permits re-parenting to any existing stream
// without reordering m.order, so a document produced by ToDocument can list
// a child before the parent it was just re-pointed at; AddStream rejects a
// parent that hasn't been inserted yet, so insertion order must be
// dependency order, not document order.
func FromDocument(doc Document) (*FinancialModel, error) {
	m := New(doc.Name, doc.Settings)
	for _, s := range sortByDependency(doc.Streams) {
		if err := m.AddStream(s); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// sortByDependency returns streams reordered so that every stream appears
// after the parent it references (when that parent is itself present in
// streams), via a depth-first visit that preserves the original relative
// order among independent streams. A dangling parent or a cycle is left
// for AddStream to reject with its usual graph error.
func sortByDependency(streams []Stream) []Stream {
	byID := make(map[string]Stream, len(streams))
	for _, s := range streams {
		byID[s.ID] = s
	}

	visited := make(map[string]bool, len(streams))
	out := make([]Stream, 0, len(streams))
	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		s, ok := byID[id]
		if !ok {
			return
		}
		if s.ParentStreamID != nil {
			if _, exists := byID[*s.ParentStreamID]; exists {
				visit(*s.ParentStreamID)
			}
		}
		out = append(out, s)
	}
	for _, s := range streams {
		visit(s.ID)
	}
	return out
}

// Marshal serializes the model to its document JSON form.
func Marshal(m *FinancialModel) ([]byte, error) {
	return json.Marshal(m.ToDocument())
}

// Unmarshal parses a document JSON payload into a model.
func Unmarshal(data []byte) (*FinancialModel, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return FromDocument(doc)
}
