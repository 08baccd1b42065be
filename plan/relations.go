package plan

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

/*
The relations in this file describe the wire form of a plan submitted to
mohair. A document holds a list of plan relations, exactly one of which must be
a root. Each relation is an object with a single key naming its type:

	{"relations": [{"root": {"input": {"project": {"input": {"read": ...}}}}}]}

Expression payloads (filter conditions, measures, sort keys) are carried as
raw JSON. Planning only depends on the shape of the relation tree.
*/

////////////////////////////////////////////////////////////////////////////////

// Relation kinds.
const (
	KindRead            = "read"
	KindFilter          = "filter"
	KindFetch           = "fetch"
	KindAggregate       = "aggregate"
	KindSort            = "sort"
	KindProject         = "project"
	KindJoin            = "join"
	KindHashJoin        = "hash_join"
	KindMergeJoin       = "merge_join"
	KindSet             = "set"
	KindSky             = "sky"
	KindExtensionLeaf   = "extension_leaf"
	KindExtensionSingle = "extension_single"
	KindExtensionMulti  = "extension_multi"
)

// Document is a complete plan message.
type Document struct {
	Relations []PlanRel `json:"relations"`
}

// PlanRel is a top-level relation, either the plan's root or a detached
// subtree.
type PlanRel struct {
	Root *RelRoot `json:"root,omitempty"`
	Rel  *Rel     `json:"rel,omitempty"`
}

// RelRoot is the root of a plan, naming its output columns.
type RelRoot struct {
	Input *Rel     `json:"input"`
	Names []string `json:"names,omitempty"`
}

// Rel is a single relation. Exactly one of the typed fields is set, matching
// Kind. Relations of unrecognized kinds keep their raw body.
type Rel struct {
	Kind string `json:"-"`

	Read      *ReadRel      `json:"-"`
	Filter    *FilterRel    `json:"-"`
	Fetch     *FetchRel     `json:"-"`
	Aggregate *AggregateRel `json:"-"`
	Sort      *SortRel      `json:"-"`
	Project   *ProjectRel   `json:"-"`
	Join      *JoinRel      `json:"-"`
	HashJoin  *HashJoinRel  `json:"-"`
	MergeJoin *MergeJoinRel `json:"-"`
	Set       *SetRel       `json:"-"`
	Sky       *SkyRel       `json:"-"`

	Raw json.RawMessage `json:"-"`
}

// NamedTable identifies a table by a multi-part name.
type NamedTable struct {
	Names []string `json:"names"`
}

// ReadRel reads from a data source. Exactly one source is expected.
type ReadRel struct {
	NamedTable     *NamedTable     `json:"named_table,omitempty"`
	VirtualTable   json.RawMessage `json:"virtual_table,omitempty"`
	LocalFiles     json.RawMessage `json:"local_files,omitempty"`
	ExtensionTable json.RawMessage `json:"extension_table,omitempty"`
	Filter         json.RawMessage `json:"filter,omitempty"`
}

// ReadType returns the name of the read's source type, or the empty string
// if none is set.
func (r *ReadRel) ReadType() string {
	switch {
	case r.NamedTable != nil:
		return "named_table"
	case len(r.VirtualTable) > 0:
		return "virtual_table"
	case len(r.LocalFiles) > 0:
		return "local_files"
	case len(r.ExtensionTable) > 0:
		return "extension_table"
	default:
		return ""
	}
}

type FilterRel struct {
	Input     *Rel            `json:"input"`
	Condition json.RawMessage `json:"condition,omitempty"`
}

type FetchRel struct {
	Input  *Rel  `json:"input"`
	Offset int64 `json:"offset,omitempty"`
	Count  int64 `json:"count,omitempty"`
}

type AggregateRel struct {
	Input     *Rel            `json:"input"`
	Groupings json.RawMessage `json:"groupings,omitempty"`
	Measures  json.RawMessage `json:"measures,omitempty"`
}

type SortRel struct {
	Input *Rel            `json:"input"`
	Sorts json.RawMessage `json:"sorts,omitempty"`
}

type ProjectRel struct {
	Input       *Rel            `json:"input"`
	Expressions json.RawMessage `json:"expressions,omitempty"`
}

type JoinRel struct {
	Left       *Rel            `json:"left"`
	Right      *Rel            `json:"right"`
	Type       string          `json:"type,omitempty"`
	Expression json.RawMessage `json:"expression,omitempty"`
}

type HashJoinRel struct {
	Left  *Rel   `json:"left"`
	Right *Rel   `json:"right"`
	Type  string `json:"type,omitempty"`
}

type MergeJoinRel struct {
	Left  *Rel   `json:"left"`
	Right *Rel   `json:"right"`
	Type  string `json:"type,omitempty"`
}

type SetRel struct {
	Inputs []*Rel `json:"inputs"`
	Op     string `json:"op,omitempty"`
}

// SkyRel reads a single partition of a skytether domain.
type SkyRel struct {
	Domain    string `json:"domain"`
	Partition string `json:"partition"`
}

// body returns a pointer to the typed field for kind, allocating it. It
// returns nil for unrecognized kinds.
func (r *Rel) body(kind string) any {
	switch kind {
	case KindRead:
		r.Read = &ReadRel{}
		return r.Read
	case KindFilter:
		r.Filter = &FilterRel{}
		return r.Filter
	case KindFetch:
		r.Fetch = &FetchRel{}
		return r.Fetch
	case KindAggregate:
		r.Aggregate = &AggregateRel{}
		return r.Aggregate
	case KindSort:
		r.Sort = &SortRel{}
		return r.Sort
	case KindProject:
		r.Project = &ProjectRel{}
		return r.Project
	case KindJoin:
		r.Join = &JoinRel{}
		return r.Join
	case KindHashJoin:
		r.HashJoin = &HashJoinRel{}
		return r.HashJoin
	case KindMergeJoin:
		r.MergeJoin = &MergeJoinRel{}
		return r.MergeJoin
	case KindSet:
		r.Set = &SetRel{}
		return r.Set
	case KindSky:
		r.Sky = &SkyRel{}
		return r.Sky
	default:
		return nil
	}
}

// value returns the typed field matching r.Kind.
func (r *Rel) value() any {
	switch r.Kind {
	case KindRead:
		return r.Read
	case KindFilter:
		return r.Filter
	case KindFetch:
		return r.Fetch
	case KindAggregate:
		return r.Aggregate
	case KindSort:
		return r.Sort
	case KindProject:
		return r.Project
	case KindJoin:
		return r.Join
	case KindHashJoin:
		return r.HashJoin
	case KindMergeJoin:
		return r.MergeJoin
	case KindSet:
		return r.Set
	case KindSky:
		return r.Sky
	default:
		return nil
	}
}

// empty reports whether a recognized kind is missing its typed body.
func (r *Rel) empty() bool {
	switch r.Kind {
	case KindRead:
		return r.Read == nil
	case KindFilter:
		return r.Filter == nil
	case KindFetch:
		return r.Fetch == nil
	case KindAggregate:
		return r.Aggregate == nil
	case KindSort:
		return r.Sort == nil
	case KindProject:
		return r.Project == nil
	case KindJoin:
		return r.Join == nil
	case KindHashJoin:
		return r.HashJoin == nil
	case KindMergeJoin:
		return r.MergeJoin == nil
	case KindSet:
		return r.Set == nil
	case KindSky:
		return r.Sky == nil
	default:
		return false
	}
}

// UnmarshalJSON decodes a single-key relation object.
func (r *Rel) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("relation must be an object: %w", err)
	}
	if len(fields) != 1 {
		return fmt.Errorf("relation must have exactly one type, found %d", len(fields))
	}
	for kind, raw := range fields {
		*r = Rel{Kind: kind}
		target := r.body(kind)
		if target == nil {
			r.Raw = raw
			return nil
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("failed to decode %s relation: %w", kind, err)
		}
	}
	return nil
}

// MarshalJSON encodes the relation as a single-key object.
func (r Rel) MarshalJSON() ([]byte, error) {
	if r.Kind == "" {
		return nil, fmt.Errorf("relation has no kind")
	}
	var body any = r.value()
	if body == nil {
		if len(r.Raw) == 0 {
			return json.Marshal(map[string]json.RawMessage{r.Kind: json.RawMessage("{}")})
		}
		body = r.Raw
	}
	return json.Marshal(map[string]any{r.Kind: body})
}

// maxNesting bounds the JSON nesting of a plan message. Each relation level
// takes two levels of nesting, and expressions need headroom of their own.
const maxNesting = 4 * maxDepth

// checkNesting returns an error if msg nests objects and arrays deeper than
// limit. It makes a single pass and does not validate the message.
func checkNesting(msg []byte, limit int) error {
	depth := 0
	inString := false
	escaped := false
	for _, c := range msg {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > limit {
				return fmt.Errorf("message nesting exceeds %d levels", limit)
			}
		case '}', ']':
			depth--
		}
	}
	return nil
}

// ParseDocument decodes a plan message.
func ParseDocument(msg []byte) (*Document, error) {
	if err := checkNesting(msg, maxNesting); err != nil {
		return nil, MalformedPlanError{Err: err}
	}
	doc := &Document{}
	if err := json.Unmarshal(msg, doc); err != nil {
		return nil, MalformedPlanError{Err: err}
	}
	return doc, nil
}
