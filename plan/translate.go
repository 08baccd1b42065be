package plan

import (
	"fmt"
)

/*
Translation walks a relation tree from the root down and builds the mohair plan
bottom-up. Leaves become single-operator pipelines. Pipelinable unary
operators (projections, filters, limits) extend the pipeline beneath them.
Everything else starts a break over its inputs.
*/

////////////////////////////////////////////////////////////////////////////////

// maxDepth bounds the height of relation trees accepted for translation.
const maxDepth = 512

// QueryPlan associates a submitted plan message with its translation. Hash
// is the content hash of the message and determines the plan's key.
// Fingerprint is the structural hash of Root.
type QueryPlan struct {
	Message     []byte
	Document    *Document
	Root        Plan
	Names       []string
	Hash        uint64
	Fingerprint uint64
}

// Key returns the storage key for the plan.
func (q *QueryPlan) Key() string {
	return FormatKey(q.Hash)
}

// FingerprintKey returns the structural fingerprint in key form.
func (q *QueryPlan) FingerprintKey() string {
	return FormatKey(q.Fingerprint)
}

func (q *QueryPlan) String() string {
	return Format(q.Root)
}

// Translate decodes a plan message and translates its root relation into a
// mohair plan.
func Translate(msg []byte) (*QueryPlan, error) {
	doc, err := ParseDocument(msg)
	if err != nil {
		return nil, err
	}
	root, err := TranslateDocument(doc)
	if err != nil {
		return nil, err
	}
	hash, err := Hash(msg)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, rel := range doc.Relations {
		if rel.Root != nil {
			names = rel.Root.Names
		}
	}
	return &QueryPlan{
		Message:     msg,
		Document:    doc,
		Root:        root,
		Names:       names,
		Hash:        hash,
		Fingerprint: Fingerprint(root),
	}, nil
}

// TranslateDocument translates the single root relation of doc.
func TranslateDocument(doc *Document) (Plan, error) {
	var root *RelRoot
	count := 0
	for _, rel := range doc.Relations {
		if rel.Root != nil {
			root = rel.Root
			count++
		}
	}
	switch {
	case count == 0:
		return nil, MissingRootError{}
	case count > 1:
		return nil, MultipleRootsError{Count: count}
	}
	if root.Input == nil {
		return nil, MissingInputError{Kind: "root", Field: "input"}
	}
	return translate(root.Input, 0)
}

// TranslateRel translates a single relation tree.
func TranslateRel(rel *Rel) (Plan, error) {
	if rel == nil {
		return nil, MissingInputError{Kind: "root", Field: "input"}
	}
	return translate(rel, 0)
}

func translateInput(kind, field string, rel *Rel, depth int) (Plan, error) {
	if rel == nil {
		return nil, MissingInputError{Kind: kind, Field: field}
	}
	return translate(rel, depth+1)
}

func translate(rel *Rel, depth int) (Plan, error) {
	if depth > maxDepth {
		return nil, InvalidRelationError{
			Kind:   rel.Kind,
			Reason: fmt.Sprintf("plan exceeds maximum depth of %d", maxDepth),
		}
	}
	if rel.empty() {
		return nil, InvalidRelationError{Kind: rel.Kind, Reason: "missing relation body"}
	}
	switch rel.Kind {
	case KindRead:
		if rel.Read.ReadType() == "" {
			return nil, InvalidRelationError{Kind: KindRead, Reason: "no read type set"}
		}
		op := NewRead(rel.Read)
		return &Pipeline{Ops: []Op{op}, Name: op.Name}, nil
	case KindSky:
		if rel.Sky.Domain == "" || rel.Sky.Partition == "" {
			return nil, InvalidRelationError{Kind: KindSky, Reason: "domain and partition are required"}
		}
		op := NewSkyPartition(rel.Sky)
		return &Pipeline{Ops: []Op{op}, Name: op.Name}, nil
	case KindProject:
		return pipelined(KindProject, rel.Project.Input, Projection{Rel: rel.Project}, depth)
	case KindFilter:
		return pipelined(KindFilter, rel.Filter.Input, Selection{Rel: rel.Filter}, depth)
	case KindFetch:
		if rel.Fetch.Offset < 0 || rel.Fetch.Count < 0 {
			return nil, InvalidRelationError{Kind: KindFetch, Reason: "offset and count must be non-negative"}
		}
		return pipelined(KindFetch, rel.Fetch.Input, Limit{Rel: rel.Fetch}, depth)
	case KindAggregate:
		return unaryBreak(KindAggregate, rel.Aggregate.Input, Aggregation{Rel: rel.Aggregate}, depth)
	case KindSort:
		return unaryBreak(KindSort, rel.Sort.Input, Sort{Rel: rel.Sort}, depth)
	case KindJoin:
		left, right, err := translateSides(KindJoin, rel.Join.Left, rel.Join.Right, depth)
		if err != nil {
			return nil, err
		}
		brk := NewBreak(nil, left, right)
		brk.Op = Join{Rel: rel.Join, Name: brk.Name}
		return brk, nil
	case KindHashJoin:
		left, right, err := translateSides(KindHashJoin, rel.HashJoin.Left, rel.HashJoin.Right, depth)
		if err != nil {
			return nil, err
		}
		return NewBreak(HashJoin{Rel: rel.HashJoin}, left, right), nil
	case KindMergeJoin:
		left, right, err := translateSides(KindMergeJoin, rel.MergeJoin.Left, rel.MergeJoin.Right, depth)
		if err != nil {
			return nil, err
		}
		return NewBreak(MergeJoin{Rel: rel.MergeJoin}, left, right), nil
	case KindSet:
		if len(rel.Set.Inputs) == 0 {
			return nil, MissingInputError{Kind: KindSet, Field: "inputs"}
		}
		subplans := make([]Plan, 0, len(rel.Set.Inputs))
		for i, input := range rel.Set.Inputs {
			sub, err := translateInput(KindSet, fmt.Sprintf("inputs[%d]", i), input, depth)
			if err != nil {
				return nil, err
			}
			subplans = append(subplans, sub)
		}
		return NewBreak(SetOp{Rel: rel.Set}, subplans...), nil
	default:
		return nil, UnsupportedRelationError{Kind: rel.Kind}
	}
}

// pipelined extends the input's pipeline with op, or starts a new pipeline
// over the input if it is a break.
func pipelined(kind string, input *Rel, op Op, depth int) (Plan, error) {
	sub, err := translateInput(kind, "input", input, depth)
	if err != nil {
		return nil, err
	}
	if pipeline, ok := sub.(*Pipeline); ok {
		return pipeline.AddOp(op), nil
	}
	return &Pipeline{Ops: []Op{op}, Name: sub.PlanName(), Subplans: []Plan{sub}}, nil
}

func unaryBreak(kind string, input *Rel, op Op, depth int) (Plan, error) {
	sub, err := translateInput(kind, "input", input, depth)
	if err != nil {
		return nil, err
	}
	return NewBreak(op, sub), nil
}

func translateSides(kind string, left, right *Rel, depth int) (Plan, Plan, error) {
	l, err := translateInput(kind, "left", left, depth)
	if err != nil {
		return nil, nil, err
	}
	r, err := translateInput(kind, "right", right, depth)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}
