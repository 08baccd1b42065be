package plan

import (
	"fmt"
	"strings"
)

/*
Operators wrap the relation they were translated from. A mohair plan only
keeps references into the submitted relation tree, so the full relation
(expressions included) stays reachable from every operator.
*/

////////////////////////////////////////////////////////////////////////////////

// Op is a relational operator in a mohair plan.
type Op interface {
	fmt.Stringer
	// Kind returns the relation kind the operator was translated from.
	Kind() string
}

// Projection is a unary projection.
type Projection struct {
	Rel *ProjectRel
}

func (Projection) Kind() string   { return KindProject }
func (Projection) String() string { return "Projection()" }

// Selection is a unary filter.
type Selection struct {
	Rel *FilterRel
}

func (Selection) Kind() string   { return KindFilter }
func (Selection) String() string { return "Selection()" }

// Aggregation groups and aggregates its input.
type Aggregation struct {
	Rel *AggregateRel
}

func (Aggregation) Kind() string   { return KindAggregate }
func (Aggregation) String() string { return "Aggregation()" }

// Limit restricts the number of rows passed through.
type Limit struct {
	Rel *FetchRel
}

func (Limit) Kind() string   { return KindFetch }
func (Limit) String() string { return "Limit()" }

// Sort orders its input.
type Sort struct {
	Rel *SortRel
}

func (Sort) Kind() string   { return KindSort }
func (Sort) String() string { return "Sort()" }

// Read is a leaf reading a data source.
type Read struct {
	Rel  *ReadRel
	Name string
}

// NewRead returns a read operator named after its table, or after its read
// type when the source is not a named table.
func NewRead(rel *ReadRel) Read {
	name := rel.ReadType()
	if rel.NamedTable != nil {
		name = strings.Join(rel.NamedTable.Names, "/")
	}
	return Read{Rel: rel, Name: name}
}

func (Read) Kind() string { return KindRead }
func (r Read) String() string {
	return fmt.Sprintf("Read(%s)", r.Rel.ReadType())
}

// SkyPartition is a leaf reading one partition of a skytether domain.
type SkyPartition struct {
	Rel  *SkyRel
	Name string
}

// NewSkyPartition returns a partition operator named domain/partition.
func NewSkyPartition(rel *SkyRel) SkyPartition {
	return SkyPartition{Rel: rel, Name: rel.Domain + "/" + rel.Partition}
}

func (SkyPartition) Kind() string { return KindSky }
func (s SkyPartition) String() string {
	return fmt.Sprintf("SkyPartition(%s)", s.Name)
}

// Join is a logical join of two inputs.
type Join struct {
	Rel  *JoinRel
	Name string
}

func (Join) Kind() string { return KindJoin }
func (j Join) String() string {
	return fmt.Sprintf("Join(%s)", j.Name)
}

// HashJoin is a physical hash join.
type HashJoin struct {
	Rel *HashJoinRel
}

func (HashJoin) Kind() string   { return KindHashJoin }
func (HashJoin) String() string { return "HashJoin()" }

// MergeJoin is a physical merge join.
type MergeJoin struct {
	Rel *MergeJoinRel
}

func (MergeJoin) Kind() string   { return KindMergeJoin }
func (MergeJoin) String() string { return "MergeJoin()" }

// SetOp is an n-ary set operation.
type SetOp struct {
	Rel *SetRel
}

func (SetOp) Kind() string { return KindSet }
func (s SetOp) String() string {
	return fmt.Sprintf("SetOp(%s)", s.Rel.Op)
}
