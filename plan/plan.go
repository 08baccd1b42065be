package plan

import (
	"strings"
)

/*
A mohair plan groups relational operators into two shapes. A Pipeline is a list
of operators that can be applied, in order, to rows as they stream out of its
subplans. A Break is a single operator that must see all of its subplans'
output, or stream over a grouping of it, before producing rows: joins,
aggregations, sorts and set operations.

Decomposing a plan this way is what lets mohair push pipelines down toward the
storage that holds their sources.
*/

////////////////////////////////////////////////////////////////////////////////

// Plan is a node of a mohair plan.
type Plan interface {
	// PlanName returns the plan's name, derived from its sources.
	PlanName() string
	// Children returns the plan's subplans.
	Children() []Plan
	format(sb *strings.Builder, indent string)
}

// Pipeline is a sequence of pipelined operators over zero or more subplans.
// A pipeline without subplans starts with a leaf operator.
type Pipeline struct {
	Ops      []Op
	Name     string
	Subplans []Plan
}

// PlanName returns the name of the pipeline.
func (p *Pipeline) PlanName() string { return p.Name }

// Children returns the pipeline's subplans.
func (p *Pipeline) Children() []Plan { return p.Subplans }

// AddOp appends an operator to the pipeline.
func (p *Pipeline) AddOp(op Op) *Pipeline {
	p.Ops = append(p.Ops, op)
	return p
}

func (p *Pipeline) format(sb *strings.Builder, indent string) {
	sb.WriteString(indent + "PlanPipeline(" + p.Name + ")\n")
	sb.WriteString(indent + "[")
	for i, op := range p.Ops {
		if i > 0 {
			sb.WriteString("\n" + indent + "\t")
		}
		sb.WriteString(op.String())
	}
	sb.WriteString("]\n")
	sb.WriteString(indent + "|> subplans:")
	formatChildren(sb, p.Subplans, indent)
}

func (p *Pipeline) String() string {
	return Format(p)
}

// Break is a pipeline-breaking operator over its subplans.
type Break struct {
	Op       Op
	Name     string
	Subplans []Plan
}

// NewBreak returns a break named after its subplans, joined with ".".
func NewBreak(op Op, subplans ...Plan) *Break {
	names := make([]string, len(subplans))
	for i, sub := range subplans {
		names[i] = sub.PlanName()
	}
	return &Break{Op: op, Name: strings.Join(names, "."), Subplans: subplans}
}

// PlanName returns the name of the break.
func (b *Break) PlanName() string { return b.Name }

// Children returns the break's subplans.
func (b *Break) Children() []Plan { return b.Subplans }

func (b *Break) format(sb *strings.Builder, indent string) {
	sb.WriteString(indent + "PlanBreak(" + b.Name + ") <" + b.Op.String() + ">\n")
	sb.WriteString(indent + ">> subplans:")
	formatChildren(sb, b.Subplans, indent)
}

func (b *Break) String() string {
	return Format(b)
}

func formatChildren(sb *strings.Builder, children []Plan, indent string) {
	for _, child := range children {
		sb.WriteString("\n")
		child.format(sb, indent+"\t")
	}
}

// Format renders a plan as an indented tree.
func Format(p Plan) string {
	sb := &strings.Builder{}
	p.format(sb, "")
	return sb.String()
}

// Walk traverses a plan, calling pre before and post after visiting each
// node's children. Either function may be nil.
func Walk(p Plan, pre func(Plan), post func(Plan)) {
	if pre != nil {
		pre(p)
	}
	for _, c := range p.Children() {
		Walk(c, pre, post)
	}
	if post != nil {
		post(p)
	}
}

// Sources returns the names of the leaf operators in the plan, in traversal
// order.
func Sources(p Plan) []string {
	sources := []string{}
	Walk(p, func(n Plan) {
		pipeline, ok := n.(*Pipeline)
		if !ok {
			return
		}
		for _, op := range pipeline.Ops {
			switch op := op.(type) {
			case Read:
				sources = append(sources, op.Name)
			case SkyPartition:
				sources = append(sources, op.Name)
			}
		}
	}, nil)
	return sources
}

// Depth returns the height of the plan tree.
func Depth(p Plan) int {
	depth := 0
	for _, c := range p.Children() {
		if d := Depth(c); d > depth {
			depth = d
		}
	}
	return depth + 1
}
