package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chronotext/chronotext/corpus"
)

// UnmarshalQuery decodes the YAML form of a parsed query. This is a
// thin deserialization of the query model, not a query language: the
// document mirrors the Query struct, with one condition variant per
// mapping node.
func UnmarshalQuery(data []byte) (*Query, error) {
	var doc queryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	return doc.toQuery()
}

type queryDoc struct {
	Corpus      string        `yaml:"corpus"`
	Granularity string        `yaml:"granularity"`
	Window      int32         `yaml:"window"`
	Select      []string      `yaml:"select"`
	OrderBy     string        `yaml:"order_by"`
	Descending  bool          `yaml:"descending"`
	Limit       int           `yaml:"limit"`
	Where       *conditionDoc `yaml:"where"`
	Join        *joinDoc      `yaml:"join"`
	Subqueries  []subqueryDoc `yaml:"subqueries"`
}

type subqueryDoc struct {
	Alias string   `yaml:"alias"`
	Query queryDoc `yaml:"query"`
}

type joinDoc struct {
	Type       string `yaml:"type"`
	Left       string `yaml:"left"`
	Right      string `yaml:"right"`
	Predicate  string `yaml:"predicate"`
	WithinDays int    `yaml:"within_days"`
}

func (d *queryDoc) toQuery() (*Query, error) {
	q := &Query{
		Corpus:          d.Corpus,
		Select:          d.Select,
		OrderBy:         d.OrderBy,
		OrderDescending: d.Descending,
		Limit:           d.Limit,
		GranularitySize: d.Window,
	}

	switch strings.ToLower(strings.TrimSpace(d.Granularity)) {
	case "", "document":
		q.Granularity = corpus.GranularityDocument
	case "sentence":
		q.Granularity = corpus.GranularitySentence
	default:
		return nil, fmt.Errorf("unknown granularity %q", d.Granularity)
	}

	if d.Where != nil {
		root, err := d.Where.toCondition()
		if err != nil {
			return nil, err
		}
		q.Root = root
	}

	if d.Join != nil {
		join, err := d.Join.toJoin()
		if err != nil {
			return nil, err
		}
		q.Join = join
	}

	for _, sub := range d.Subqueries {
		if sub.Alias == "" {
			return nil, fmt.Errorf("subquery without an alias")
		}
		sq, err := sub.Query.toQuery()
		if err != nil {
			return nil, fmt.Errorf("subquery %q: %w", sub.Alias, err)
		}
		q.Subqueries = append(q.Subqueries, SubquerySpec{Alias: sub.Alias, Query: sq})
	}
	return q, nil
}

func (d *joinDoc) toJoin() (*JoinCondition, error) {
	join := &JoinCondition{ProximityDays: d.WithinDays}

	switch strings.ToUpper(strings.TrimSpace(d.Type)) {
	case "", "INNER":
		join.Type = JoinInner
	case "LEFT":
		join.Type = JoinLeft
	case "RIGHT":
		join.Type = JoinRight
	case "FULL":
		join.Type = JoinFull
	default:
		return nil, fmt.Errorf("unknown join type %q", d.Type)
	}

	var err error
	if join.Left, err = ParseColumnRef(d.Left); err != nil {
		return nil, err
	}
	if join.Right, err = ParseColumnRef(d.Right); err != nil {
		return nil, err
	}
	if join.Predicate, err = ParseTemporalPredicate(d.Predicate); err != nil {
		return nil, err
	}
	return join, nil
}

// conditionDoc is a mapping with exactly one variant key.
type conditionDoc struct {
	node *yaml.Node
}

func (c *conditionDoc) UnmarshalYAML(node *yaml.Node) error {
	c.node = node
	return nil
}

func (c *conditionDoc) toCondition() (Condition, error) {
	node := c.node
	if node == nil || node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("condition must be a mapping with one variant key")
	}
	key := node.Content[0].Value
	body := node.Content[1]

	switch key {
	case "and", "or":
		var children []conditionDoc
		if err := body.Decode(&children); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		logical := &Logical{Op: OpAnd}
		if key == "or" {
			logical.Op = OpOr
		}
		for _, child := range children {
			cond, err := child.toCondition()
			if err != nil {
				return nil, err
			}
			logical.Children = append(logical.Children, cond)
		}
		return logical, nil

	case "not":
		var child conditionDoc
		if err := body.Decode(&child); err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		cond, err := child.toCondition()
		if err != nil {
			return nil, err
		}
		return &Not{Child: cond}, nil

	case "contains":
		var spec struct {
			Terms []string `yaml:"terms"`
			As    string   `yaml:"as"`
		}
		if err := body.Decode(&spec); err != nil {
			return nil, fmt.Errorf("contains: %w", err)
		}
		return &Contains{Terms: spec.Terms, Variable: spec.As}, nil

	case "ner":
		var spec struct {
			Type   string `yaml:"type"`
			Target string `yaml:"target"`
			As     string `yaml:"as"`
		}
		if err := body.Decode(&spec); err != nil {
			return nil, fmt.Errorf("ner: %w", err)
		}
		return &Ner{EntityType: spec.Type, Target: spec.Target, Variable: spec.As}, nil

	case "pos":
		var spec struct {
			Tag  string `yaml:"tag"`
			Term string `yaml:"term"`
			As   string `yaml:"as"`
		}
		if err := body.Decode(&spec); err != nil {
			return nil, fmt.Errorf("pos: %w", err)
		}
		return &Pos{Tag: spec.Tag, Term: spec.Term, Variable: spec.As}, nil

	case "dependency":
		var spec struct {
			Governor  string `yaml:"governor"`
			Relation  string `yaml:"relation"`
			Dependent string `yaml:"dependent"`
			As        string `yaml:"as"`
		}
		if err := body.Decode(&spec); err != nil {
			return nil, fmt.Errorf("dependency: %w", err)
		}
		return &Dependency{
			Governor:  spec.Governor,
			Relation:  spec.Relation,
			Dependent: spec.Dependent,
			Variable:  spec.As,
		}, nil

	case "temporal":
		var spec struct {
			Predicate  string `yaml:"predicate"`
			Start      string `yaml:"start"`
			End        string `yaml:"end"`
			WithinDays int    `yaml:"within_days"`
			As         string `yaml:"as"`
		}
		if err := body.Decode(&spec); err != nil {
			return nil, fmt.Errorf("temporal: %w", err)
		}
		pred, err := ParseTemporalPredicate(spec.Predicate)
		if err != nil {
			return nil, err
		}
		start, err := ParseDateBound(spec.Start, false)
		if err != nil {
			return nil, err
		}
		cond := &Temporal{
			Predicate:     pred,
			Start:         start,
			ProximityDays: spec.WithinDays,
			Variable:      spec.As,
		}
		if spec.End != "" {
			end, err := ParseDateBound(spec.End, true)
			if err != nil {
				return nil, err
			}
			cond.End = end
		}
		return cond, nil
	}
	return nil, fmt.Errorf("unknown condition variant %q", key)
}

// ParseDateBound parses a date bound. Year-only and month-only inputs
// expand to the first day of the span, or to the last day when the
// bound is an interval end.
func ParseDateBound(s string, isEnd bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range []string{"2006-01-02", DateKeyLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("2006-01", s, time.UTC); err == nil {
		if isEnd {
			return t.AddDate(0, 1, -1), nil
		}
		return t, nil
	}
	if year, err := strconv.Atoi(s); err == nil && len(s) == 4 {
		if isEnd {
			return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC), nil
		}
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
