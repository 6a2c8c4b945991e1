// Package query turns raw tool arguments into storage predicates, or into a
// hint explaining why no lookup should run.
package query

import (
	"fmt"
	"strings"

	"electricity-price/internal/normalize"
)

// Field is a storage column usable in an equality predicate.
type Field string

const (
	FieldRegion Field = "region_name"
	FieldDate   Field = "price_date"
	FieldType1  Field = "electricity_type1_desc"
	FieldType2  Field = "electricity_type2_desc"
)

// Predicate is one equality filter.
type Predicate struct {
	Field Field
	Value string
}

// PredicateSet is AND-combined, in a fixed field order.
type PredicateSet []Predicate

// Get returns the value filtered on f, if any.
func (ps PredicateSet) Get(f Field) (string, bool) {
	for _, p := range ps {
		if p.Field == f {
			return p.Value, true
		}
	}
	return "", false
}

// Request carries the raw arguments; an empty string means not supplied.
type Request struct {
	RegionName       string
	PriceDate        string
	ElectricityType1 string
	ElectricityType2 string
}

// Plan is either a predicate set to look up, or a hint to reply with.
type Plan struct {
	Predicates PredicateSet
	Hint       string
}

func (p Plan) HasHint() bool {
	return p.Hint != ""
}

const HintNoFilter = "请至少提供一个查询条件：地区名称（region_name）或日期（price_date），例如：深圳 2024年12月。"

// RegionNotFoundHint is the reply for a region that matched nothing.
func RegionNotFoundHint(region string, suggestions []string) string {
	if len(suggestions) > 0 {
		return fmt.Sprintf("未找到地区「%s」，您是不是要找：%s？", region, strings.Join(suggestions, "、"))
	}
	return fmt.Sprintf("未找到地区「%s」，请检查地区名称是否正确。", region)
}

// InvalidDateHint is the reply for an unparseable or out-of-range month.
func InvalidDateHint(date string) string {
	return fmt.Sprintf("日期「%s」格式无法识别，支持的格式：%s（月份须在1-12之间）。",
		date, strings.Join(normalize.DateFormats, "、"))
}

type Planner struct {
	regions *normalize.RegionResolver
}

func NewPlanner(regions *normalize.RegionResolver) *Planner {
	return &Planner{regions: regions}
}

// Plan never yields both predicates and a hint. Electricity type filters
// narrow a lookup but do not count as a filter on their own.
func (p *Planner) Plan(req Request) Plan {
	region := p.regions.Resolve(req.RegionName)
	date := normalize.NormalizeDate(req.PriceDate)

	if region.Status == normalize.Absent && date.Status == normalize.Absent {
		return Plan{Hint: HintNoFilter}
	}

	var hints []string
	if region.Status == normalize.Unresolved {
		hints = append(hints, RegionNotFoundHint(strings.TrimSpace(req.RegionName), region.Suggestions))
	}
	if date.Status == normalize.Unresolved {
		hints = append(hints, InvalidDateHint(strings.TrimSpace(req.PriceDate)))
	}
	if len(hints) > 0 {
		return Plan{Hint: strings.Join(hints, "\n")}
	}

	var preds PredicateSet
	if region.Status == normalize.Resolved {
		preds = append(preds, Predicate{Field: FieldRegion, Value: region.Key})
	}
	if date.Status == normalize.Resolved {
		preds = append(preds, Predicate{Field: FieldDate, Value: date.Key})
	}
	if v := strings.TrimSpace(req.ElectricityType1); v != "" {
		preds = append(preds, Predicate{Field: FieldType1, Value: v})
	}
	if v := strings.TrimSpace(req.ElectricityType2); v != "" {
		preds = append(preds, Predicate{Field: FieldType2, Value: v})
	}
	return Plan{Predicates: preds}
}
