// Package tools is the tool-invocation boundary. Every outcome, including
// storage failures and unknown tool names, comes back as text.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"electricity-price/internal/models"
	"electricity-price/internal/normalize"
	"electricity-price/internal/presenter"
	"electricity-price/internal/query"

	"go.uber.org/zap"
)

const (
	ToolQueryPrices = "query_electricity_prices"
	ToolListRegions = "list_available_regions"
)

// Fetcher is the record store as seen by the boundary.
type Fetcher interface {
	Fetch(ctx context.Context, preds query.PredicateSet) ([]models.ElectricityPrice, error)
}

// ReplyKind says which kind of text a Reply carries.
type ReplyKind int

const (
	ReplyRecords ReplyKind = iota
	ReplyEmpty
	ReplyHint
	ReplyFailure
	ReplyUnknownTool
	ReplyRegions
)

type Reply struct {
	Kind ReplyKind
	Text string
}

// IsError is true only for collaborator failures, the retryable kind.
func (r Reply) IsError() bool {
	return r.Kind == ReplyFailure
}

// Definition describes a tool for catalogue listings.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

var definitions = []Definition{
	{
		Name: ToolQueryPrices,
		Description: "查询电价数据。当用户询问某个地区或某个时间段的电价信息时使用此工具。" +
			"支持按地区名称（全称、简称或俗称均可，例如：深圳、粤、魔都）和日期（2024年12月、2024-12、2024/12）查询，" +
			"至少需要提供地区或日期之一。返回的数据包括：峰谷电价、电压等级、用电类型等信息。",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "region_name": {"type": "string", "description": "地区名称，例如：北京、上海、深圳、粤"},
    "price_date": {"type": "string", "description": "价格月份，例如：2024年12月、2024-12、2024/12"},
    "electricity_type1": {"type": "string", "description": "用电类型1描述，例如：大工业用电"},
    "electricity_type2": {"type": "string", "description": "用电类型2描述，例如：两部制"}
  }
}`),
	},
	{
		Name:        ToolListRegions,
		Description: "列出所有可识别的地区名称（别名、简称）及其对应的标准地区名称。",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	},
}

type Service struct {
	aliases *normalize.AliasTable
	planner *query.Planner
	store   Fetcher
	logger  *zap.Logger
}

func NewService(aliases *normalize.AliasTable, store Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		aliases: aliases,
		planner: query.NewPlanner(normalize.NewRegionResolver(aliases, logger)),
		store:   store,
		logger:  logger,
	}
}

// Definitions returns the tool catalogue.
func (s *Service) Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Call dispatches by tool name.
func (s *Service) Call(ctx context.Context, name string, args map[string]any) Reply {
	s.logger.Info("Calling tool", zap.String("tool", name), zap.Any("arguments", args))

	switch name {
	case ToolQueryPrices:
		return s.QueryPrices(ctx, RequestFromArgs(args))
	case ToolListRegions:
		return s.ListRegions()
	default:
		s.logger.Warn("Unknown tool", zap.String("tool", name))
		return Reply{Kind: ReplyUnknownTool, Text: fmt.Sprintf("未知的工具: %s", name)}
	}
}

// Lookup plans req and, when no hint is produced, fetches the rows. A hint
// means no fetch was issued.
func (s *Service) Lookup(ctx context.Context, req query.Request) ([]models.ElectricityPrice, string, error) {
	plan := s.planner.Plan(req)
	if plan.HasHint() {
		return nil, plan.Hint, nil
	}

	records, err := s.store.Fetch(ctx, plan.Predicates)
	if err != nil {
		return nil, "", err
	}
	return records, "", nil
}

func (s *Service) QueryPrices(ctx context.Context, req query.Request) Reply {
	records, hint, err := s.Lookup(ctx, req)
	switch {
	case err != nil:
		s.logger.Error("Error querying electricity prices", zap.Error(err))
		return Reply{Kind: ReplyFailure, Text: fmt.Sprintf("查询出错: %v", err)}
	case hint != "":
		return Reply{Kind: ReplyHint, Text: hint}
	case len(records) == 0:
		return Reply{Kind: ReplyEmpty, Text: presenter.EmptyMessage}
	default:
		return Reply{Kind: ReplyRecords, Text: presenter.Render(records)}
	}
}

func (s *Service) ListRegions() Reply {
	return Reply{Kind: ReplyRegions, Text: presenter.RenderAliases(s.aliases.Entries())}
}

// RequestFromArgs reads the query arguments. Missing or null values are
// treated as not supplied; non-string scalars are formatted as text.
func RequestFromArgs(args map[string]any) query.Request {
	return query.Request{
		RegionName:       stringArg(args, "region_name"),
		PriceDate:        stringArg(args, "price_date"),
		ElectricityType1: stringArg(args, "electricity_type1"),
		ElectricityType2: stringArg(args, "electricity_type2"),
	}
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
