// Package presenter renders lookup results as text replies.
package presenter

import (
	"fmt"
	"sort"
	"strings"

	"electricity-price/internal/models"
	"electricity-price/internal/normalize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

const (
	EmptyMessage = "未找到符合条件的电价数据"

	Footnote = "注：电价单位为 元/千瓦时；“-”表示该时段无对应电价；" +
		"峰、谷等时段的具体划分以当地电网公布的分时电价政策为准，以上数据仅供参考。"

	// Placeholder stands in for a missing price.
	Placeholder = "-"
)

// Headers are the table columns, prices in peak, sharp-peak, valley,
// normal, deep-valley order.
var Headers = []string{"地区", "日期", "用电类型", "电压等级", "峰时电价", "尖峰电价", "谷时电价", "平时电价", "深谷电价"}

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// FormatPrice renders a price with exactly four decimals, or Placeholder.
func FormatPrice(p *decimal.Decimal) string {
	if p == nil {
		return Placeholder
	}
	return p.StringFixed(4)
}

// Row returns the table cells for one record.
func Row(r models.ElectricityPrice) []string {
	return []string{
		r.RegionName,
		r.PriceDate,
		r.TypeDescription(),
		r.VoltageLevelDesc,
		FormatPrice(r.PeakPrice),
		FormatPrice(r.SharpPeakPrice),
		FormatPrice(r.ValleyPrice),
		FormatPrice(r.NormalPrice),
		FormatPrice(r.DeepValleyPrice),
	}
}

// Render keeps input order. The footnote follows every non-empty result.
func Render(records []models.ElectricityPrice) string {
	if len(records) == 0 {
		return EmptyMessage
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = Row(r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "查询结果：共 %d 条\n\n", len(records))
	b.WriteString(markdownTable(Headers, rows))
	b.WriteString("\n\n")
	b.WriteString(Footnote)
	return b.String()
}

// RenderAliases lists every alias with its canonical region, sorted by alias.
func RenderAliases(entries []normalize.AliasEntry) string {
	sorted := append([]normalize.AliasEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Alias < sorted[j].Alias
	})

	rows := make([][]string, len(sorted))
	for i, e := range sorted {
		rows[i] = []string{e.Alias, e.Region}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "可识别的地区名称（共 %d 个，也可直接使用标准名称）：\n\n", len(sorted))
	b.WriteString(markdownTable([]string{"名称", "标准地区"}, rows))
	return b.String()
}

func markdownTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}
