package converters

import (
	"fmt"
	"math"
	"time"
)

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// GroupStat is one aggregated group of customers (by contract, cohort,
// risk segment, churn reason, ...).
type GroupStat struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Value float64 `json:"value"` // churn rate, share or average, per chart
}

// ChartPoint 图表数据点
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSeries 图表序列
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// ChartConfig is a renderer-agnostic chart description. The dashboard that
// consumes the report decides how to draw it.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors"`
}

// ReportPayload 报告结构
type ReportPayload struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Customers   int           `json:"customers"`
	ChurnRate   float64       `json:"churnRate"`
	Charts      []ChartConfig `json:"charts"`
	Narrative   []string      `json:"narrative"`
}

// ReportConverter 定义报告转换器接口
type ReportConverter interface {
	Convert(customers int, churnRate float64, charts []ChartConfig, narrative []string) (*ReportPayload, error)
}

// JSONConverter 实现报告转换器
type JSONConverter struct{}

func NewJSONConverter() *JSONConverter {
	return &JSONConverter{}
}

func (c *JSONConverter) Convert(customers int, churnRate float64, charts []ChartConfig, narrative []string) (*ReportPayload, error) {
	if customers == 0 {
		return nil, fmt.Errorf("no customers to report on")
	}
	return &ReportPayload{
		GeneratedAt: time.Now(),
		Customers:   customers,
		ChurnRate:   RoundTo2(churnRate),
		Charts:      charts,
		Narrative:   narrative,
	}, nil
}

// BuildChart produces a single-series ChartConfig from aggregated groups.
func BuildChart(chartType, title, xAxis, yAxis string, groups []GroupStat) ChartConfig {
	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{Label: g.Label, Value: RoundTo2(g.Value)})
	}

	return ChartConfig{
		ChartType:  chartType,
		Title:      title,
		XAxis:      xAxis,
		YAxis:      yAxis,
		ShowLegend: chartType == "pie",
		Series:     []ChartSeries{{Name: title, Data: points}},
		Colors:     assignColors(len(points)),
	}
}

func assignColors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

// RoundTo2 rounds to two decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
