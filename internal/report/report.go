package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"

	"github.com/feichai0017/churn-insight/internal/models"
	"github.com/feichai0017/churn-insight/pkg/converters"
	"github.com/feichai0017/churn-insight/pkg/logger"
	"github.com/feichai0017/churn-insight/pkg/storage"
)

// Reporter reads the gold dataset and renders the static analytical report:
// one JSON payload of chart configs and a plain-text narrative. No layout or
// styling happens here; the dashboard is an external consumer.
type Reporter struct {
	store     storage.Storage
	logger    logger.Logger
	goldKey   string
	reportDir string
	converter converters.ReportConverter
}

func NewReporter(store storage.Storage, goldKey, reportDir string, log logger.Logger) *Reporter {
	return &Reporter{
		store:     store,
		logger:    log,
		goldKey:   goldKey,
		reportDir: reportDir,
		converter: converters.NewJSONConverter(),
	}
}

// Run builds and writes the report.
func (r *Reporter) Run(ctx context.Context) error {
	rc, err := r.store.Get(ctx, r.goldKey)
	if err != nil {
		return err
	}
	defer rc.Close()

	df := dataframe.ReadCSV(rc)
	if df.Error() != nil {
		return fmt.Errorf("failed to parse gold dataset: %w", df.Error())
	}

	payload, err := r.build(df)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	jsonKey := path.Join(r.reportDir, "churn_report.json")
	if _, err := r.store.Store(ctx, bytes.NewReader(data), jsonKey); err != nil {
		return err
	}

	txtKey := path.Join(r.reportDir, "churn_report.txt")
	narrative := strings.Join(payload.Narrative, "\n") + "\n"
	if _, err := r.store.Store(ctx, strings.NewReader(narrative), txtKey); err != nil {
		return err
	}

	r.logger.Info("Report written",
		logger.String("json", jsonKey),
		logger.String("text", txtKey),
		logger.Int("charts", len(payload.Charts)),
	)
	return nil
}

func (r *Reporter) build(df dataframe.DataFrame) (*converters.ReportPayload, error) {
	n := df.Nrow()
	churn := df.Col("churn").Records()

	churned := 0
	for _, v := range churn {
		if v == "Yes" {
			churned++
		}
	}
	churnRate := ratio(churned, n)

	byContract := churnRateBy(df, "contract")
	sortByValueDesc(byContract)

	byCohort := churnRateBy(df, models.ColTenureGroup)
	sortByLabel(byCohort)

	segments := distribution(df, models.ColRiskSegment, n)
	sortByValueDesc(segments)

	reasons := distribution(df, models.ColMainChurnReason, n)
	sortByValueDesc(reasons)
	if len(reasons) > 5 {
		reasons = reasons[:5]
	}

	charges := chargesBySegment(df)

	charts := []converters.ChartConfig{
		converters.BuildChart("bar", "Churn Rate by Contract", "Contract", "Churn %", byContract),
		converters.BuildChart("line", "Churn Rate by Tenure Cohort", "Tenure", "Churn %", byCohort),
		converters.BuildChart("pie", "Risk Segment Distribution", "", "Share %", segments),
		converters.BuildChart("bar", "Top Churn Drivers", "Driver", "Share %", reasons),
		converters.BuildChart("bar", "Avg Monthly Charges by Risk Segment", "Segment", "USD", charges),
	}

	narrative := buildNarrative(n, churnRate, byContract, segments, reasons)

	return r.converter.Convert(n, churnRate, charts, narrative)
}

// churnRateBy groups the table by one dimension and computes the share of
// churned customers per group.
func churnRateBy(df dataframe.DataFrame, dimension string) []converters.GroupStat {
	dims := df.Col(dimension).Records()
	churn := df.Col("churn").Records()

	totals := map[string]int{}
	churned := map[string]int{}
	var order []string
	for i, d := range dims {
		if _, seen := totals[d]; !seen {
			order = append(order, d)
		}
		totals[d]++
		if churn[i] == "Yes" {
			churned[d]++
		}
	}

	groups := make([]converters.GroupStat, 0, len(order))
	for _, d := range order {
		groups = append(groups, converters.GroupStat{
			Label: d,
			Count: totals[d],
			Value: ratio(churned[d], totals[d]),
		})
	}
	return groups
}

// distribution computes each distinct value's share of all rows.
func distribution(df dataframe.DataFrame, column string, total int) []converters.GroupStat {
	counts := map[string]int{}
	var order []string
	for _, v := range df.Col(column).Records() {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	groups := make([]converters.GroupStat, 0, len(order))
	for _, v := range order {
		groups = append(groups, converters.GroupStat{
			Label: v,
			Count: counts[v],
			Value: ratio(counts[v], total),
		})
	}
	return groups
}

// chargesBySegment computes the mean monthly charge per risk segment.
func chargesBySegment(df dataframe.DataFrame) []converters.GroupStat {
	segs := df.Col(models.ColRiskSegment).Records()
	charges := df.Col("monthly_charges").Float()

	bySegment := map[string][]float64{}
	var order []string
	for i, s := range segs {
		if _, seen := bySegment[s]; !seen {
			order = append(order, s)
		}
		bySegment[s] = append(bySegment[s], charges[i])
	}

	groups := make([]converters.GroupStat, 0, len(order))
	for _, s := range order {
		groups = append(groups, converters.GroupStat{
			Label: s,
			Count: len(bySegment[s]),
			Value: stat.Mean(bySegment[s], nil),
		})
	}
	sortByLabel(groups)
	return groups
}

func buildNarrative(n int, churnRate float64, byContract, segments, reasons []converters.GroupStat) []string {
	lines := []string{
		fmt.Sprintf("Analyzed %d customers; overall churn rate is %.1f%%.", n, churnRate),
	}
	if len(byContract) > 0 {
		lines = append(lines, fmt.Sprintf("Highest churn by contract: %s at %.1f%%.",
			byContract[0].Label, byContract[0].Value))
	}
	for _, s := range segments {
		if s.Label == string(models.HighRisk) {
			lines = append(lines, fmt.Sprintf("%d customers (%.1f%%) sit in the high-risk segment.",
				s.Count, s.Value))
		}
	}
	if len(reasons) > 0 && reasons[0].Label != models.MainReasonLowRisk {
		lines = append(lines, fmt.Sprintf("Most common churn driver: %s (%.1f%% of customers).",
			reasons[0].Label, reasons[0].Value))
	}
	return lines
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func sortByValueDesc(groups []converters.GroupStat) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
}

func sortByLabel(groups []converters.GroupStat) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Label < groups[j].Label })
}
