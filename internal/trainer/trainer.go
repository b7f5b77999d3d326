package trainer

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"github.com/feichai0017/churn-insight/internal/models"
	"github.com/feichai0017/churn-insight/pkg/logger"
	"github.com/feichai0017/churn-insight/pkg/ml"
	"github.com/feichai0017/churn-insight/pkg/storage"
)

// Config holds the forest hyperparameters and the split seed.
type Config struct {
	Trees     int
	MaxDepth  int
	TestRatio float64
	Seed      int64
}

// Trainer fits the churn classifier, scores the full population, attributes
// every prediction to a dominant feature and merges the results into the
// analytical table as the gold reporting dataset.
type Trainer struct {
	store  storage.Storage
	logger logger.Logger
	cfg    Config

	mlKey   string
	anaKey  string
	goldKey string

	features []string
	X        [][]float64
	y        []int
	ana      dataframe.DataFrame
	loaded   bool

	forest *ml.RandomForest
}

func NewTrainer(store storage.Storage, cfg Config, modelInputKey, analyticalKey, goldKey string, log logger.Logger) *Trainer {
	return &Trainer{
		store:   store,
		logger:  log,
		cfg:     cfg,
		mlKey:   modelInputKey,
		anaKey:  analyticalKey,
		goldKey: goldKey,
	}
}

// Load reads both the numeric model input and the human-readable analytical
// dataset. Either file missing aborts the stage.
func (t *Trainer) Load(ctx context.Context) error {
	mlDF, err := t.read(ctx, t.mlKey)
	if err != nil {
		return err
	}
	anaDF, err := t.read(ctx, t.anaKey)
	if err != nil {
		return err
	}
	if mlDF.Nrow() != anaDF.Nrow() {
		return fmt.Errorf("model input has %d rows but analytical dataset has %d", mlDF.Nrow(), anaDF.Nrow())
	}

	t.features = nil
	for _, name := range mlDF.Names() {
		if name != "churn" {
			t.features = append(t.features, name)
		}
	}

	n := mlDF.Nrow()
	t.X = make([][]float64, n)
	for i := range t.X {
		t.X[i] = make([]float64, len(t.features))
	}
	for j, name := range t.features {
		col := mlDF.Col(name).Float()
		for i := range col {
			t.X[i][j] = col[i]
		}
	}

	t.y = make([]int, n)
	for i, v := range mlDF.Col("churn").Float() {
		t.y[i] = int(v)
	}

	t.ana = anaDF
	t.loaded = true
	t.logger.Info("Datasets loaded",
		logger.Int("rows", n),
		logger.Int("features", len(t.features)),
	)
	return nil
}

func (t *Trainer) read(ctx context.Context, key string) (dataframe.DataFrame, error) {
	rc, err := t.store.Get(ctx, key)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer rc.Close()

	df := dataframe.ReadCSV(rc)
	if df.Error() != nil {
		return df, fmt.Errorf("failed to parse dataset %s: %w", key, df.Error())
	}
	return df, nil
}

// Train fits the forest on an 80/20 split and logs held-out accuracy. The
// accuracy is a diagnostic only; the pipeline proceeds regardless.
func (t *Trainer) Train() error {
	if !t.loaded {
		return fmt.Errorf("%w: run Load before Train", models.ErrNotLoaded)
	}

	rnd := rand.New(rand.NewSource(t.cfg.Seed))
	XTrain, XTest, yTrain, yTest := ml.TrainTestSplit(t.X, t.y, t.cfg.TestRatio, rnd)

	t.forest = ml.NewRandomForest(
		ml.WithNEstimators(t.cfg.Trees),
		ml.WithForestDepth(t.cfg.MaxDepth),
		ml.WithForestSeed(t.cfg.Seed),
	)
	if err := t.forest.Fit(XTrain, yTrain); err != nil {
		return fmt.Errorf("failed to train forest: %w", err)
	}

	preds := t.forest.Predict(XTest)
	acc := ml.Accuracy(yTest, preds)
	prec, rec, f1 := ml.PrecisionRecallF1(yTest, preds)
	t.logger.Info("Held-out diagnostics",
		logger.Float64("accuracy", acc),
		logger.Float64("precision", prec),
		logger.Float64("recall", rec),
		logger.Float64("f1", f1),
	)
	return nil
}

// Explain scores every record (training rows included) and produces the per
// record dominant churn driver. Scoring the full population is intentional:
// the gold table describes all customers, it is not a generalization
// estimate, and its probabilities must not be read as one.
func (t *Trainer) Explain(ctx context.Context) error {
	if t.forest == nil {
		return fmt.Errorf("%w: run Train before Explain", models.ErrNotLoaded)
	}

	churnIdx := classIndexOf(t.forest.Classes(), 1)

	probs := make([]float64, len(t.X))
	for i, p := range t.forest.PredictProba(t.X) {
		probs[i] = p[churnIdx]
	}

	explainer := ml.NewTreeExplainer(t.forest)
	raw := explainer.ContributionTensor(t.X)

	contribs, err := NormalizeAttributions(raw, len(t.X), len(t.features), len(t.forest.Classes()), churnIdx)
	if err != nil {
		return err
	}

	reasons := make([]string, len(contribs))
	for i, row := range contribs {
		name, ok := DominantReason(row, t.features)
		if !ok {
			reasons[i] = models.MainReasonLowRisk
		} else {
			reasons[i] = HumanizeReason(name)
		}
	}

	segments := make([]string, len(probs))
	rounded := make([]float64, len(probs))
	for i, p := range probs {
		rounded[i] = math.Round(p*10000) / 10000
		segments[i] = string(RiskSegmentFor(rounded[i]))
	}

	t.logger.Info("Population scored",
		logger.Int("rows", len(probs)),
		logger.Float64("meanChurnProbability", stat.Mean(probs, nil)),
	)

	gold := t.ana.
		Mutate(series.New(rounded, series.Float, models.ColProbabilityChurn)).
		Mutate(series.New(segments, series.String, models.ColRiskSegment)).
		Mutate(series.New(reasons, series.String, models.ColMainChurnReason))
	if gold.Error() != nil {
		return fmt.Errorf("failed to assemble gold dataset: %w", gold.Error())
	}

	var buf bytes.Buffer
	if err := gold.WriteCSV(&buf); err != nil {
		return fmt.Errorf("failed to encode gold dataset: %w", err)
	}
	path, err := t.store.Store(ctx, &buf, t.goldKey)
	if err != nil {
		return err
	}

	t.logger.Info("Gold dataset written",
		logger.String("path", path),
		logger.Int("rows", gold.Nrow()),
	)
	return nil
}

// Run orchestrates the stage.
func (t *Trainer) Run(ctx context.Context) error {
	if err := t.Load(ctx); err != nil {
		return err
	}
	if err := t.Train(); err != nil {
		return err
	}
	return t.Explain(ctx)
}

func classIndexOf(classes []int, label int) int {
	for i, c := range classes {
		if c == label {
			return i
		}
	}
	return 0
}
