package output

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/orderpulse/internal/analytics"
	"github.com/chrisdamba/orderpulse/internal/cloudwriter"
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"
)

func order(t *testing.T, number, store string, state models.OrderState, created string, minutes int, payment float64) models.EnrichedOrder {
	t.Helper()
	start, err := time.Parse(time.RFC3339, created)
	require.NoError(t, err)
	eo, err := analytics.Normalize(models.RawOrder{
		OrderNumber:          number,
		StoreSlug:            strings.ToLower(strings.ReplaceAll(store, " ", "-")),
		StoreName:            store,
		State:                state,
		FinalReceivedPayment: payment,
		Pays:                 models.CourierPays{CourierPayFinalAmount: payment},
		Times: models.OrderTimes{
			CreatedAt: created,
			UpdatedAt: start.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339),
		},
	})
	require.NoError(t, err)
	return eo
}

func fixture(t *testing.T) (models.Dashboard, []models.EnrichedOrder) {
	orders := []models.EnrichedOrder{
		order(t, "O-1", "Market Kaufland Colentina", models.OrderStateComplete, "2024-01-01T10:00:00Z", 30, 30),
		order(t, "O-2", "Market Lidl Pipera", models.OrderStateComplete, "2024-01-01T12:00:00Z", 20, 16),
		order(t, "O-3", "Market Lidl Pipera", models.OrderStateCanceled, "2024-01-02T08:00:00Z", 5, 0),
	}
	q := models.DashboardQuery{Grouping: models.GroupingDay}
	return analytics.BuildDashboard(orders, []string{"Market Kaufland Colentina", "Market Lidl Pipera"}, q), orders
}

type message struct {
	topic string
	body  []byte
}

type recorder struct {
	messages []message
	failOn   string
	closed   bool
}

func (r *recorder) WriteMessage(topic string, msg []byte) error {
	if topic == r.failOn {
		return errors.New("sink unavailable")
	}
	r.messages = append(r.messages, message{topic: topic, body: msg})
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func (r *recorder) topics() []string {
	out := make([]string, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, m.topic)
	}
	return out
}

func TestPublishWritesEveryTopicInOrder(t *testing.T) {
	dash, orders := fixture(t)
	rec := &recorder{}

	n, err := Publish(rec, dash, orders)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, []string{
		TopicEnrichedOrders, TopicEnrichedOrders, TopicEnrichedOrders,
		TopicPeriodMetrics,
		TopicStoreMetrics, TopicStoreMetrics,
		TopicSummary,
	}, rec.topics())

	var enriched EnrichedRecord
	require.NoError(t, json.Unmarshal(rec.messages[0].body, &enriched))
	assert.Equal(t, "O-1", enriched.OrderNumber)
	assert.Equal(t, 30, enriched.DurationMinutes)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC).Unix(), enriched.Timestamp)

	var period PeriodRecord
	require.NoError(t, json.Unmarshal(rec.messages[3].body, &period))
	assert.Equal(t, "2024-01-01", period.Period)
	assert.Equal(t, "all", period.Scope)
	assert.Equal(t, 46.0, period.Income)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix(), period.Timestamp)

	var store StoreRecord
	require.NoError(t, json.Unmarshal(rec.messages[4].body, &store))
	assert.Equal(t, "Kaufland", store.Store)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC).Unix(), store.Timestamp)

	var summary SummaryRecord
	require.NoError(t, json.Unmarshal(rec.messages[6].body, &summary))
	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, models.GroupingDay, summary.Grouping)
}

func TestPublishScopesByStore(t *testing.T) {
	_, orders := fixture(t)
	store := "Market Lidl Pipera"
	dash := analytics.BuildDashboard(orders, nil, models.DashboardQuery{
		Filters:  models.Filters{Store: &store},
		Grouping: models.GroupingMonth,
	})
	rec := &recorder{}

	_, err := Publish(rec, dash, analytics.ApplyFilters(orders, dash.Query.Filters))
	require.NoError(t, err)

	last := rec.messages[len(rec.messages)-1]
	var summary SummaryRecord
	require.NoError(t, json.Unmarshal(last.body, &summary))
	assert.Equal(t, store, summary.Scope)
	assert.Equal(t, 1, summary.TotalOrders)
}

func TestPublishStopsOnWriteError(t *testing.T) {
	dash, orders := fixture(t)
	rec := &recorder{failOn: TopicStoreMetrics}

	n, err := Publish(rec, dash, orders)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store_metrics")
	assert.Equal(t, 4, n)
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	c := &ConsoleOutput{w: &buf}

	require.NoError(t, c.WriteMessage(TopicSummary, []byte(`{"totalOrders":1}`)))
	require.NoError(t, c.Close())
	assert.Equal(t, "[summary] {\"totalOrders\":1}\n", buf.String())
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	n := 0
	s := bufio.NewScanner(f)
	for s.Scan() {
		n++
	}
	require.NoError(t, s.Err())
	return n
}

func TestJSONOutputPartitionsByDay(t *testing.T) {
	dash, orders := fixture(t)
	base := t.TempDir()
	out := NewJSONOutput(base, "reports")

	_, err := Publish(out, dash, orders)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	dir := filepath.Join(base, "reports")
	assert.Equal(t, 2, countLines(t, filepath.Join(dir, "enriched_orders", "year=2024", "month=01", "day=01", "data.json")))
	assert.Equal(t, 1, countLines(t, filepath.Join(dir, "enriched_orders", "year=2024", "month=01", "day=02", "data.json")))
	assert.Equal(t, 1, countLines(t, filepath.Join(dir, "period_metrics", "year=2024", "month=01", "day=01", "data.json")))
	assert.Equal(t, 2, countLines(t, filepath.Join(dir, "store_metrics", "year=2024", "month=01", "day=02", "data.json")))
	assert.Equal(t, 1, countLines(t, filepath.Join(dir, "summary", "year=2024", "month=01", "day=02", "data.json")))
}

func TestJSONOutputRejectsMissingTimestamp(t *testing.T) {
	out := NewJSONOutput(t.TempDir(), "reports")
	err := out.WriteMessage(TopicSummary, []byte(`{"scope":"all"}`))
	assert.ErrorContains(t, err, "invalid timestamp")
}

func TestCSVOutputFlattensNestedFields(t *testing.T) {
	_, orders := fixture(t)
	base := t.TempDir()
	out := NewCSVOutput(base, "reports")

	for _, o := range orders[:2] {
		msg, err := json.Marshal(newEnrichedRecord(o))
		require.NoError(t, err)
		require.NoError(t, out.WriteMessage(TopicEnrichedOrders, msg))
	}
	require.NoError(t, out.Close())

	f, err := os.Open(filepath.Join(base, "reports", "enriched_orders", "year=2024", "month=01", "day=01", "data.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s in %v", name, header)
		return -1
	}
	assert.Equal(t, "O-1", records[1][col("order_number")])
	assert.Equal(t, "30", records[1][col("pays.courierPayFinalAmount")])
	assert.Equal(t, "2024-01-01T10:30:00Z", records[1][col("times.updated_at")])
	assert.Equal(t, "48", records[2][col("incomePerHour")])
}

func TestParquetOutputWritesLocalFiles(t *testing.T) {
	dash, orders := fixture(t)
	base := t.TempDir()
	out, err := NewParquetOutput(context.Background(), &models.Config{
		OutputPath:        base,
		OutputFolder:      "reports",
		OutputDestination: "local",
	}, zap.NewNop())
	require.NoError(t, err)

	_, err = Publish(out, dash, orders)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	path := filepath.Join(base, "reports", "enriched_orders", "year=2024", "month=01", "day=01", "data.parquet")
	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(enrichedRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()
	assert.Equal(t, int64(2), pr.GetNumRows())
}

type memoryWriter struct {
	buf    bytes.Buffer
	closed bool
}

func (m *memoryWriter) Write(p []byte) (int, error) { return m.buf.Write(p) }
func (m *memoryWriter) Close() error {
	m.closed = true
	return nil
}

type memoryFactory struct {
	objects map[string]*memoryWriter
}

func (f *memoryFactory) NewWriter(_ context.Context, bucket, objectPath string) (cloudwriter.CloudWriter, error) {
	w := &memoryWriter{}
	f.objects[bucket+"/"+objectPath] = w
	return w, nil
}

func TestParquetOutputUploadsThroughCloudWriter(t *testing.T) {
	dash, orders := fixture(t)
	factory := &memoryFactory{objects: map[string]*memoryWriter{}}
	out := &ParquetOutput{
		ctx:                context.Background(),
		log:                zap.NewNop(),
		folder:             "reports",
		writers:            map[string]*writer.ParquetWriter{},
		writerMutexes:      map[string]*sync.Mutex{},
		files:              map[string]source.ParquetFile{},
		cloudWriterFactory: factory,
		cloudBucketName:    "analytics",
	}

	_, err := Publish(out, dash, orders)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	obj, ok := factory.objects["analytics/reports/summary/year=2024/month=01/day=02/data.parquet"]
	require.True(t, ok)
	assert.True(t, obj.closed)
	assert.True(t, bytes.HasPrefix(obj.buf.Bytes(), []byte("PAR1")))
	assert.Len(t, factory.objects, 5)
}

func TestKafkaOutput(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	out := newKafkaOutput(producer, "orderpulse.", zap.NewNop())
	require.NoError(t, out.WriteMessage(TopicSummary, []byte(`{}`)))
	assert.Error(t, out.WriteMessage(TopicSummary, []byte(`{}`)))
	require.NoError(t, out.Close())
	assert.Error(t, out.WriteMessage(TopicSummary, []byte(`{}`)))
}

func TestNewSelectsDestination(t *testing.T) {
	log := zap.NewNop()
	ctx := context.Background()

	dest, err := New(ctx, &models.Config{OutputFormat: "console"}, log)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleOutput{}, dest)

	dest, err = New(ctx, &models.Config{OutputFormat: "json", OutputPath: t.TempDir()}, log)
	require.NoError(t, err)
	assert.IsType(t, &JSONOutput{}, dest)

	dest, err = New(ctx, &models.Config{OutputFormat: "csv", OutputPath: t.TempDir()}, log)
	require.NoError(t, err)
	assert.IsType(t, &CSVOutput{}, dest)

	_, err = New(ctx, &models.Config{OutputFormat: "xml"}, log)
	assert.True(t, errors.Is(err, models.ErrUnknownOutput))
}
