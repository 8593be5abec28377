package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"card-fee-simulator/internal/handlers"
	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/money"
	"card-fee-simulator/internal/services/batch"
	s3service "card-fee-simulator/internal/services/s3"
	"card-fee-simulator/internal/services/simulator"
)

func catalog() simulator.StaticSource {
	plan := func(id int64, rating float64, debitRate string) models.PricingPlan {
		return models.PricingPlan{
			ID:         id,
			Name:       "Plano",
			Active:     true,
			Model:      models.BillingModelStandard,
			DebitRate:  decimal.RequireFromString(debitRate),
			CreditRate: decimal.RequireFromString("0.0299"),
			Rating:     rating,
		}
	}
	return simulator.StaticSource{
		{ID: 1, Name: "Mini", VendorName: "Acme", MaxInstallments: 12,
			Plans: []models.PricingPlan{plan(10, 4.9, "0.0300")}},
		{ID: 2, Name: "Smart", VendorName: "Beta", MaxInstallments: 12, RequiresWire: true,
			Plans: []models.PricingPlan{plan(20, 3.1, "0.0100")}},
	}
}

func newService(source simulator.SnapshotSource) *simulator.Service {
	return simulator.NewService(source, simulator.NewEngine(simulator.WithLogger(zap.NewNop())))
}

type failingSource struct{}

func (failingSource) LoadOffers(ctx context.Context) ([]models.TerminalOffer, error) {
	return nil, errors.New("connection refused")
}

func TestSimulateHandler_OrdersByQuery(t *testing.T) {
	h := handlers.NewSimulateHandler(newService(catalog()))
	body := `{"venda_debito": 100000, "venda_credito_vista": 0, "venda_credito_parcelado": 0, "numero_parcelas": 1}`

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "POST", Body: body})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var byRating handlers.SimulateResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &byRating))
	assert.Equal(t, simulator.OrderRating, byRating.Order)
	require.Len(t, byRating.Results, 2)
	assert.Equal(t, int64(10), byRating.Best.PlanID)

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            "POST",
		Body:                  body,
		QueryStringParameters: map[string]string{"ordem": "custo"},
	})
	require.NoError(t, err)
	var byCost handlers.SimulateResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &byCost))
	assert.Equal(t, simulator.OrderCost, byCost.Order)
	assert.Equal(t, int64(20), byCost.Best.PlanID)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}

func TestSimulateHandler_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		source simulator.SnapshotSource
		body   string
		status int
	}{
		{"malformed json", catalog(), `{"venda_debito":`, http.StatusBadRequest},
		{"zero installments", catalog(), `{"venda_debito": 100, "numero_parcelas": 0}`, http.StatusBadRequest},
		{"negative volume", catalog(), `{"venda_debito": -1, "numero_parcelas": 1}`, http.StatusBadRequest},
		{"installments above twelve", catalog(), `{"venda_debito": 100, "numero_parcelas": 13}`, http.StatusBadRequest},
		{"filters exclude everything", simulator.StaticSource{catalog()[1]},
			`{"venda_debito": 100, "numero_parcelas": 1, "filtros": {"sem_fio": true}}`, http.StatusNotFound},
		{"snapshot unavailable", failingSource{}, `{"venda_debito": 100, "numero_parcelas": 1}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewSimulateHandler(newService(tt.source))
			resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "POST", Body: tt.body})
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode, resp.Body)
		})
	}
}

func TestSimulateHandler_Preflight(t *testing.T) {
	h := handlers.NewSimulateHandler(newService(catalog()))
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "OPTIONS"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
}

func TestStatusFor(t *testing.T) {
	status, msg := handlers.StatusFor(simulator.ErrNoViableOffers)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "no matching offers", msg)

	status, _ = handlers.StatusFor(money.ErrDivisionByZero)
	assert.Equal(t, http.StatusBadRequest, status)

	status, msg = handlers.StatusFor(errors.New("pool closed"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "simulation failed", msg)
}

type memoryFiles struct {
	objects map[string][]byte
	moved   map[string]string
}

func (m *memoryFiles) DownloadFrom(ctx context.Context, bucket, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return data, nil
}

func (m *memoryFiles) MoveFile(ctx context.Context, sourceKey, destKey string) error {
	if m.moved == nil {
		m.moved = make(map[string]string)
	}
	m.moved[sourceKey] = destKey
	return nil
}

func s3Event(keys ...string) events.S3Event {
	var event events.S3Event
	for _, key := range keys {
		var record events.S3EventRecord
		record.S3.Bucket.Name = "scenarios"
		record.S3.Object.Key = key
		event.Records = append(event.Records, record)
	}
	return event
}

func TestBatchProcessorHandler_Handle(t *testing.T) {
	files := &memoryFiles{objects: map[string][]byte{
		"uploads/2026/10/15/abc_cenarios.csv": []byte("scenario_id,venda_debito,venda_credito_vista,venda_credito_parcelado,numero_parcelas,sem_fio\n" +
			"LOJA,100000,0,0,1,\n" +
			"QUIOSQUE,100000,0,0,1,sim\n" +
			"RUIM,abc,0,0,1,\n"),
		"uploads/2026/10/15/vazio.csv": []byte("scenario_id,venda_debito\n"),
	}}
	runner := batch.NewRunner(newService(catalog()), batch.WithLogger(zap.NewNop()))
	h := handlers.NewBatchProcessorHandler(files, runner)

	result, err := h.Handle(context.Background(), s3Event(
		"uploads/2026/10/15/abc_cenarios.csv",
		"results/old.json",
		"uploads/2026/10/15/vazio.csv",
	))
	require.NoError(t, err)
	require.Len(t, result.Batches, 2)

	report := result.Batches[0]
	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 2, report.Scenarios)
	assert.Equal(t, 2, report.Simulated)
	assert.Equal(t, 0, report.NoMatches)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "line 4")

	empty := result.Batches[1]
	assert.Equal(t, 0, empty.Scenarios)
	assert.NotEmpty(t, empty.Errors)

	assert.Equal(t, map[string]string{
		"uploads/2026/10/15/abc_cenarios.csv": "processed/2026/10/15/abc_cenarios.csv",
		"uploads/2026/10/15/vazio.csv":        "processed/2026/10/15/vazio.csv",
	}, files.moved)
}

func TestBatchProcessorHandler_Errors(t *testing.T) {
	runner := batch.NewRunner(newService(catalog()), batch.WithLogger(zap.NewNop()))
	h := handlers.NewBatchProcessorHandler(&memoryFiles{}, runner)

	result, err := h.Handle(context.Background(), events.S3Event{})
	require.NoError(t, err)
	assert.Equal(t, "No records to process", result.Message)

	_, err = h.Handle(context.Background(), s3Event("uploads/missing.csv"))
	assert.Error(t, err)

	result, err = h.Handle(context.Background(), s3Event("uploads/notes.txt"))
	require.NoError(t, err)
	assert.Empty(t, result.Batches)
}

type fakeSigner struct {
	keys []string
	err  error
}

func (f *fakeSigner) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*s3service.PresignedURLResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, key)
	return &s3service.PresignedURLResult{
		URL:       "https://scenarios.s3.amazonaws.com/" + key,
		Key:       key,
		ExpiresAt: time.Now().Add(time.Duration(expiryMinutes) * time.Minute),
	}, nil
}

func TestPresignedURLHandler_Handle(t *testing.T) {
	signer := &fakeSigner{}
	h := handlers.NewPresignedURLHandler(signer)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            "GET",
		QueryStringParameters: map[string]string{"filename": "minhas vendas.csv"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.PresignedURLResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.True(t, strings.HasPrefix(body.S3Key, "uploads/"))
	assert.True(t, strings.HasSuffix(body.S3Key, "_minhasvendas.csv"))
	assert.Equal(t, 3600, body.ExpiresIn)
	assert.Equal(t, []string{body.S3Key}, signer.keys)
}

func TestPresignedURLHandler_Rejects(t *testing.T) {
	h := handlers.NewPresignedURLHandler(&fakeSigner{})
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            "GET",
		QueryStringParameters: map[string]string{"filename": "vendas.xlsx"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, handlers.ErrOnlyCSV.Error())

	_, status, err := handlers.NewPresignedURLHandler(&fakeSigner{}).Presign(context.Background(), "vendas.pdf")
	assert.ErrorIs(t, err, handlers.ErrOnlyCSV)
	assert.Equal(t, http.StatusBadRequest, status)

	h = handlers.NewPresignedURLHandler(&fakeSigner{err: errors.New("expired credentials")})
	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "GET"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealthHandler_Check(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("dial tcp: refused") }

	report, status := handlers.NewHealthHandler(map[string]handlers.HealthCheck{"database": ok}).Check(context.Background())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "connected", report.Dependencies["database"])

	h := handlers.NewHealthHandler(map[string]handlers.HealthCheck{"database": ok, "cache": down})
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body handlers.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "disconnected", body.Dependencies["cache"])
}
