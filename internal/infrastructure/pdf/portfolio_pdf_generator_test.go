package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/amlak-api/internal/application/report"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
)

func TestFormatArea(t *testing.T) {
	cases := map[string]string{
		"120.00":     "120,00",
		"25000.50":   "25.000,50",
		"1000000.00": "1.000.000,00",
		"-1500.25":   "-1.500,25",
		"7":          "7",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatArea(in), in)
	}
}

func TestGeneratePortfolioPDF_DocumentoValido(t *testing.T) {
	p := &report.Portfolio{
		GeneratedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		GeneratedBy: "root",
		Rows: []report.PortfolioRow{
			{UserID: "a", Email: "a@x.com", Role: entity.RoleLandlord, Properties: 2, AreaSqm: decimal.NewFromInt(100)},
			{UserID: "b", Email: "b@x.com", FullName: "Bea", Role: entity.RoleTenant, AreaSqm: decimal.Zero},
		},
		TotalUsers:      2,
		TotalProperties: 2,
		TotalAreaSqm:    decimal.NewFromInt(100),
	}

	out, err := NewMarotoPDFGenerator().GeneratePortfolioPDF(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGeneratePortfolioPDF_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMarotoPDFGenerator().GeneratePortfolioPDF(ctx, &report.Portfolio{})
	assert.ErrorIs(t, err, context.Canceled)
}
