// Package pdf genera el reporte de cartera en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Amlak + título      │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: usuarios / inmuebles / área total                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Email | Nombre | Rol | Inmuebles | Área m²          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: generado por + leyenda                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/amlak-api/internal/application/report"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 20, Green: 90, Blue: 70}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorZebra   = &props.Color{Red: 240, Green: 245, Blue: 243}
)

var roleLabels = map[string]string{
	"landlord": "Propietario",
	"tenant":   "Inquilino",
	"seller":   "Vendedor",
	"buyer":    "Comprador",
	"admin":    "Administrador",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa report.PortfolioPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

var _ report.PortfolioPDFGenerator = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GeneratePortfolioPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GeneratePortfolioPDF(ctx context.Context, p *report.Portfolio) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de cartera Amlak", true).
		WithAuthor("Amlak", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(p))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(p.Rows)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(p))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(p))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(p *report.Portfolio) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("Amlak", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Reporte de cartera: usuarios e inmuebles", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(p.GeneratedAt.Format("02/01/2006 15:04 MST"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

func summaryRow(p *report.Portfolio) core.Row {
	box := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Align: align.Center, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 5}),
		)
	}
	return row.New(14).Add(
		box("USUARIOS", fmt.Sprintf("%d", p.TotalUsers)),
		box("INMUEBLES", fmt.Sprintf("%d", p.TotalProperties)),
		box("ÁREA TOTAL (m²)", formatArea(p.TotalAreaSqm.StringFixed(2))),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Email", 4, align.Left),
		h("Nombre", 3, align.Left),
		h("Rol", 2, align.Left),
		h("Inmuebles", 1, align.Center),
		h("Área m²", 2, align.Right),
	)
}

// tableRows una fila por usuario, con fondo alterno.
func tableRows(rows []report.PortfolioRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for i, r := range rows {
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
		}
		rr := row.New(6).Add(
			cell(r.Email, 4, align.Left),
			cell(nonEmpty(r.FullName, "—"), 3, align.Left),
			cell(roleLabel(string(r.Role)), 2, align.Left),
			cell(fmt.Sprintf("%d", r.Properties), 1, align.Center),
			cell(formatArea(r.AreaSqm.StringFixed(2)), 2, align.Right),
		)
		if i%2 == 1 {
			rr.WithStyle(&props.Cell{BackgroundColor: colorZebra})
		}
		result = append(result, rr)
	}
	if len(result) == 0 {
		result = append(result, row.New(8).Add(col.New(12).Add(
			text.New("Sin usuarios registrados.", props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 2}),
		)))
	}
	return result
}

func totalsRow(p *report.Portfolio) core.Row {
	bold := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Right: 1, Top: 1}
	return row.New(8).Add(
		col.New(9).Add(text.New("TOTAL", bold)),
		col.New(1).Add(text.New(fmt.Sprintf("%d", p.TotalProperties), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 1,
		})),
		col.New(2).Add(text.New(formatArea(p.TotalAreaSqm.StringFixed(2)), bold)),
	)
}

func footerRow(p *report.Portfolio) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New("Generado por "+p.GeneratedBy+". Documento interno de administración; "+
			"contiene datos personales de los usuarios.", props.Text{
			Size: 6.5, Color: colorGray, Top: 2,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func roleLabel(role string) string {
	if l, ok := roleLabels[role]; ok {
		return l
	}
	return "Sin asignar"
}

// formatArea inserta puntos de miles en la parte entera y coma decimal.
// Ej: "25000.50" → "25.000,50", "120.00" → "120,00"
func formatArea(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := sign + string(buf)
	if frac != "" {
		out += "," + frac
	}
	return out
}
