package http

import (
	"math"
	"strconv"

	"escolacli/pkg/contracts/domain"
)

// Chart geometry in SVG user units
const (
	chartWidth   = 640.0
	chartHeight  = 320.0
	marginLeft   = 56.0
	marginRight  = 16.0
	marginTop    = 16.0
	marginBottom = 72.0
	tickCount    = 5
	pointRadius  = 6.0
)

// Scales used when the data stays below them
const (
	gradeScale      = 10.0
	attendanceScale = 100.0
)

var clusterColors = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b"}

type svgTick struct {
	Pos   float64
	Label string
}

type svgBar struct {
	X, Y, W, H float64
	LabelX     float64
	Label      string
	Value      string
}

type svgPoint struct {
	CX, CY float64
	Color  string
	Label  string
}

// svgPlot holds the frame shared by bar and scatter charts
type svgPlot struct {
	Title  string
	XLabel string
	YLabel string
	Width  float64
	Height float64
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
	YTicks []svgTick
	XTicks []svgTick
}

type barSVG struct {
	Plot svgPlot
	Bars []svgBar
}

type scatterSVG struct {
	Plot   svgPlot
	Points []svgPoint
	Legend []svgPoint
}

func newPlot(title, xLabel, yLabel string, yMax float64) svgPlot {
	p := svgPlot{
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Width:  chartWidth,
		Height: chartHeight,
		Left:   marginLeft,
		Right:  chartWidth - marginRight,
		Top:    marginTop,
		Bottom: chartHeight - marginBottom,
	}
	for i := 0; i <= tickCount; i++ {
		v := yMax * float64(i) / tickCount
		p.YTicks = append(p.YTicks, svgTick{Pos: p.yPos(v, yMax), Label: formatTick(v)})
	}
	return p
}

func (p svgPlot) yPos(v, yMax float64) float64 {
	return p.Bottom - (p.Bottom-p.Top)*v/yMax
}

func (p svgPlot) xPos(v, xMax float64) float64 {
	return p.Left + (p.Right-p.Left)*v/xMax
}

// scaleFor returns floor, or the next multiple of floor/tickCount at or above every value
func scaleFor(floor float64, values ...float64) float64 {
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v)
	}
	if top <= floor {
		return floor
	}
	step := floor / tickCount
	return math.Ceil(top/step) * step
}

func newBarSVG(chart domain.BarChart, floor float64) barSVG {
	values := make([]float64, len(chart.Points))
	for i, pt := range chart.Points {
		values[i] = pt.Value
	}
	yMax := scaleFor(floor, values...)

	svg := barSVG{Plot: newPlot(chart.Title, chart.XLabel, chart.YLabel, yMax)}
	plot := svg.Plot
	if len(chart.Points) == 0 {
		return svg
	}

	slot := (plot.Right - plot.Left) / float64(len(chart.Points))
	width := slot * 0.7
	for i, pt := range chart.Points {
		x := plot.Left + slot*float64(i) + (slot-width)/2
		y := plot.yPos(math.Max(pt.Value, 0), yMax)
		svg.Bars = append(svg.Bars, svgBar{
			X:      x,
			Y:      y,
			W:      width,
			H:      plot.Bottom - y,
			LabelX: x + width/2,
			Label:  pt.Label,
			Value:  strconv.FormatFloat(pt.Value, 'f', -1, 64),
		})
	}
	return svg
}

func newScatterSVG(chart *domain.ScatterChart) *scatterSVG {
	if chart == nil {
		return nil
	}

	grades := make([]float64, 0, len(chart.Points))
	attendance := make([]float64, 0, len(chart.Points))
	for _, pt := range chart.Points {
		grades = append(grades, pt.Grade)
		attendance = append(attendance, pt.Attendance)
	}
	xMax := scaleFor(gradeScale, grades...)
	yMax := scaleFor(attendanceScale, attendance...)

	plot := newPlot(chart.Title, chart.XLabel, chart.YLabel, yMax)
	for i := 0; i <= tickCount; i++ {
		v := xMax * float64(i) / tickCount
		plot.XTicks = append(plot.XTicks, svgTick{Pos: plot.xPos(v, xMax), Label: formatTick(v)})
	}
	svg := &scatterSVG{Plot: plot}

	for _, pt := range chart.Points {
		svg.Points = append(svg.Points, svgPoint{
			CX:    plot.xPos(pt.Grade, xMax),
			CY:    plot.yPos(pt.Attendance, yMax),
			Color: clusterColor(pt.Cluster),
			Label: pt.StudentName,
		})
	}
	for c := 0; c < chart.Clusters; c++ {
		svg.Legend = append(svg.Legend, svgPoint{
			CX:    plot.Right - 80,
			CY:    plot.Top + 12 + float64(c)*18,
			Color: clusterColor(c),
			Label: "Grupo " + strconv.Itoa(c+1),
		})
	}
	return svg
}

func clusterColor(c int) string {
	if c < 0 {
		c = 0
	}
	return clusterColors[c%len(clusterColors)]
}

func formatTick(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
