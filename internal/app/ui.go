package app

import (
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"meertime/tpaclassifier/classifier"
	"meertime/tpaclassifier/render"
	"meertime/tpaclassifier/webshot"
)

const logDebounceInterval = 150 * time.Millisecond

// rangeControl is the lo/hi slider pair of one numeric field.
type rangeControl struct {
	field   string
	lo, hi  *widget.Slider
	readout *widget.Label
	// ext is the facet extent the sliders were built from; a slider at its
	// end stands for the extent bound, which may be infinite.
	ext classifier.Range
}

type uiState struct {
	service *classifier.Service
	cfg     classifier.Config
	logger  *zap.Logger

	w        fyne.Window
	facets   *classifier.FacetState
	view     classifier.View
	updating bool

	ranges     []*rangeControl
	assocSel   *widget.Select
	typeSel    *widget.Select
	tagGroups  map[classifier.Category]*widget.CheckGroup
	catalogue  *widget.Check
	plot       *canvas.Image
	summary    *widget.Label
	resTbl     *widget.Table
	columns    []string
	rows       [][]string
	status     *widget.Label
	statusBind binding.String

	log         *widget.Entry
	logBind     binding.String
	logLines    []string
	logMu       sync.Mutex
	logUpdateCh chan struct{}

	detailMu sync.Mutex
	details  map[string]*detailView
}

func buildUI(a fyne.App, svc *classifier.Service) *uiState {
	u := &uiState{
		service:   svc,
		cfg:       svc.Config(),
		logger:    svc.Logger(),
		tagGroups: make(map[classifier.Category]*widget.CheckGroup),
		details:   make(map[string]*detailView),
	}
	u.w = a.NewWindow("TPA Classifier")
	u.w.SetMaster()
	u.facets = svc.NewFacets()

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("Ready")
	u.logBind = binding.NewString()
	u.startLogUpdater()

	u.log = widget.NewEntryWithData(u.logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.SetPlaceHolder("Log")
	u.log.Disable()
	u.status = widget.NewLabelWithData(u.statusBind)

	u.plot = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	u.plot.FillMode = canvas.ImageFillContain
	u.plot.SetMinSize(fyne.NewSize(float32(u.cfg.Plot.Width), float32(u.cfg.Plot.Height)))

	u.summary = widget.NewLabel("")
	u.summary.TextStyle = fyne.TextStyle{Monospace: true}

	u.assocSel = widget.NewSelect([]string{classifier.SentinelNA}, func(v string) {
		u.onMembers(classifier.FacetAssoc, []string{v})
	})
	u.typeSel = widget.NewSelect([]string{classifier.SentinelNA}, func(v string) {
		u.onMembers(classifier.FacetType, []string{v})
	})
	u.catalogue = widget.NewCheck("Show catalogue", func(bool) { u.recompute() })
	if u.service.Store().Catalogue.Len() == 0 {
		u.catalogue.Disable()
	}

	tagBox := container.NewVBox()
	for _, cat := range classifier.Categories {
		cat := cat
		g := widget.NewCheckGroup(nil, func(labels []string) {
			u.onMembers(string(cat), tagCodes(u.service.Taxonomy(), cat, labels))
		})
		g.Horizontal = true
		u.tagGroups[cat] = g
		tagBox.Add(widget.NewLabelWithStyle(string(cat), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		tagBox.Add(g)
	}

	rangeBox := container.NewVBox()
	for _, field := range u.service.Store().Primary.Fields() {
		rc := u.newRangeControl(field)
		u.ranges = append(u.ranges, rc)
		rangeBox.Add(rc.readout)
		rangeBox.Add(container.NewGridWithColumns(2, rc.lo, rc.hi))
	}

	resetBtn := widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() { u.onReset() })
	exportBtn := widget.NewButtonWithIcon("Export CSV", theme.DocumentSaveIcon(), func() { u.onExport() })

	u.resTbl = widget.NewTable(
		func() (int, int) {
			cols := len(u.columns)
			if cols == 0 {
				cols = 1
			}
			return len(u.rows) + 1, cols
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			if id.Row == 0 {
				if id.Col < len(u.columns) {
					lbl.SetText(u.columns[id.Col])
				} else {
					lbl.SetText("")
				}
				lbl.TextStyle = fyne.TextStyle{Bold: true}
				return
			}
			lbl.TextStyle = fyne.TextStyle{}
			rowIdx := id.Row - 1
			if rowIdx >= len(u.rows) || id.Col >= len(u.rows[rowIdx]) {
				lbl.SetText("")
				return
			}
			lbl.SetText(u.rows[rowIdx][id.Col])
		},
	)
	u.resTbl.OnSelected = func(id widget.TableCellID) {
		if id.Row == 0 || id.Row-1 >= len(u.rows) {
			return
		}
		u.openDetail(u.rows[id.Row-1][0])
		u.resTbl.UnselectAll()
	}

	filters := container.NewVBox(
		widget.NewLabelWithStyle("Association", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.assocSel,
		widget.NewLabelWithStyle("Type", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.typeSel,
		widget.NewSeparator(),
		tagBox,
		widget.NewSeparator(),
		rangeBox,
	)
	left := container.NewBorder(
		container.NewGridWithColumns(3, resetBtn, exportBtn, u.catalogue),
		u.status, nil, nil,
		container.NewVScroll(filters),
	)
	tabs := container.NewAppTabs(
		container.NewTabItem("Plot", container.NewBorder(nil, u.summary, nil, nil, u.plot)),
		container.NewTabItem("Table", u.resTbl),
		container.NewTabItem("Log", u.log),
	)
	split := container.NewHSplit(left, tabs)
	split.Offset = 0.32

	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(1280, 820))
	u.recompute()
	return u
}

func (u *uiState) newRangeControl(field string) *rangeControl {
	rc := &rangeControl{field: field, readout: widget.NewLabel(field)}
	rc.lo = widget.NewSlider(0, 1)
	rc.hi = widget.NewSlider(0, 1)
	ended := func(float64) { u.onRange(rc) }
	rc.lo.OnChangeEnded = ended
	rc.hi.OnChangeEnded = ended
	moved := func(float64) { rc.readout.SetText(readout(field, u.sliderRange(rc))) }
	rc.lo.OnChanged = moved
	rc.hi.OnChanged = moved
	return rc
}

// sliderRange reads a slider pair back into a facet range.
func (u *uiState) sliderRange(rc *rangeControl) classifier.Range {
	lo, hi := rc.lo.Value, rc.hi.Value
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo <= rc.lo.Min {
		lo = rc.ext.Lo
	}
	if hi >= rc.hi.Max {
		hi = rc.ext.Hi
	}
	return classifier.Range{Lo: lo, Hi: hi}
}

func (u *uiState) onRange(rc *rangeControl) {
	if u.updating {
		return
	}
	r := u.sliderRange(rc)
	u.facets.SetRange(rc.field, r.Lo, r.Hi)
	u.recompute()
}

func (u *uiState) onMembers(facet string, values []string) {
	if u.updating {
		return
	}
	u.facets.SetMembers(facet, values)
	u.recompute()
}

func (u *uiState) onReset() {
	u.facets.Reset(u.service.Store().Primary)
	u.recompute()
	u.appendLog("Filters reset")
}

// recompute runs the filter on the current facet state and republishes the
// narrowed bounds and options to every control.
func (u *uiState) recompute() {
	u.view = u.service.Recompute(u.facets, u.catalogue.Checked)
	u.updating = true
	defer func() { u.updating = false }()

	sel := u.view.Selection
	for _, rc := range u.ranges {
		u.syncRange(rc, sel)
	}
	syncSelect(u.assocSel, sel.Options[classifier.FacetAssoc], u.facets.Members[classifier.FacetAssoc])
	syncSelect(u.typeSel, sel.Options[classifier.FacetType], u.facets.Members[classifier.FacetType])
	tax := u.service.Taxonomy()
	for cat, g := range u.tagGroups {
		selected := tagLabels(tax, cat, u.facets.Members[string(cat)])
		g.Options = keepSelected(tagLabels(tax, cat, sel.Options[string(cat)]), selected)
		g.Selected = selected
		g.Refresh()
	}

	img, err := render.PPdot(u.view.Points, render.Options{Width: u.cfg.Plot.Width, Height: u.cfg.Plot.Height})
	if err != nil {
		u.logger.Warn("plot render failed", zap.Error(err))
	}
	u.plot.Image = img
	u.plot.Refresh()
	u.summary.SetText(u.view.Summary.String())

	fields := u.service.Store().Primary.Fields()
	u.columns = render.Columns(fields)
	u.rows = render.Rows(sel.Records, fields)
	u.resTbl.Refresh()
	u.setStatus(u.view.Status)
}

// syncRange narrows a slider pair to the selection's extent of its field.
func (u *uiState) syncRange(rc *rangeControl, sel classifier.Selection) {
	b, ok := sel.Bound(rc.field)
	if !ok {
		rc.readout.SetText(readout(rc.field, classifier.Range{Lo: 0, Hi: 0}) + " (none selected)")
		rc.lo.Disable()
		rc.hi.Disable()
		return
	}
	lo, hi, ok := sliderBounds(b)
	if !ok {
		rc.lo.Disable()
		rc.hi.Disable()
		return
	}
	rc.lo.Enable()
	rc.hi.Enable()
	rc.ext = b
	step := sliderStep(lo, hi)
	for _, s := range []*widget.Slider{rc.lo, rc.hi} {
		s.Min, s.Max, s.Step = lo, hi, step
	}
	rc.lo.SetValue(lo)
	rc.hi.SetValue(hi)
	rc.readout.SetText(readout(rc.field, b))
}

func syncSelect(s *widget.Select, options, selected []string) {
	current := classifier.SentinelNA
	if len(selected) > 0 {
		current = selected[0]
	}
	s.Options = keepSelected(options, []string{current})
	s.Selected = current
	s.Refresh()
}

func (u *uiState) onExport() {
	if len(u.view.Selection.Records) == 0 {
		dialog.ShowInformation("Export", "Nothing selected", u.w)
		return
	}
	fields := u.service.Store().Primary.Fields()
	table := render.Table(u.view.Selection.Records, fields)
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		path := uc.URI().Path()
		uc.Close()
		if err := classifier.WriteTable(path, table); err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		u.appendLog(fmt.Sprintf("Exported %d rows to %s", len(table.Rows), path))
	}, u.w)
	fd.SetFileName("selection.csv")
	fd.Show()
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) appendLog(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	u.logMu.Lock()
	u.logLines = append(u.logLines, msg)
	if len(u.logLines) > 200 {
		u.logLines = u.logLines[len(u.logLines)-200:]
	}
	u.logMu.Unlock()

	if u.logUpdateCh == nil {
		u.flushLog()
		return
	}
	select {
	case u.logUpdateCh <- struct{}{}:
	default:
	}
}

func (u *uiState) startLogUpdater() {
	if u.logUpdateCh != nil {
		return
	}
	u.logUpdateCh = make(chan struct{}, 1)
	go u.logUpdateLoop()
}

func (u *uiState) logUpdateLoop() {
	timer := time.NewTimer(logDebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-u.logUpdateCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(logDebounceInterval)
		case <-timer.C:
			u.flushLog()
		}
	}
}

func (u *uiState) flushLog() {
	u.logMu.Lock()
	text := strings.Join(u.logLines, "\n")
	u.logMu.Unlock()
	_ = u.logBind.Set(text)
}

// refreshHistories reloads every open detail view; called when the log changes on disk.
func (u *uiState) refreshHistories() {
	u.detailMu.Lock()
	views := make([]*detailView, 0, len(u.details))
	for _, d := range u.details {
		views = append(views, d)
	}
	u.detailMu.Unlock()
	for _, d := range views {
		d.reloadHistory()
	}
}

// webshotCache returns the configured snapshot cache.
func (u *uiState) webshotCache() *webshot.Cache {
	return webshot.NewCache(u.cfg.Webshots.Dir)
}
