package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"meertime/tpaclassifier/classifier"
	"meertime/tpaclassifier/webshot"
)

// detailView is the per-pulsar window: snapshot, prior classifications and
// the form that records a new one.
type detailView struct {
	u      *uiState
	rec    classifier.Record
	w      fyne.Window
	thumb  *canvas.Image
	shot   *widget.Button
	hist   *widget.List
	status *widget.Label

	history []classifier.Entry

	user    *widget.Entry
	comment *widget.Entry
	groups  map[classifier.Category]*widget.CheckGroup
}

func (u *uiState) openDetail(jname string) {
	u.detailMu.Lock()
	if d, ok := u.details[jname]; ok {
		u.detailMu.Unlock()
		d.w.RequestFocus()
		return
	}
	u.detailMu.Unlock()

	rec, ok := u.service.Lookup(jname)
	if !ok {
		u.setStatus(fmt.Sprintf("%s not found", jname))
		return
	}
	d := newDetailView(u, rec)
	u.detailMu.Lock()
	u.details[jname] = d
	u.detailMu.Unlock()
	d.w.SetOnClosed(func() {
		u.detailMu.Lock()
		delete(u.details, jname)
		u.detailMu.Unlock()
	})
	d.w.Show()
}

func newDetailView(u *uiState, rec classifier.Record) *detailView {
	d := &detailView{
		u:      u,
		rec:    rec,
		groups: make(map[classifier.Category]*widget.CheckGroup),
	}
	d.w = fyne.CurrentApp().NewWindow(rec.JName)
	d.status = widget.NewLabel("")

	d.thumb = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	d.thumb.FillMode = canvas.ImageFillContain
	tw := u.cfg.Webshots.ThumbWidth
	d.thumb.SetMinSize(fyne.NewSize(float32(tw), float32(tw)*2/3))
	d.shot = widget.NewButton("Capture snapshot", func() { d.capture() })
	d.loadThumb()

	d.hist = widget.NewList(
		func() int { return len(d.history) },
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.Wrapping = fyne.TextWrapWord
			return l
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(d.history) {
				return
			}
			obj.(*widget.Label).SetText(describeEntry(u.service.Taxonomy(), d.history[id]))
		},
	)
	d.reloadHistory()

	d.user = widget.NewEntry()
	d.user.SetPlaceHolder("Username")
	d.user.SetText(u.cfg.Username)
	d.comment = widget.NewMultiLineEntry()
	d.comment.SetPlaceHolder("Comment")
	d.comment.Wrapping = fyne.TextWrapWord

	form := container.NewVBox(d.user, d.comment)
	tax := u.service.Taxonomy()
	for _, cat := range tax.Categories() {
		g := widget.NewCheckGroup(tax.Labels(cat), nil)
		g.Horizontal = true
		d.groups[cat] = g
		form.Add(widget.NewLabelWithStyle(string(cat), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		form.Add(g)
	}
	form.Add(widget.NewButton("Save classification", func() { d.save() }))

	info := widget.NewLabel(recordSummary(rec))
	info.TextStyle = fyne.TextStyle{Monospace: true}
	left := container.NewBorder(container.NewVBox(d.thumb, d.shot), nil, nil, nil, container.NewVScroll(info))
	right := container.NewVSplit(d.hist, container.NewVScroll(form))
	right.Offset = 0.3
	split := container.NewHSplit(left, right)
	split.Offset = 0.45

	d.w.SetContent(container.NewBorder(nil, d.status, nil, nil, split))
	d.w.Resize(fyne.NewSize(1100, 720))
	return d
}

func (d *detailView) loadThumb() {
	img, err := d.u.webshotCache().Thumbnail(d.rec.JName, d.u.cfg.Webshots.ThumbWidth)
	switch {
	case errors.Is(err, webshot.ErrNotCached):
		d.status.SetText("No snapshot cached")
		return
	case err != nil:
		d.status.SetText(classifier.Status(err))
		return
	}
	d.thumb.Image = img
	d.thumb.Refresh()
}

// capture runs the browser off the UI goroutine and swaps the thumbnail in
// when the snapshot lands.
func (d *detailView) capture() {
	cfg := d.u.cfg.Webshots
	d.shot.Disable()
	d.status.SetText("Capturing " + d.rec.JName + "...")
	go func() {
		b := webshot.NewBrowser(webshot.BrowserConfig{Width: cfg.Width, Height: cfg.Height})
		err := b.Start()
		if err == nil {
			c := &webshot.Capturer{
				Cache:   d.u.webshotCache(),
				Shooter: b,
				URL:     d.u.cfg.WebshotURL,
				Timeout: cfg.Timeout,
				Logger:  d.u.logger,
			}
			err = c.Capture(context.Background(), d.rec.JName)
			if cerr := b.Close(); cerr != nil {
				d.u.logger.Warn("browser close", zap.Error(cerr))
			}
		}
		fyne.Do(func() {
			d.shot.Enable()
			if err != nil {
				d.status.SetText(classifier.Status(err))
				return
			}
			d.status.SetText("Snapshot saved")
			d.loadThumb()
		})
	}()
}

func (d *detailView) reloadHistory() {
	entries, err := d.u.service.History(d.rec.JName)
	fyne.Do(func() {
		if err != nil {
			d.status.SetText(classifier.Status(err))
			return
		}
		d.history = entries
		d.hist.Refresh()
	})
}

func (d *detailView) save() {
	labels := make(map[classifier.Category][]string, len(d.groups))
	for cat, g := range d.groups {
		if len(g.Selected) > 0 {
			labels[cat] = append([]string(nil), g.Selected...)
		}
	}
	saved, err := d.u.service.Classify(d.rec.JName, d.user.Text, d.comment.Text, labels)
	if err != nil {
		d.status.SetText(classifier.Status(err))
		var ve *classifier.ValidationError
		if !errors.As(err, &ve) {
			dialog.ShowError(err, d.w)
		}
		return
	}
	d.status.SetText("Saved " + saved.Tags)
	d.comment.SetText("")
	for _, g := range d.groups {
		g.SetSelected(nil)
	}
	d.reloadHistory()
}

func describeEntry(tax *classifier.Taxonomy, e classifier.Entry) string {
	var b strings.Builder
	b.WriteString(e.Username)
	c, err := e.Classification()
	if err != nil {
		b.WriteString(": ")
		b.WriteString(e.Tags)
	} else if !c.Empty() {
		for _, cat := range classifier.Categories {
			codes := c[cat]
			if len(codes) == 0 {
				continue
			}
			labels := make([]string, 0, len(codes))
			for _, code := range codes {
				labels = append(labels, labelFor(tax, cat, code))
			}
			fmt.Fprintf(&b, "\n  %s: %s", cat, strings.Join(labels, ", "))
		}
	}
	if e.Comment != "" {
		b.WriteString("\n  ")
		b.WriteString(e.Comment)
	}
	return b.String()
}

func recordSummary(r classifier.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "JNAME     %s\n", r.JName)
	fmt.Fprintf(&b, "BNAME     %s\n", r.BName)
	fmt.Fprintf(&b, "ASSOC     %s\n", r.Assoc)
	fmt.Fprintf(&b, "TYPE      %s\n", r.Type)
	fmt.Fprintf(&b, "CATEGORY  %s\n", r.Category)
	for _, spec := range classifier.NumericFields() {
		if _, ok := r.Values[spec.Name]; !ok {
			continue
		}
		fmt.Fprintf(&b, "%-9s %.6g %s\n", spec.Name, r.Physical(spec.Name), spec.Unit)
	}
	if r.Comments != "" && r.Comments != classifier.SentinelNA {
		fmt.Fprintf(&b, "\n%s\n", r.Comments)
	}
	return b.String()
}
