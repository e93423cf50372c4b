//go:build gui

package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"net/url"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	fynedesktop "fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/config"
	"github.com/metcalfc/trustfall/internal/faction"
	"github.com/metcalfc/trustfall/internal/menu"
	"github.com/metcalfc/trustfall/internal/soundtrack"
	"github.com/metcalfc/trustfall/internal/story"
	"github.com/metcalfc/trustfall/internal/typewriter"
)

// compactWindowWidth selects portrait backgrounds below this width.
const compactWindowWidth = 768

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var flags playFlags

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the story in a desktop window",
		Long: `Play the story in a desktop window.

Controls:
  CLICK/SPACE/ENTER  Skip the typing, then continue
  ESC                Back to the main menu
  F                  Toggle fullscreen
  Q                  Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			log, cleanup, err := ctx.logger(true)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := newPlayer(cfg, flags, log)
			if err != nil {
				return err
			}
			defer p.Close()

			d := &desktop{p: p, cfg: cfg, log: log.Named("gui")}
			return d.run()
		},
	}
	flags.bind(cmd)
	return cmd
}

// desktop shows the menu, story and faction selection in one window. All
// state is touched from the fyne main goroutine; timers hop back with fyne.Do.
type desktop struct {
	p   *player
	cfg *config.Config
	log *zap.Logger

	app        fyne.App
	win        fyne.Window
	interacted bool
	onKey      func(*fyne.KeyEvent)
	leave      context.CancelFunc
}

func (d *desktop) run() error {
	d.app = app.New()
	d.win = d.app.NewWindow("Trustfall: Vault Wars")
	d.win.Resize(fyne.NewSize(1024, 720))

	d.win.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		d.interact()
		switch key.Name {
		case fyne.KeyF:
			d.win.SetFullScreen(!d.win.FullScreen())
			return
		case fyne.KeyQ:
			d.app.Quit()
			return
		}
		if d.onKey != nil {
			d.onKey(key)
		}
	})
	d.win.SetOnClosed(func() {
		if d.leave != nil {
			d.leave()
		}
	})

	if !d.cfg.Audio.RequireGesture {
		d.interact()
	}
	if err := d.showMenu(menu.Launch); err != nil {
		return err
	}
	d.win.ShowAndRun()
	return nil
}

func (d *desktop) interact() {
	if !d.interacted {
		d.interacted = true
		d.p.music.Interact()
	}
}

// enter replaces the window content, cancelling the work of the previous
// screen.
func (d *desktop) enter(content fyne.CanvasObject, onKey func(*fyne.KeyEvent)) context.Context {
	if d.leave != nil {
		d.leave()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.leave = cancel
	d.onKey = onKey
	d.win.SetContent(container.NewStack(canvas.NewRectangle(color.Black), content))
	return ctx
}

func (d *desktop) compact() bool {
	return d.win.Canvas().Size().Width < compactWindowWidth
}

func (d *desktop) background(ref string) *canvas.Image {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	d.setBackground(img, ref)
	return img
}

func (d *desktop) setBackground(img *canvas.Image, ref string) {
	var src image.Image
	if ref != "" {
		src, _ = d.p.images.Image(ref)
	}
	img.Image = src
	if src == nil {
		img.Hide()
	} else {
		img.Show()
	}
	img.Refresh()
}

func themedText(s string, hex string, size float32, bold bool) *canvas.Text {
	t := canvas.NewText(s, parseHex(hex))
	t.TextSize = size
	t.TextStyle.Bold = bold
	t.Alignment = fyne.TextAlignCenter
	return t
}

func parseHex(hex string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.White
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func (d *desktop) showMenu(origin menu.Origin) error {
	m, err := menu.Open(d.p.store, origin, d.log)
	if err != nil {
		return err
	}
	d.p.music.SetTrack(m.Track())
	theme := m.Theme()

	items := []fyne.CanvasObject{
		themedText(menu.Title, theme.Primary, 64, true),
		themedText(menu.Subtitle, theme.Secondary, 24, false),
		themedText(menu.Welcome, theme.Secondary, 16, false),
		layout.NewSpacer(),
	}
	for _, opt := range m.Options() {
		action := opt.Action
		btn := widget.NewButton(opt.Label, func() {
			d.interact()
			d.chooseMenu(m, action)
		})
		if action == menu.StartStory {
			btn.Importance = widget.HighImportance
		}
		items = append(items, btn)
	}
	if hint := m.Hint(); hint != "" {
		items = append(items, themedText(hint, "#9CA3AF", 12, false))
	}
	if status := m.Status(); status != "" {
		items = append(items,
			themedText(menu.StatusHead, theme.Secondary, 12, false),
			themedText(status, theme.Primary, 16, true))
	}
	items = append(items, layout.NewSpacer(), widget.NewHyperlink(menu.Credit, mustParseURL(menu.CreditURL)))

	d.enter(container.NewCenter(container.NewVBox(items...)), nil)
	return nil
}

func (d *desktop) chooseMenu(m *menu.Menu, action menu.Action) {
	dest, err := m.Select(action)
	if err != nil {
		d.log.Warn("menu action failed", zap.Error(err))
		return
	}
	switch dest {
	case menu.Story:
		d.p.effects.Play(soundtrack.ProtocolStart)
		d.showStory()
	case menu.FactionSelect:
		d.p.effects.Play(soundtrack.Click)
		d.showSelection(menu.NewSelection(d.p.store, d.compact()))
	case menu.Signup:
		d.p.effects.Play(soundtrack.Click)
		d.showSelection(menu.ResumeSignup(d.p.store, m.Faction(), d.compact()))
	}
}

func (d *desktop) showStory() {
	seq, err := story.New(d.p.story, d.p.music, d.p.images, story.Options{
		Priority:   d.cfg.Story.PriorityImages,
		Transition: transition(d.cfg),
		Typing:     d.cfg.Story.TypingInterval(),
		Tracks:     soundtrack.TrackForSlide,
		Logger:     d.log,
	})
	if err != nil {
		d.log.Error("story unavailable", zap.Error(err))
		return
	}

	loading := container.NewCenter(container.NewVBox(
		themedText("INITIALIZING TRUSTFALL PROTOCOL", "#4ADE80", 20, true),
		widget.NewProgressBarInfinite(),
	))
	ctx := d.enter(loading, nil)

	bg := d.background("")
	text := widget.NewLabel("")
	text.Wrapping = fyne.TextWrapWord
	text.Alignment = fyne.TextAlignCenter
	hint := widget.NewLabel("")
	hint.Alignment = fyne.TextAlignCenter
	counter := widget.NewLabel("")

	refresh := func() {
		line := seq.Text()
		if seq.Typing() {
			line += "▌"
			hint.SetText("Click to skip...")
		} else {
			hint.SetText("Click to continue...")
		}
		text.SetText(line)
		counter.SetText(seq.Counter())
		ref := seq.Background()
		if seq.Transitioning() {
			ref = ""
		}
		d.setBackground(bg, ref)
	}

	var schedule func(story.Result)
	later := func(delay time.Duration, f func()) {
		time.AfterFunc(delay, func() {
			fyne.Do(func() {
				if ctx.Err() == nil {
					f()
				}
			})
		})
	}
	schedule = func(r story.Result) {
		switch {
		case r.SlideChanged && seq.Index() > 0:
			d.p.effects.Play(soundtrack.SlideTransition)
		case r.Outcome == typewriter.NextLine:
			d.p.effects.Play(soundtrack.TextAdvance)
		}
		if r.Exited {
			d.showSelection(menu.NewSelection(d.p.store, d.compact()))
			return
		}
		if session := r.Tick; session != nil {
			later(seq.TickInterval(), func() { schedule(seq.Tick(session)) })
		}
		if t := r.Transition; t != nil {
			later(seq.TransitionDuration(), func() { schedule(seq.CompleteTransition(t)) })
		}
		if ref := r.Display; ref != "" {
			go func() {
				seq.Prefetch(ctx, ref)
				fyne.Do(func() {
					if ctx.Err() == nil {
						refresh()
					}
				})
			}()
		}
		if ref := r.Prefetch; ref != "" && ref != r.Display {
			go seq.Prefetch(ctx, ref)
		}
		refresh()
	}
	click := func() {
		d.interact()
		schedule(seq.Click())
	}

	box := container.NewVBox(text, hint)
	scene := container.NewBorder(
		container.NewHBox(layout.NewSpacer(), counter),
		container.NewPadded(container.NewStack(canvas.NewRectangle(color.NRGBA{A: 204}), box)),
		nil, nil,
		bg,
	)
	onKey := func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace, fyne.KeyReturn, fyne.KeyEnter, fyne.KeyRight:
			click()
		case fyne.KeyEscape:
			if err := d.showMenu(menu.Launch); err != nil {
				d.log.Error("menu unavailable", zap.Error(err))
			}
		}
	}

	go func() {
		seq.PreloadPriority(ctx)
		fyne.Do(func() {
			if ctx.Err() != nil {
				return
			}
			d.onKey = onKey
			d.win.SetContent(container.NewStack(canvas.NewRectangle(color.Black), newTappable(scene, click, nil)))
			schedule(seq.Begin())
		})
		seq.PreloadRemaining(ctx)
	}()
}

func (d *desktop) showSelection(sel *menu.Selection) {
	d.p.music.SetTrack("faction-selection")
	if sel.Phase() >= menu.Form {
		d.showForm(sel)
		return
	}

	bg := d.background(sel.Background())
	status := themedText("", "#FFFFFF", 24, true)
	cards := make([]fyne.CanvasObject, 0, len(faction.All))
	var ctx context.Context
	for _, f := range faction.All {
		theme := f.Theme()
		lines := []fyne.CanvasObject{themedText(f.Banner(), theme.Primary, 22, true)}
		for _, m := range f.Motto() {
			lines = append(lines, themedText(m, theme.Secondary, 14, false))
		}
		for _, t := range f.Traits() {
			lines = append(lines, themedText("• "+t, theme.Secondary, 12, false))
		}
		card := container.NewStack(canvas.NewRectangle(color.NRGBA{A: 170}), container.NewPadded(container.NewVBox(lines...)))
		cards = append(cards, newTappable(card, func() {
			d.interact()
			if err := sel.Choose(f); err != nil {
				d.log.Warn("faction selection failed", zap.Error(err))
				return
			}
			d.p.effects.Play(soundtrack.FactionSelect)
			status.Text = sel.ChosenBanner()
			status.Color = parseHex(theme.Primary)
			status.Refresh()
			time.AfterFunc(menu.ConfirmDelay, func() {
				fyne.Do(func() {
					if ctx.Err() == nil {
						sel.ShowForm()
						d.showForm(sel)
					}
				})
			})
		}, func(in bool) {
			if in {
				sel.Hover(f)
				d.p.effects.Play(soundtrack.Hover)
			} else {
				sel.Hover("")
			}
			d.setBackground(bg, sel.Background())
		}))
	}

	grid := container.NewGridWithColumns(len(cards), cards...)
	if d.compact() {
		grid = container.NewGridWithRows(len(cards), cards...)
	}
	content := container.NewStack(bg, container.NewBorder(
		container.NewVBox(
			themedText(menu.SelectTitle, "#FFFFFF", 32, true),
			widget.NewLabelWithStyle(menu.SelectIntro, fyne.TextAlignCenter, fyne.TextStyle{}),
		),
		status, nil, nil,
		container.NewCenter(grid),
	))
	ctx = d.enter(content, func(key *fyne.KeyEvent) {
		if key.Name == fyne.KeyEscape {
			d.continueToMenu(sel)
		}
	})
	go func() {
		compact := d.compact()
		refs := []string{faction.Background("", compact)}
		for _, f := range faction.All {
			refs = append(refs, faction.Background(f, compact))
		}
		if err := d.p.images.PreloadAll(ctx, refs); err != nil {
			d.log.Warn("faction backgrounds incomplete", zap.Error(err))
		}
		fyne.Do(func() {
			if ctx.Err() == nil {
				d.setBackground(bg, sel.Background())
			}
		})
	}()
}

func (d *desktop) showForm(sel *menu.Selection) {
	theme := sel.Chosen().Theme()
	failure := themedText(sel.Failure(), "#F87171", 14, false)

	if sel.Phase() == menu.Submitted {
		d.enter(container.NewCenter(container.NewVBox(
			themedText(menu.SuccessTitle, "#4ADE80", 28, true),
			themedText(menu.SuccessWelcome, theme.Secondary, 16, false),
			themedText(menu.SuccessStatus, theme.Primary, 16, true),
			widget.NewLabelWithStyle(menu.SuccessFollowUp, fyne.TextAlignCenter, fyne.TextStyle{}),
			widget.NewButton(menu.ContinueLabel, func() { d.continueToMenu(sel) }),
		)), nil)
		return
	}

	email := widget.NewEntry()
	email.SetPlaceHolder(menu.FormPlaceholder)
	var ctx context.Context
	var submit *widget.Button
	submit = widget.NewButton(menu.SubmitLabel, func() {
		addr, ok := sel.BeginSubmit(email.Text)
		if !ok {
			return
		}
		d.p.effects.Play(soundtrack.Click)
		submit.SetText(menu.SubmittingLabel)
		submit.Disable()
		chosen := sel.Chosen()
		go func() {
			reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			defer cancel()
			_, err := d.p.subscriber.Subscribe(reqCtx, addr, chosen)
			if err != nil {
				d.log.Warn("signup failed", zap.String("faction", chosen.String()), zap.Error(err))
			}
			fyne.Do(func() {
				if ctx.Err() != nil {
					return
				}
				sel.FinishSubmit(err)
				if err == nil {
					d.p.effects.Play(soundtrack.ProtocolStart)
				}
				d.showForm(sel)
			})
		}()
	})
	submit.Importance = widget.HighImportance
	email.OnSubmitted = func(string) { submit.OnTapped() }

	ctx = d.enter(container.NewCenter(container.NewVBox(
		themedText(sel.WelcomeBanner(), theme.Primary, 28, true),
		themedText(menu.FormHeader, theme.Primary, 16, true),
		themedText(menu.FormIntro, theme.Secondary, 14, false),
		widget.NewLabel(menu.FormLabel),
		email,
		submit,
		failure,
		widget.NewButton(menu.ContinueLabel, func() { d.continueToMenu(sel) }),
	)), func(key *fyne.KeyEvent) {
		if key.Name == fyne.KeyEscape {
			d.continueToMenu(sel)
		}
	})
	d.win.Canvas().Focus(email)
}

func (d *desktop) continueToMenu(sel *menu.Selection) {
	origin, err := sel.Continue()
	if err != nil {
		d.log.Warn("could not record completion", zap.Error(err))
	}
	if err := d.showMenu(origin); err != nil {
		d.log.Error("menu unavailable", zap.Error(err))
	}
}

// tappable wraps content with tap and hover callbacks.
type tappable struct {
	widget.BaseWidget
	content fyne.CanvasObject
	onTap   func()
	onHover func(in bool)
}

var (
	_ fyne.Tappable         = (*tappable)(nil)
	_ fynedesktop.Hoverable = (*tappable)(nil)
)

func newTappable(content fyne.CanvasObject, onTap func(), onHover func(bool)) *tappable {
	t := &tappable{content: content, onTap: onTap, onHover: onHover}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tappable) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

func (t *tappable) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap()
	}
}

func (t *tappable) MouseIn(*fynedesktop.MouseEvent) {
	if t.onHover != nil {
		t.onHover(true)
	}
}

func (t *tappable) MouseMoved(*fynedesktop.MouseEvent) {}

func (t *tappable) MouseOut() {
	if t.onHover != nil {
		t.onHover(false)
	}
}
