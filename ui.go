package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/fremen-fi/audioshell/internal/config"
	"github.com/fremen-fi/audioshell/internal/form"
	"github.com/fremen-fi/audioshell/internal/history"
	"github.com/fremen-fi/audioshell/internal/launcher"
	"github.com/fremen-fi/audioshell/internal/logging"
	"github.com/fremen-fi/audioshell/internal/operation"
	"github.com/fremen-fi/audioshell/internal/paths"
)

const (
	noInputText  = "No input selected"
	noOutputText = "No output folder selected"
	dropText     = "Drop an audio file or folder here"
	notAudioText = "This does not look like an audio file"
)

// shell is the operation window.
type shell struct {
	ctx      context.Context
	app      fyne.App
	window   fyne.Window
	form     *form.State
	launcher *launcher.Launcher
	store    *history.Store
	log      zerolog.Logger

	// newPicker opens native dialogs starting in dir.
	newPicker func(dir string) paths.Picker

	cfgMu   sync.Mutex
	cfg     *config.Config
	cfgPath string

	dropLabel   *widget.Label
	inputLabel  *widget.Label
	outputLabel *widget.Label
	descLabel   *widget.Label
	statusLabel *widget.Label

	inputFileBtn *widget.Button
	inputDirBtn  *widget.Button
	outputBtn    *widget.Button
	submitBtn    *widget.Button
	cancelBtn    *widget.Button
	opSelect     *widget.Select
	progress     *widget.ProgressBarInfinite
	output       *widget.Entry
}

// newShell takes its logger from ctx.
func newShell(ctx context.Context, a fyne.App, w fyne.Window, cfg *config.Config, cfgPath string, l *launcher.Launcher, store *history.Store) *shell {
	return &shell{
		ctx:      ctx,
		app:      a,
		window:   w,
		form:     form.New(),
		launcher: l,
		store:    store,
		log:      *logging.FromContext(ctx),
		cfg:      cfg,
		cfgPath:  cfgPath,
		newPicker: func(dir string) paths.Picker {
			return paths.NativePicker{Dir: dir}
		},
	}
}

func (s *shell) build() {
	s.dropLabel = widget.NewLabelWithStyle(dropText, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	s.inputLabel = widget.NewLabel(noInputText)
	s.inputLabel.Truncation = fyne.TextTruncateEllipsis
	s.outputLabel = widget.NewLabel(noOutputText)
	s.outputLabel.Truncation = fyne.TextTruncateEllipsis
	s.descLabel = widget.NewLabel("")
	s.descLabel.Wrapping = fyne.TextWrapWord
	s.statusLabel = widget.NewLabel("")

	s.inputFileBtn = widget.NewButtonWithIcon("Input File", theme.FileAudioIcon(), func() {
		s.pick(form.TargetInput, paths.KindFile)
	})
	s.inputDirBtn = widget.NewButtonWithIcon("Input Folder", theme.FolderOpenIcon(), func() {
		s.pick(form.TargetInput, paths.KindDirectory)
	})
	s.outputBtn = widget.NewButtonWithIcon("Output Folder", theme.FolderIcon(), func() {
		s.pick(form.TargetOutput, paths.KindDirectory)
	})

	s.opSelect = widget.NewSelect(operation.Names(), func(name string) {
		s.form.SetOperation(name)
		s.descLabel.SetText(operation.Parse(name).Description())
		s.refresh()
	})
	s.opSelect.PlaceHolder = "Select operation"

	s.submitBtn = widget.NewButton(s.form.SubmitLabel(), s.submit)
	s.submitBtn.Importance = widget.HighImportance
	s.cancelBtn = widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), s.cancel)
	s.cancelBtn.Disable()

	s.progress = widget.NewProgressBarInfinite()
	s.progress.Stop()
	s.progress.Hide()

	s.output = widget.NewMultiLineEntry()
	s.output.Wrapping = fyne.TextWrapWord
	s.output.SetPlaceHolder("Worker output will appear here...")
	s.output.Disable()

	historyBtn := widget.NewButtonWithIcon("History", theme.HistoryIcon(), s.showHistory)
	if s.store == nil {
		historyBtn.Disable()
	}
	logBtn := widget.NewButtonWithIcon("Open Log", theme.DocumentIcon(), s.openLog)

	top := container.NewVBox(
		widget.NewCard("", "", container.NewPadded(s.dropLabel)),
		container.NewGridWithColumns(2, s.inputFileBtn, s.inputDirBtn),
		container.NewBorder(nil, nil, widget.NewLabel("Input:"), nil, s.inputLabel),
		widget.NewSeparator(),
		s.outputBtn,
		container.NewBorder(nil, nil, widget.NewLabel("Output:"), nil, s.outputLabel),
		widget.NewSeparator(),
		s.opSelect,
		s.descLabel,
		s.statusLabel,
		container.NewGridWithColumns(2, s.submitBtn, s.cancelBtn),
		s.progress,
	)
	bottom := container.NewHBox(layout.NewSpacer(), historyBtn, logBtn)

	s.window.SetContent(container.NewBorder(top, bottom, nil, nil, s.output))
	s.window.SetOnDropped(s.dropped)
	s.refresh()
}

// refresh mirrors the form state into the widgets.
func (s *shell) refresh() {
	if in := s.form.Input(); in != "" {
		s.inputLabel.SetText(paths.DisplayName(in))
	} else {
		s.inputLabel.SetText(noInputText)
	}
	switch out := s.form.Output(); {
	case out == "":
		s.outputLabel.SetText(noOutputText)
	case s.form.OutputIsDefault():
		s.outputLabel.SetText(form.DefaultOutputHint)
	default:
		s.outputLabel.SetText(paths.DisplayName(out))
	}
	s.submitBtn.SetText(s.form.SubmitLabel())

	editable := s.form.Editable()
	for _, w := range []fyne.Disableable{s.inputFileBtn, s.inputDirBtn, s.outputBtn, s.opSelect, s.submitBtn} {
		if editable {
			w.Enable()
		} else {
			w.Disable()
		}
	}
	if editable {
		s.cancelBtn.Disable()
	} else {
		s.cancelBtn.Enable()
	}
}

func (s *shell) pick(target form.Target, kind paths.Kind) {
	if !s.form.Editable() {
		return
	}
	dir := ""
	if target == form.TargetOutput {
		dir = s.config().State.LastOutputDir
	}
	picker := s.newPicker(dir)
	go func() {
		sel, err := picker.Pick(kind)
		fyne.Do(func() {
			if err != nil {
				s.log.Warn().Err(err).Str("kind", kind.String()).Msg("picker failed")
				dialog.ShowError(err, s.window)
				return
			}
			s.applySelection(target, sel)
		})
	}()
}

func (s *shell) applySelection(target form.Target, sel paths.Selection) {
	warning, err := s.form.ApplySelection(target, sel)
	if err != nil {
		dialog.ShowError(err, s.window)
	}
	if warning != "" {
		dialog.ShowInformation("Nothing selected", warning, s.window)
	}
	s.refresh()
	if target == form.TargetInput && sel.Selected {
		s.reportAudio(sel.Path)
	}
}

func (s *shell) dropped(_ fyne.Position, uris []fyne.URI) {
	if !s.form.Editable() {
		return
	}
	dropped := make([]string, 0, len(uris))
	for _, u := range uris {
		dropped = append(dropped, u.Path())
	}
	path, err := paths.ResolveDropped(dropped)
	switch {
	case errors.Is(err, paths.ErrMultipleDropped):
		dialog.ShowInformation("Too many items", "Please drop a single file or folder.", s.window)
		return
	case err != nil:
		return
	}
	s.applySelection(form.TargetInput, paths.Selected(path))
}

// reportAudio counts the audio files in a folder input in the background,
// and flags a file input whose extension is not a known audio one.
func (s *shell) reportAudio(path string) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		s.statusLabel.SetText("")
		return
	case !info.IsDir():
		if paths.IsAudioFile(path) {
			s.statusLabel.SetText("")
		} else {
			s.log.Warn().Str("path", path).Msg("input is not a known audio file")
			s.statusLabel.SetText(notAudioText)
		}
		return
	}
	s.statusLabel.SetText("Scanning folder...")
	go func() {
		files, err := paths.ScanAudio(path)
		fyne.Do(func() {
			if s.form.Input() != path {
				return
			}
			if err != nil {
				s.log.Warn().Err(err).Str("dir", path).Msg("scan input folder")
				s.statusLabel.SetText("")
				return
			}
			s.statusLabel.SetText(fmt.Sprintf("Found %s", english.Plural(len(files), "audio file", "")))
		})
	}()
}

func (s *shell) submit() {
	req := s.form.Request()
	if err := req.Validate(); err != nil {
		dialog.ShowInformation("Form is not fully filled", err.Error(), s.window)
		return
	}
	events, err := s.launcher.Submit(s.ctx, req)
	switch {
	case errors.Is(err, launcher.ErrBusy):
		dialog.ShowInformation("Busy", "An operation is already running.", s.window)
		return
	case err != nil:
		dialog.ShowError(err, s.window)
		return
	}
	s.output.SetText("")
	go func() {
		for ev := range events {
			fyne.Do(func() { s.apply(ev, req) })
		}
	}()
}

// apply renders one launcher event. It runs on the fyne main goroutine.
func (s *shell) apply(ev launcher.Event, req operation.Request) {
	switch ev.Kind {
	case launcher.EventStarted:
		s.form.Lock()
		s.progress.Show()
		s.progress.Start()
		s.refresh()
	case launcher.EventOutput:
		s.output.Append(ev.Chunk.Text)
	case launcher.EventFinished:
		s.form.Unlock()
		s.progress.Stop()
		s.progress.Hide()
		s.refresh()
		s.finished(ev.Outcome, req)
	}
}

func (s *shell) finished(outcome launcher.Outcome, req operation.Request) {
	switch {
	case outcome.Canceled:
		dialog.ShowInformation("Canceled", "The operation was canceled.", s.window)
	case outcome.Success:
		s.rememberOutput(req.OutputPath)
		dialog.ShowInformation("Done", fmt.Sprintf("%s finished in %s.", req.Operation.Label(), outcome.Duration.Round(100*time.Millisecond)), s.window)
	default:
		dialog.ShowInformation("Failed", "Operation FAILED!", s.window)
	}
}

func (s *shell) cancel() {
	if s.launcher.Cancel() {
		s.cancelBtn.Disable()
		s.output.Append("Canceling...\n")
	}
}

func (s *shell) config() config.Config {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	return *s.cfg
}

// setConfig takes a reloaded config. It may be called from any goroutine.
func (s *shell) setConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
	fyne.Do(func() { s.window.SetTitle(cfg.Window.Title) })
}

// rememberOutput stores the last used output folder for the next picker.
func (s *shell) rememberOutput(dir string) {
	s.cfgMu.Lock()
	if s.cfg.State.LastOutputDir == dir || s.cfgPath == "" {
		s.cfgMu.Unlock()
		return
	}
	updated := *s.cfg
	updated.State.LastOutputDir = dir
	s.cfg = &updated
	path := s.cfgPath
	s.cfgMu.Unlock()

	go func() {
		if err := config.SaveState(path, updated.State); err != nil {
			s.log.Warn().Err(err).Msg("save last output folder")
		}
	}()
}

func (s *shell) openLog() {
	path := filepath.Join(s.config().Logging.Dir, logging.FileName)
	if _, err := os.Stat(path); err != nil {
		dialog.ShowInformation("No Log File", "No log file found. Try running an operation first.", s.window)
		return
	}
	u, err := url.Parse(storage.NewFileURI(path).String())
	if err == nil {
		err = s.app.OpenURL(u)
	}
	if err != nil {
		dialog.ShowError(errors.Errorf("failed to open log file, it is located at:\n%s", path), s.window)
	}
}

func (s *shell) showHistory() {
	if s.store == nil {
		return
	}
	entries, err := s.store.List(s.ctx, 15)
	if err != nil {
		dialog.ShowError(err, s.window)
		return
	}
	list := container.NewVBox()
	if len(entries) == 0 {
		list.Add(widget.NewLabel("No operations recorded yet."))
	}
	for _, e := range entries {
		list.Add(widget.NewLabel(fmt.Sprintf("%s  %s  %s  (%s)",
			e.Request.Operation.Label(), paths.DisplayName(e.Request.InputPath), e.Status(), humanize.Time(e.StartedAt))))
	}
	scroll := container.NewVScroll(list)
	scroll.SetMinSize(fyne.NewSize(480, 320))
	dialog.ShowCustom("Recent operations", "Close", scroll, s.window)
}
