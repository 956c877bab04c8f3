package gui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/veriskill/internal/config"
	"github.com/fmuoria/veriskill/internal/document"
	"github.com/fmuoria/veriskill/internal/export"
	"github.com/fmuoria/veriskill/internal/identity"
	"github.com/fmuoria/veriskill/internal/ingestion"
	"github.com/fmuoria/veriskill/internal/models"
	"github.com/fmuoria/veriskill/internal/session"
	"github.com/fmuoria/veriskill/internal/views"
)

// GmailOpener returns a Gmail source for the signed-in Google account
type GmailOpener func(ctx context.Context) (*ingestion.GmailSource, error)

// Options wires the desktop front-end to the rest of the app
type Options struct {
	App        fyne.App // nil creates a new fyne app
	Controller *session.Controller
	Identity   identity.Provider
	Gmail      GmailOpener // nil hides the Gmail import
	Config     *config.Config
	ConfigPath string
	Log        *slog.Logger
}

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	configPath string
	ctrl       *session.Controller
	identity   identity.Provider
	gmail      GmailOpener
	log        *slog.Logger

	// UI Components
	navbar  *fyne.Container
	content *fyne.Container

	// view-local state, touched on the fyne goroutine only
	view    models.View
	rotator *views.Rotator
	signUp  bool
	form    models.SubmissionForm
	meta    export.ReportMeta
}

// NewApp creates a new GUI application
func NewApp(opts Options) *App {
	a := opts.App
	if a == nil {
		a = app.NewWithID("com.fmuoria.veriskill")
	}
	w := a.NewWindow("VeriSkill AI")
	w.Resize(fyne.NewSize(1100, 760))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     opts.Config,
		configPath: opts.ConfigPath,
		ctrl:       opts.Controller,
		identity:   opts.Identity,
		gmail:      opts.Gmail,
		log:        opts.Log,
		navbar:     container.NewStack(),
		content:    container.NewStack(),
	}

	guiApp.setupUI()

	return guiApp
}

// Run starts the GUI application
func (a *App) Run() {
	unsubscribe := a.ctrl.Subscribe(func(snap session.Snapshot) {
		fyne.Do(func() { a.render(snap) })
	})
	defer unsubscribe()

	a.render(a.ctrl.Snapshot())
	a.mainWindow.ShowAndRun()

	if a.rotator != nil {
		a.rotator.Stop()
	}
}

// setupUI initializes the window layout
func (a *App) setupUI() {
	analyze := container.NewBorder(a.navbar, nil, nil, nil, container.NewVScroll(a.content))

	tabs := container.NewAppTabs(
		container.NewTabItem("Analyze", analyze),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
	a.mainWindow.SetOnDropped(a.handleDrop)
}

// render swaps the visible view for the snapshot
func (a *App) render(snap session.Snapshot) {
	if a.rotator != nil && snap.View != models.ViewInProgress {
		a.rotator.Stop()
		a.rotator = nil
	}
	if snap.View == models.ViewResults && a.view == models.ViewInProgress {
		a.fyneApp.SendNotification(&fyne.Notification{
			Title:   "Analysis Complete",
			Content: views.NewDashboard(*snap.Result).RiskLabel,
		})
	}
	if snap.View == models.ViewLanding || snap.View == models.ViewCredentialEntry {
		a.form = models.SubmissionForm{}
	}
	a.view = snap.View

	a.navbar.Objects = []fyne.CanvasObject{a.createNavbar(snap)}
	a.navbar.Refresh()

	var view fyne.CanvasObject
	switch snap.View {
	case models.ViewCredentialEntry:
		view = a.createAuthView()
	case models.ViewUpload:
		view = a.createUploadView(snap)
	case models.ViewInProgress:
		view = a.createLoaderView()
	case models.ViewResults:
		view = a.createResultsView(snap)
	default:
		view = a.createLandingView()
	}

	a.content.Objects = []fyne.CanvasObject{view}
	a.content.Refresh()
}

func (a *App) createNavbar(snap session.Snapshot) fyne.CanvasObject {
	brand := widget.NewButtonWithIcon("Grex AI", theme.HomeIcon(), a.ctrl.NavigateHome)
	brand.Importance = widget.LowImportance

	nav := views.Navbar(snap.Credential)
	var right fyne.CanvasObject
	if nav.SignedIn {
		var profile *widget.Button
		profile = widget.NewButtonWithIcon(nav.Name, theme.AccountIcon(), func() {
			email := fyne.NewMenuItem(nav.Email, nil)
			email.Disabled = true
			menu := fyne.NewMenu("",
				email,
				fyne.NewMenuItemSeparator(),
				fyne.NewMenuItem("Sign Out", a.handleSignOut),
			)
			pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(profile)
			widget.ShowPopUpMenuAtPosition(menu, a.mainWindow.Canvas(), pos.AddXY(0, profile.Size().Height))
		})
		right = profile
	} else {
		start := widget.NewButton("Get Started", a.handleStart)
		start.Importance = widget.HighImportance
		right = start
	}

	return container.NewVBox(
		container.NewBorder(nil, nil, brand, right),
		widget.NewSeparator(),
	)
}

func (a *App) createLandingView() fyne.CanvasObject {
	badge := widget.NewLabel("POWERED BY GEMINI 3 FLASH")
	badge.Alignment = fyne.TextAlignCenter

	title := widget.NewRichTextFromMarkdown("# Verify Skills with AI Precision")

	intro := widget.NewLabel("VeriSkill AI detects exaggerated claims and authenticates resume skills by analyzing " +
		"technical patterns, project consistency, and GitHub footprints.")
	intro.Wrapping = fyne.TextWrapWord
	intro.Alignment = fyne.TextAlignCenter

	start := widget.NewButton("Start Analysis", a.handleStart)
	start.Importance = widget.HighImportance

	return container.NewPadded(container.NewVBox(
		layoutSpacer(),
		badge,
		container.NewCenter(title),
		intro,
		container.NewCenter(start),
	))
}

func (a *App) createAuthView() fyne.CanvasObject {
	text := views.Auth(a.signUp)

	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("John Doe")
	emailEntry := widget.NewEntry()
	emailEntry.SetPlaceHolder("name@company.com")
	passwordEntry := widget.NewPasswordEntry()

	items := []*widget.FormItem{}
	if a.signUp {
		items = append(items, widget.NewFormItem("Full Name", nameEntry))
	}
	items = append(items,
		widget.NewFormItem("Email Address", emailEntry),
		widget.NewFormItem("Password", passwordEntry),
	)
	form := widget.NewForm(items...)

	submit := widget.NewButton(text.Submit, func() {
		signUp := a.signUp
		name, email, password := nameEntry.Text, emailEntry.Text, passwordEntry.Text
		a.signIn(func(ctx context.Context) (models.Credential, error) {
			if signUp {
				return a.identity.SignUp(ctx, name, email, password)
			}
			return a.identity.SignIn(ctx, email, password)
		})
	})
	submit.Importance = widget.HighImportance

	social := container.NewGridWithColumns(len(identity.SocialProviders))
	for _, p := range identity.SocialProviders {
		provider := p
		social.Add(widget.NewButton(provider, func() {
			a.signIn(func(ctx context.Context) (models.Credential, error) {
				return a.identity.Social(ctx, provider)
			})
		}))
	}

	toggle := widget.NewButton(text.ToggleAction, func() {
		a.signUp = !a.signUp
		a.render(a.ctrl.Snapshot())
	})
	toggle.Importance = widget.LowImportance

	card := widget.NewCard(text.Title, "Enter your details to access Grex AI", container.NewVBox(
		form,
		submit,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("OR CONTINUE WITH", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		social,
		container.NewCenter(container.NewHBox(widget.NewLabel(text.TogglePrompt), toggle)),
	))

	return container.NewCenter(container.NewGridWrap(fyne.NewSize(460, 520), card))
}

// signIn runs the identity provider off the UI goroutine; the Google
// provider waits for the browser consent page
func (a *App) signIn(fn func(ctx context.Context) (models.Credential, error)) {
	go func() {
		cred, err := fn(context.Background())
		if err == nil {
			err = a.ctrl.CompleteSignIn(cred)
		}
		if err != nil {
			a.log.Warn("sign-in failed", "err", err)
			fyne.Do(func() { dialog.ShowError(err, a.mainWindow) })
		}
	}()
}

func (a *App) createUploadView(snap session.Snapshot) fyne.CanvasObject {
	linkEntry := widget.NewEntry()
	linkEntry.SetPlaceHolder("https://linkedin.com/in/username")
	linkEntry.SetText(a.form.ProfileLink)
	linkEntry.OnChanged = func(s string) { a.form.ProfileLink = s }

	fileLabel := widget.NewLabelWithStyle("Drag & drop your PDF/DOC here", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	fileIcon := widget.NewIcon(theme.UploadIcon())
	if a.form.Document != nil {
		fileLabel.SetText(a.form.Document.Name)
		fileIcon.SetResource(theme.ConfirmIcon())
	}
	hint := widget.NewLabel(views.UploadHint(a.config.MaxDocumentBytes()))
	hint.Alignment = fyne.TextAlignCenter

	browse := widget.NewButtonWithIcon("Browse...", theme.FolderOpenIcon(), a.handleBrowse)

	dropZone := widget.NewCard("", "", container.NewVBox(
		container.NewCenter(fileIcon),
		fileLabel,
		hint,
		container.NewCenter(browse),
	))

	submit := widget.NewButtonWithIcon("Start Analysis", theme.MediaPlayIcon(), a.handleSubmit)
	submit.Importance = widget.HighImportance

	body := container.NewVBox(
		widget.NewLabelWithStyle("LINKEDIN PROFILE LINK", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		linkEntry,
		widget.NewLabelWithStyle("RESUME (PDF OR DOC)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		dropZone,
	)
	if a.gmail != nil {
		body.Add(widget.NewButtonWithIcon("Import from Gmail", theme.MailComposeIcon(), a.handleGmailImport))
	}
	if snap.Error != "" {
		errLabel := widget.NewLabel(snap.Error)
		errLabel.Importance = widget.DangerImportance
		errLabel.Wrapping = fyne.TextWrapWord
		body.Add(errLabel)
	}
	body.Add(submit)

	card := widget.NewCard("Upload Resume", "Support for PDF and DOC formats. Gemini will authenticate technical claims.", body)
	return container.NewCenter(container.NewGridWrap(fyne.NewSize(620, 560), card))
}

func (a *App) createLoaderView() fyne.CanvasObject {
	messages := views.LoaderMessages()
	msg := widget.NewLabelWithStyle(messages[0], fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	if a.rotator == nil {
		a.rotator = views.NewRotator(views.LoaderInterval, messages, func(m string) {
			fyne.Do(func() { msg.SetText(m) })
		})
	} else {
		msg.SetText(a.rotator.Current())
	}

	hint := widget.NewLabel(views.LoaderHint)
	hint.Alignment = fyne.TextAlignCenter

	return container.NewCenter(container.NewGridWrap(fyne.NewSize(460, 160), container.NewVBox(
		widget.NewProgressBarInfinite(),
		msg,
		hint,
	)))
}

func (a *App) createResultsView(snap session.Snapshot) fyne.CanvasObject {
	if snap.Result == nil {
		return a.createLandingView()
	}
	result := *snap.Result
	return newDashboardView(views.NewDashboard(result), a.handleReset, func() { a.handleExport(result) })
}

// handleStart handles the landing page call to action
func (a *App) handleStart() {
	if err := a.ctrl.Start(); err != nil {
		dialog.ShowError(err, a.mainWindow)
	}
}

// handleSignOut forgets the credential and any held provider token
func (a *App) handleSignOut() {
	a.identity.SignOut()
	a.ctrl.SignOut()
}

// handleReset starts over with an empty form
func (a *App) handleReset() {
	a.form = models.SubmissionForm{}
	if err := a.ctrl.Reset(); err != nil {
		dialog.ShowError(err, a.mainWindow)
	}
}

// handleBrowse picks a resume with the file dialog
func (a *App) handleBrowse() {
	fd := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		uc.Close()
		a.selectDocument(uc.URI())
	}, a.mainWindow)
	fd.SetFilter(storage.NewExtensionFileFilter(views.AcceptedExtensions))
	fd.Show()
}

// handleDrop accepts files dropped onto the window while the form is shown
func (a *App) handleDrop(_ fyne.Position, uris []fyne.URI) {
	if a.view != models.ViewUpload || len(uris) == 0 {
		return
	}
	a.selectDocument(uris[0])
}

func (a *App) selectDocument(uri fyne.URI) {
	mediaType := uri.MimeType()
	if mediaType == "" || strings.HasPrefix(mediaType, "application/octet-stream") {
		mediaType = mime.TypeByExtension(strings.ToLower(uri.Extension()))
	}

	doc := document.FromOpener(uri.Name(), mediaType, 0, func() (io.ReadCloser, error) {
		return storage.Reader(uri)
	})
	if !views.IsDroppable(doc.MediaType) {
		dialog.ShowInformation("Unsupported file", views.DropRejectedMessage, a.mainWindow)
		return
	}

	a.form.Document = doc
	if doc.MediaType == document.MediaTypePDF {
		if pages, err := document.PageCount(doc); err == nil {
			a.log.Debug("selected resume", "file", uri.Name(), "pages", pages)
		}
	}
	a.render(a.ctrl.Snapshot())
}

// handleSubmit hands the form to the controller
func (a *App) handleSubmit() {
	if _, err := a.ctrl.Submit(a.form); err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}
	a.meta = export.NewReportMeta(a.form.ProfileLink, a.form.Document.Name)
}

// handleGmailImport fetches the newest PDF attachment for a subject
func (a *App) handleGmailImport() {
	subjectEntry := widget.NewEntry()
	subjectEntry.SetPlaceHolder("e.g., Job Application")

	dialog.ShowForm("Import from Gmail", "Import", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Email Subject", subjectEntry)},
		func(ok bool) {
			if !ok || subjectEntry.Text == "" {
				return
			}
			subject := subjectEntry.Text

			progressDialog := dialog.NewCustomWithoutButtons("Gmail",
				widget.NewLabel("Fetching attachment...\nCheck your browser if Google asks for consent."),
				a.mainWindow)
			progressDialog.Show()

			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()

				doc, err := a.fetchFromGmail(ctx, subject)

				fyne.Do(func() {
					progressDialog.Hide()
					if err != nil {
						dialog.ShowError(fmt.Errorf("gmail import failed: %w", err), a.mainWindow)
						return
					}
					a.form.Document = doc
					a.render(a.ctrl.Snapshot())
				})
			}()
		}, a.mainWindow)
}

func (a *App) fetchFromGmail(ctx context.Context, subject string) (*document.Document, error) {
	src, err := a.gmail(ctx)
	if err != nil {
		return nil, err
	}
	return src.LatestResume(ctx, subject)
}

// handleExport handles exporting the result to Excel
func (a *App) handleExport(result models.AnalysisResult) {
	timestamp := time.Now().Format("2006-01-02_150405")
	defaultName := fmt.Sprintf("VeriSkill_Report_%s.xlsx", timestamp)

	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		name, err := saveReport(uc, result, a.meta)
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}

		dialog.ShowInformation("Success", "Report exported successfully to "+name, a.mainWindow)
	}, a.mainWindow)
	save.SetFileName(defaultName)
	save.SetFilter(storage.NewExtensionFileFilter([]string{".xlsx"}))
	save.Show()
}

// saveReport streams the workbook into the writer the save dialog opened,
// whatever name the user typed, and closes it
func saveReport(uc fyne.URIWriteCloser, result models.AnalysisResult, meta export.ReportMeta) (string, error) {
	err := export.WriteReport(uc, result, meta)
	if closeErr := uc.Close(); err == nil {
		err = closeErr
	}
	return uc.URI().Name(), err
}
