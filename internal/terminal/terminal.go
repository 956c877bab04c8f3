// Package terminal is a prompt-driven front-end over the session controller.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fmuoria/veriskill/internal/document"
	"github.com/fmuoria/veriskill/internal/export"
	"github.com/fmuoria/veriskill/internal/identity"
	"github.com/fmuoria/veriskill/internal/models"
	"github.com/fmuoria/veriskill/internal/session"
	"github.com/fmuoria/veriskill/internal/views"
)

// Terminal reads commands line by line and renders controller snapshots as text
type Terminal struct {
	reader   *bufio.Reader
	out      io.Writer
	ctrl     *session.Controller
	identity identity.Provider
	maxBytes int64
	interval time.Duration
	ttyFD    int // -1 when input is not a terminal
	log      *slog.Logger

	meta export.ReportMeta
}

// New creates a terminal front-end. maxBytes is only used for the upload hint.
func New(in io.Reader, out io.Writer, ctrl *session.Controller, provider identity.Provider, maxBytes int64, log *slog.Logger) *Terminal {
	return &Terminal{
		reader:   bufio.NewReader(in),
		out:      &lockedWriter{w: out},
		ctrl:     ctrl,
		identity: provider,
		maxBytes: maxBytes,
		interval: views.LoaderInterval,
		ttyFD:    terminalFD(in),
		log:      log,
	}
}

// Run drives the controller until the user quits or input ends
func (t *Terminal) Run(ctx context.Context) error {
	t.printf("VeriSkill AI: skill authenticity audits powered by Gemini\n\n")

	for ctx.Err() == nil {
		snap := t.ctrl.Snapshot()

		var err error
		switch snap.View {
		case models.ViewLanding:
			err = t.landing(snap)
		case models.ViewCredentialEntry:
			err = t.credentials(ctx)
		case models.ViewUpload:
			err = t.upload(snap)
		case models.ViewResults:
			err = t.results(snap)
		default:
			// in-progress is only entered and left inside upload
			t.ctrl.NavigateHome()
		}

		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			t.printf("Goodbye.\n")
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Terminal) landing(snap session.Snapshot) error {
	t.printNavbar(snap)
	t.printf("Verify Skills with AI Precision\n")
	t.printf("Detect exaggerated claims and authenticate resume skills.\n\n")

	choice, err := getText(t.reader, "Press Enter to get started, or q to quit", t.out)
	if err != nil {
		return err
	}
	if choice == "q" {
		return errQuit
	}
	t.report(t.ctrl.Start())
	return nil
}

func (t *Terminal) credentials(ctx context.Context) error {
	var menu strings.Builder
	menu.WriteString("1) Sign in with email\n2) Create an account\n")
	for i, p := range identity.SocialProviders {
		fmt.Fprintf(&menu, "%d) Continue with %s\n", i+3, p)
	}
	menu.WriteString("b) Back\nq) Quit")

	choice, err := getText(t.reader, menu.String(), t.out)
	if err != nil {
		return err
	}

	var cred models.Credential
	switch choice {
	case "q":
		return errQuit
	case "b":
		t.ctrl.NavigateHome()
		return nil
	case "1", "2":
		signUp := choice == "2"
		t.printf("%s\n", views.Auth(signUp).Title)

		var name string
		if signUp {
			if name, err = getText(t.reader, "Full Name", t.out); err != nil {
				return err
			}
		}
		email, err := getText(t.reader, "Email Address", t.out)
		if err != nil {
			return err
		}
		password, err := t.password()
		if errors.Is(err, io.EOF) {
			return err
		}
		if err != nil {
			t.report(err)
			return nil
		}

		if signUp {
			cred, err = t.identity.SignUp(ctx, name, email, password)
		} else {
			cred, err = t.identity.SignIn(ctx, email, password)
		}
		if err != nil {
			t.log.Debug("sign-in rejected", "err", err)
			t.report(err)
			return nil
		}
	default:
		n, convErr := strconv.Atoi(choice)
		if convErr != nil || n < 3 || n-3 >= len(identity.SocialProviders) {
			t.printf("Unknown option %q\n", choice)
			return nil
		}
		provider := identity.SocialProviders[n-3]
		t.printf("Signing in with %s...\n", provider)
		if cred, err = t.identity.Social(ctx, provider); err != nil {
			t.report(err)
			return nil
		}
	}

	t.report(t.ctrl.CompleteSignIn(cred))
	return nil
}

func (t *Terminal) upload(snap session.Snapshot) error {
	t.printNavbar(snap)
	if snap.Error != "" {
		t.printf("Error: %s\n", snap.Error)
	}

	choice, err := getText(t.reader, "a) Analyze a resume  h) Home  s) Sign out  q) Quit", t.out)
	if err != nil {
		return err
	}
	switch choice {
	case "q":
		return errQuit
	case "h":
		t.ctrl.NavigateHome()
		return nil
	case "s":
		t.signOut()
		return nil
	case "a":
	default:
		t.printf("Unknown option %q\n", choice)
		return nil
	}

	link, err := getText(t.reader, "LinkedIn Profile Link", t.out)
	if err != nil {
		return err
	}
	path, err := getText(t.reader, "Resume path (PDF or DOC, "+views.UploadHint(t.maxBytes)+")", t.out)
	if err != nil {
		return err
	}

	var form models.SubmissionForm
	form.ProfileLink = link
	if path != "" {
		doc, err := document.FromFile(path)
		if err != nil {
			t.report(err)
			return nil
		}
		if !views.IsDroppable(doc.MediaType) {
			t.printf("%s\n", views.DropRejectedMessage)
			return nil
		}
		form.Document = doc
	}

	done, err := t.ctrl.Submit(form)
	if err != nil {
		t.report(err)
		return nil
	}
	t.meta = export.NewReportMeta(form.ProfileLink, form.Document.Name)

	messages := views.LoaderMessages()
	t.printf("%s\n(%s)\n", messages[0], views.LoaderHint)
	rotator := views.NewRotator(t.interval, messages, func(msg string) {
		t.printf("%s\n", msg)
	})
	<-done
	rotator.Stop()
	return nil
}

func (t *Terminal) results(snap session.Snapshot) error {
	if snap.Result == nil {
		t.ctrl.NavigateHome()
		return nil
	}
	t.printDashboard(views.NewDashboard(*snap.Result))

	choice, err := getText(t.reader, "r) Check another resume  e) Export to Excel  h) Home  s) Sign out  q) Quit", t.out)
	if err != nil {
		return err
	}
	switch choice {
	case "q":
		return errQuit
	case "r":
		t.report(t.ctrl.Reset())
	case "h":
		t.ctrl.NavigateHome()
	case "s":
		t.signOut()
	case "e":
		defaultName := fmt.Sprintf("VeriSkill_Report_%s.xlsx", time.Now().Format("2006-01-02_150405"))
		path, err := getText(t.reader, "Save report as ["+defaultName+"]", t.out)
		if err != nil {
			return err
		}
		if path == "" {
			path = defaultName
		}
		if err := export.ExportToExcel(*snap.Result, t.meta, path); err != nil {
			t.report(fmt.Errorf("failed to export: %w", err))
			return nil
		}
		t.printf("Report exported to %s\n", path)
	default:
		t.printf("Unknown option %q\n", choice)
	}
	return nil
}

// password hides the input on a terminal and reads a plain line otherwise
func (t *Terminal) password() (string, error) {
	if t.ttyFD < 0 {
		return getText(t.reader, "Password", t.out)
	}
	return getPassword(t.out, t.ttyFD)
}

func (t *Terminal) signOut() {
	t.identity.SignOut()
	t.ctrl.SignOut()
}

func (t *Terminal) printNavbar(snap session.Snapshot) {
	nav := views.Navbar(snap.Credential)
	if nav.SignedIn {
		t.printf("Signed in as %s <%s>\n", nav.Name, nav.Email)
	}
}

func (t *Terminal) printDashboard(dash views.Dashboard) {
	t.printf("\nAuthenticity Score: %s/100\n", dash.ScoreLabel)
	t.printf("%s\n\n", dash.RiskLabel)
	t.printf("AI Audit Summary\n%s\n%s\n\n", dash.Summary, dash.Explanation)
	t.printf("Skill Verification Breakdown\n")
	for _, s := range dash.Skills {
		t.printf("  %-24s %-12s %s %4s\n", s.Name, s.Status, bar(s.BarWidth), s.ConfidenceLabel)
		if s.Reason != "" {
			t.printf("      %q\n", s.Reason)
		}
	}
	t.printf("\n")
}

// bar draws a ten-cell confidence meter
func bar(percent float64) string {
	filled := int(percent/10 + 0.5)
	filled = max(0, min(10, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 10-filled) + "]"
}

// report prints a user-facing error, if any
func (t *Terminal) report(err error) {
	if err != nil {
		t.printf("Error: %s\n", err)
	}
}

func (t *Terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

// lockedWriter serialises writes from the prompt loop and the loader ticker
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
