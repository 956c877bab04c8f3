package gui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/veriskill/internal/config"
	"github.com/fmuoria/veriskill/internal/llm"
)

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	apiKeyEntry := widget.NewPasswordEntry()
	apiKeyEntry.SetText(a.config.GeminiAPIKey)

	backendSelect := widget.NewSelect([]string{llm.BackendGemini, llm.BackendVertex}, nil)
	backendSelect.SetSelected(a.config.Backend)

	modelEntry := widget.NewEntry()
	modelEntry.SetText(a.config.Model)

	projectEntry := widget.NewEntry()
	projectEntry.SetText(a.config.GoogleCloudProject)

	locationEntry := widget.NewEntry()
	locationEntry.SetText(a.config.GoogleCloudLocation)

	googleCredsEntry := widget.NewEntry()
	googleCredsEntry.SetText(a.config.GoogleCredentialsPath)

	oauthCredsEntry := widget.NewEntry()
	oauthCredsEntry.SetText(a.config.OAuthCredentialsPath)

	identitySelect := widget.NewSelect([]string{"simulated", "google"}, nil)
	identitySelect.SetSelected(a.config.IdentityProvider)

	maxSizeEntry := widget.NewEntry()
	maxSizeEntry.SetPlaceHolder("0 = no limit")
	if a.config.MaxDocumentMB > 0 {
		maxSizeEntry.SetText(strconv.Itoa(a.config.MaxDocumentMB))
	}

	form := widget.NewForm(
		widget.NewFormItem("Gemini API Key", apiKeyEntry),
		widget.NewFormItem("Model Backend", backendSelect),
		widget.NewFormItem("Model", modelEntry),
		widget.NewFormItem("Google Cloud Project", projectEntry),
		widget.NewFormItem("Google Cloud Location", locationEntry),
		widget.NewFormItem("Google Credentials", a.pathPicker(googleCredsEntry)),
		widget.NewFormItem("Sign-in", identitySelect),
		widget.NewFormItem("OAuth Client Credentials", a.pathPicker(oauthCredsEntry)),
		widget.NewFormItem("Max Resume Size (MB)", maxSizeEntry),
	)

	// collect copies the form into a candidate config without touching the live one
	collect := func() (*config.Config, error) {
		cfg := *a.config
		cfg.GeminiAPIKey = strings.TrimSpace(apiKeyEntry.Text)
		cfg.Backend = backendSelect.Selected
		cfg.Model = strings.TrimSpace(modelEntry.Text)
		cfg.GoogleCloudProject = projectEntry.Text
		cfg.GoogleCloudLocation = locationEntry.Text
		cfg.GoogleCredentialsPath = googleCredsEntry.Text
		cfg.IdentityProvider = identitySelect.Selected
		cfg.OAuthCredentialsPath = oauthCredsEntry.Text
		cfg.MaxDocumentMB = 0
		if s := strings.TrimSpace(maxSizeEntry.Text); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("max resume size must be a whole number: %w", err)
			}
			cfg.MaxDocumentMB = n
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	saveBtn := widget.NewButton("Save Settings", func() {
		cfg, err := collect()
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		if err := cfg.SaveTo(a.configPath); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		*a.config = *cfg

		dialog.ShowInformation("Success", "Settings saved. Restart VeriSkill to apply model and sign-in changes.", a.mainWindow)
	})

	testBtn := widget.NewButton("Test Connection", func() {
		cfg, err := collect()
		if err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}

		progressDialog := dialog.NewCustomWithoutButtons("Testing",
			widget.NewLabel("Contacting "+cfg.Backend+"..."), a.mainWindow)
		progressDialog.Show()

		go func() {
			err := pingModel(cfg)
			fyne.Do(func() {
				progressDialog.Hide()
				if err != nil {
					dialog.ShowError(fmt.Errorf("connection failed: %w", err), a.mainWindow)
					return
				}
				dialog.ShowInformation("Success", "Configuration is valid and the model responded", a.mainWindow)
			})
		}()
	})

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, testBtn),
	)
}

func (a *App) pathPicker(entry *widget.Entry) fyne.CanvasObject {
	btn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				entry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})
	return container.NewBorder(nil, nil, nil, btn, entry)
}

// pingModel sends a one-line prompt through the configured backend
func pingModel(cfg *config.Config) error {
	gen, err := llm.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = gen.Generate(ctx, llm.Request{
		Parts: []llm.Part{llm.TextPart("Reply with the single word OK.")},
	})
	return err
}
