package views

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/fmuoria/veriskill/internal/document"
	"github.com/fmuoria/veriskill/internal/models"
)

// DropRejectedMessage is shown when a dropped file is not a resume format
const DropRejectedMessage = "Please upload PDF or DOC format"

// AcceptedExtensions are offered by file pickers
var AcceptedExtensions = []string{".pdf", ".doc", ".docx"}

var droppable = []string{document.MediaTypePDF, document.MediaTypeDOC, document.MediaTypeDOCX}

// IsDroppable reports whether a dropped or picked file may be placed in the form.
// Only PDF is analysed; Word files are accepted here and rejected on submit.
func IsDroppable(mediaType string) bool {
	return slices.Contains(droppable, mediaType)
}

// UploadHint is the line under the drop zone. The size is only advertised
// when a limit is actually enforced.
func UploadHint(maxBytes int64) string {
	if maxBytes <= 0 {
		return "or browse your files"
	}
	mb := strconv.FormatFloat(float64(maxBytes)/(1<<20), 'f', -1, 64)
	return fmt.Sprintf("or browse your files (Max %sMB)", mb)
}

// NavbarModel is the signed-in corner of the navigation bar
type NavbarModel struct {
	SignedIn  bool
	Name      string
	Email     string
	AvatarURL string
}

// Navbar builds the navigation bar for the held credential, if any
func Navbar(cred *models.Credential) NavbarModel {
	if cred == nil {
		return NavbarModel{}
	}

	avatar := cred.Avatar
	if avatar == "" {
		avatar = "https://ui-avatars.com/api/?name=" + url.QueryEscape(cred.Name) + "&background=5b7cfa&color=fff"
	}

	return NavbarModel{
		SignedIn:  true,
		Name:      cred.Name,
		Email:     cred.Email,
		AvatarURL: avatar,
	}
}

// AuthText is the copy of the credential form in sign-in or sign-up mode
type AuthText struct {
	SignUp       bool
	Title        string
	Submit       string
	TogglePrompt string
	ToggleAction string
}

// Auth returns the credential form copy for the given mode
func Auth(signUp bool) AuthText {
	if signUp {
		return AuthText{
			SignUp:       true,
			Title:        "Create Account",
			Submit:       "Create Account",
			TogglePrompt: "Already have an account?",
			ToggleAction: "Log In",
		}
	}
	return AuthText{
		Title:        "Welcome Back",
		Submit:       "Sign In",
		TogglePrompt: "Don't have an account?",
		ToggleAction: "Sign Up",
	}
}
