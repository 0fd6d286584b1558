package web

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/chronobox/internal/calendar"
	"github.com/hpungsan/chronobox/internal/capsule"
	"github.com/hpungsan/chronobox/internal/config"
	"github.com/hpungsan/chronobox/internal/errors"
	"github.com/hpungsan/chronobox/internal/ops"
	"github.com/hpungsan/chronobox/internal/session"
	"github.com/hpungsan/chronobox/internal/store"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    *store.Store
	session  *session.Session
	gateway  *calendar.Gateway
	cfg      *config.Config
	renderer *Renderer
}

// HandleVault handles GET / — list all capsules with their lock states.
func (h *Handlers) HandleVault(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(h.store)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "vault", VaultPageData{
		PageData: PageData{
			Title:    "Vault",
			Version:  h.renderer.version,
			Nav:      "vault",
			SignedIn: h.session.IsSignedIn(),
		},
		Items: result.Items,
		Total: result.Total,
	})
}

// HandleCreateForm handles GET /create — render the capsule creation form.
func (h *Handlers) HandleCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "create", CreatePageData{
		PageData: PageData{
			Title:    "Seal a Capsule",
			Version:  h.renderer.version,
			Nav:      "create",
			SignedIn: h.session.IsSignedIn(),
		},
		MaxImageBytes: h.cfg.ImageMaxBytes,
	})
}

// HandleCreate handles POST /capsules — seal a new capsule. The form is
// multipart so an image file can be attached; the image is inlined as a
// base64 data URL and stored with the capsule.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.ImageMaxBytes + 1); err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("invalid form data"))
		return
	}

	unlockDate, err := parseUnlockDate(r.FormValue("unlock_date"), h.cfg.Location())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	imageURL, err := h.readImage(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	input := ops.CreateInput{
		Message:      r.FormValue("message"),
		ImageURL:     imageURL,
		UnlockDate:   unlockDate,
		SkipReminder: r.FormValue("skip_reminder") == "true",
	}

	result, err := ops.Create(r.Context(), h.store, h.gateway, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusCreated, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleOpen handles GET /open/{id} — the deep-link target written into
// calendar reminders. Locked capsules show a live countdown; unlocked
// capsules reveal their message and image.
func (h *Handlers) HandleOpen(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("capsule ID is required"))
		return
	}

	result, err := ops.Get(h.store, ops.GetInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	locked := result.State == capsule.StateLocked
	data := OpenPageData{
		PageData: PageData{
			Title:    result.Title,
			Version:  h.renderer.version,
			Nav:      "vault",
			SignedIn: h.session.IsSignedIn(),
		},
		Item:   result.Item,
		Locked: locked,
	}
	if !locked {
		data.RenderedMsg = renderMarkdown(result.Message)
	}

	h.renderer.renderPage(w, r, "open", data)
}

// HandleDelete handles DELETE /capsules/{id} — destroy a capsule.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("capsule ID is required"))
		return
	}

	result, err := ops.Delete(h.store, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleSignIn handles POST /auth/signin — acquire a calendar token.
func (h *Handlers) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	result, err := ops.SignIn(r.Context(), h.session)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleSignOut handles POST /auth/signout — revoke and forget the token.
func (h *Handlers) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	result, err := ops.SignOut(r.Context(), h.session)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleAuthStatus handles GET /auth/status — report the session state.
func (h *Handlers) HandleAuthStatus(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, ops.Status(h.session))
}

// readImage extracts an optional uploaded image from the multipart form
// and inlines it as a base64 data URL. Returns "" when no file was sent.
func (h *Handlers) readImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", errors.NewValidation("invalid image upload")
	}
	defer file.Close()

	if header.Size > h.cfg.ImageMaxBytes {
		return "", errors.NewValidation(fmt.Sprintf("image exceeds the %d byte limit", h.cfg.ImageMaxBytes))
	}

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.ImageMaxBytes+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > h.cfg.ImageMaxBytes {
		return "", errors.NewValidation(fmt.Sprintf("image exceeds the %d byte limit", h.cfg.ImageMaxBytes))
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.NewValidation("uploaded file is not an image")
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// parseUnlockDate parses the unlock date from the form. RFC 3339 is
// accepted as-is; the datetime-local format from the browser picker is
// interpreted in the configured time zone.
func parseUnlockDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.NewValidation("unlock date is required")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", value, loc); err == nil {
		return t, nil
	}
	return time.Time{}, errors.NewValidation("unlock date must be RFC 3339 or YYYY-MM-DDTHH:MM")
}
