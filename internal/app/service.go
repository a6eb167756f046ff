package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"lexhaven/api/internal/auth"
	"lexhaven/api/internal/authpw"
	"lexhaven/api/internal/blueprint"
	"lexhaven/api/internal/catalog"
	"lexhaven/api/internal/config"
	"lexhaven/api/internal/export"
	"lexhaven/api/internal/render"
	"lexhaven/api/internal/search"
	"lexhaven/api/internal/session"
	"lexhaven/api/internal/store"
	"lexhaven/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	JTI          string
	ExpiresAt    time.Time
}

// Surface identifies which editing representation a save came from. Exactly
// one surface is authoritative per save.
type Surface string

const (
	SurfaceForm Surface = "form"
	SurfaceJSON Surface = "json"
	SurfaceHTML Surface = "html"
)

// SaveRequest carries one surface's payload. Answers is read for the form
// surface, Raw for the json surface, HTML for the freeform surface.
type SaveRequest struct {
	Surface Surface
	Answers map[string]any
	Raw     string
	HTML    *string
}

// CreateDraftInput references a blueprint and the initial answers.
type CreateDraftInput struct {
	Kind         string
	Jurisdiction string
	Slug         string
	Title        string
	Answers      map[string]any
}

// maxSlugAttempts bounds the probe-and-insert loop: base, base-2, base-3, …
const maxSlugAttempts = 20

type dataStore interface {
	CreateUser(ctx context.Context, user store.User) (store.User, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, userID string) (store.User, error)
	RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)
	InsertDocument(ctx context.Context, item store.Document) (store.Document, error)
	GetDocument(ctx context.Context, documentID string) (store.Document, error)
	ListDocumentsByOwner(ctx context.Context, ownerID string, limit int) ([]store.Document, error)
	UpdateDocumentDraft(ctx context.Context, documentID string, patch store.DraftPatch) (store.Document, error)
	LockDocument(ctx context.Context, documentID string) (time.Time, error)
	SearchDocumentTitles(ctx context.Context, ownerID, query string, limit int) ([]store.Document, error)
	Ping(ctx context.Context) error
}

// sessionStore holds refresh tokens. Redis when configured, Postgres otherwise.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type blueprintCatalog interface {
	Get(kind blueprint.Kind, jurisdiction, slug string) (blueprint.Blueprint, error)
	List(filter catalog.Filter) []blueprint.Summary
	Jurisdictions(kind blueprint.Kind) []string
	Version() string
	Reload() error
	SyncFromGit(ctx context.Context, remoteURL, dir string) (string, error)
}

type exporter interface {
	Export(ctx context.Context, documentID, title, body string) (export.Result, error)
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	catalog  blueprintCatalog
	search   *search.Service
	export   exporter
	authpw   *authpw.Service
}

func New(cfg config.Config, dataStore *store.PostgresStore, cat *catalog.Catalog, searchService *search.Service, exportService *export.Service) *Service {
	return newService(cfg, dataStore, dataStore, cat, searchService, exportService)
}

func NewWithSessionStore(cfg config.Config, dataStore *store.PostgresStore, sessions *session.RedisStore, cat *catalog.Catalog, searchService *search.Service, exportService *export.Service) *Service {
	return newService(cfg, dataStore, sessions, cat, searchService, exportService)
}

func newService(cfg config.Config, ds dataStore, sessions sessionStore, cat blueprintCatalog, searchService *search.Service, exportService exporter) *Service {
	return &Service{
		cfg:      cfg,
		store:    ds,
		sessions: sessions,
		catalog:  cat,
		search:   searchService,
		export:   exportService,
		authpw:   authpw.NewService(ds),
	}
}

// Bootstrap loads the blueprint catalog, syncing from git when a remote is
// configured, and pushes it into the search index.
func (s *Service) Bootstrap(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.CatalogGitURL) != "" {
		version, err := s.catalog.SyncFromGit(ctx, s.cfg.CatalogGitURL, s.cfg.CatalogGitDir)
		if err != nil {
			return err
		}
		log.Printf("catalog synced from git at %s", version)
	} else if err := s.catalog.Reload(); err != nil {
		return err
	}
	if s.search != nil {
		s.search.IndexCatalog()
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ---- identity ----

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (Session, error) {
	user, err := s.authpw.SignUp(ctx, authpw.SignUpRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if errors.Is(err, authpw.ErrEmailTaken) {
		return Session{}, domainError(409, "EMAIL_EXISTS", "Email already registered", nil)
	}
	if err != nil {
		return Session{}, errValidation(err.Error(), nil)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.authpw.SignIn(ctx, authpw.SignInRequest{Email: email, Password: password})
	if errors.Is(err, authpw.ErrInvalidCredentials) {
		return Session{}, domainError(401, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	// The session backend may only store the owner id; refill the profile.
	if user.DisplayName == "" {
		full, lookupErr := s.store.GetUserByID(ctx, user.ID)
		if lookupErr == nil {
			user = full
		}
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:  user.ID,
		Name: user.DisplayName,
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// ---- blueprints ----

func (s *Service) ListBlueprints(kindRaw, jurisdiction, searchTerm string, limit int) map[string]any {
	kind := blueprint.ParseKind(kindRaw)
	summaries := s.catalog.List(catalog.Filter{
		Kind:         kind,
		Jurisdiction: jurisdiction,
		Search:       searchTerm,
		Limit:        limit,
	})

	codes := s.catalog.Jurisdictions(kind)
	jurisdictions := make([]map[string]any, 0, len(codes))
	for _, code := range codes {
		jurisdictions = append(jurisdictions, map[string]any{
			"code":  code,
			"label": catalog.JurisdictionLabel(code),
		})
	}

	return map[string]any{
		"blueprints":     summaries,
		"jurisdictions":  jurisdictions,
		"catalogVersion": s.catalog.Version(),
	}
}

func (s *Service) GetBlueprint(kindRaw, jurisdiction, slug string) (map[string]any, error) {
	kind := blueprint.ParseKind(kindRaw)
	if kind == "" {
		kind = blueprint.KindContract
	}
	if !catalog.JurisdictionSupported(jurisdiction) {
		return nil, errNotFound("Unsupported jurisdiction")
	}
	bp, err := s.catalog.Get(kind, jurisdiction, slug)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, errNotFound("Blueprint not found")
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"blueprint":         bp,
		"jurisdictionLabel": catalog.JurisdictionLabel(bp.Jurisdiction),
	}, nil
}

// Preview renders a blueprint with the supplied answers without persisting
// anything.
func (s *Service) Preview(kindRaw, jurisdiction, slug string, answers map[string]any) (map[string]any, error) {
	kind := blueprint.ParseKind(kindRaw)
	if kind == "" {
		return nil, errValidation("kind must be contract or letter", nil)
	}
	if !catalog.JurisdictionSupported(jurisdiction) {
		return nil, errNotFound("Unsupported jurisdiction")
	}
	bp, err := s.catalog.Get(kind, jurisdiction, slug)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, errNotFound("Blueprint not found")
	}
	if err != nil {
		return nil, err
	}

	if answers == nil {
		answers = map[string]any{}
	}
	metadata := map[string]any{
		"title":             bp.Title,
		"kind":              bp.Kind,
		"slug":              bp.Slug,
		"jurisdiction":      bp.Jurisdiction,
		"jurisdictionLabel": catalog.JurisdictionLabel(bp.Jurisdiction),
		"version":           bp.Version,
		"category":          bp.Category,
		"lawPack":           bp.LawPack,
	}
	if bp.Certificate != nil {
		metadata["certificate"] = bp.Certificate
	}
	if bp.Signatures != nil {
		metadata["signatures"] = bp.Signatures
	}

	return map[string]any{
		"html":     render.Clauses(bp.Clauses, answers),
		"metadata": metadata,
		"answers":  answers,
	}, nil
}

// ---- documents ----

// CreateDraft instantiates a blueprint for an owner. The slug is probed from
// the title base upward (base, base-2, base-3, …); the unique index on slug is
// the backstop for concurrent creation, so a lost race simply counts as a
// collision and the loop moves on.
func (s *Service) CreateDraft(ctx context.Context, ownerID string, input CreateDraftInput) (store.Document, error) {
	kind := blueprint.ParseKind(input.Kind)
	if kind == "" {
		return store.Document{}, errValidation("kind must be contract or letter", nil)
	}
	if !catalog.JurisdictionSupported(input.Jurisdiction) {
		return store.Document{}, errNotFound("Unsupported jurisdiction")
	}
	bp, err := s.catalog.Get(kind, input.Jurisdiction, input.Slug)
	if errors.Is(err, catalog.ErrNotFound) {
		return store.Document{}, errNotFound("Blueprint not found")
	}
	if err != nil {
		return store.Document{}, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = bp.Title
	}

	var content json.RawMessage
	if input.Answers != nil {
		encoded, err := json.Marshal(input.Answers)
		if err != nil {
			return store.Document{}, fmt.Errorf("encode answers: %w", err)
		}
		content = encoded
	}

	var initialHTML *string
	if len(bp.Clauses) > 0 {
		rendered := render.Clauses(bp.Clauses, input.Answers)
		initialHTML = &rendered
	}

	var deadline *time.Time
	if s.cfg.LockDeadlineDays > 0 {
		d := time.Now().Add(time.Duration(s.cfg.LockDeadlineDays) * 24 * time.Hour)
		deadline = &d
	}

	base := util.SlugBase(title)
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := base
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", base, attempt+1)
		}
		inserted, err := s.store.InsertDocument(ctx, store.Document{
			ID:               util.NewID("doc"),
			OwnerID:          ownerID,
			Title:            title,
			Slug:             slug,
			Kind:             string(kind),
			Jurisdiction:     input.Jurisdiction,
			BlueprintSlug:    bp.Slug,
			BlueprintVersion: bp.Version,
			Status:           store.StatusEditable,
			Content:          content,
			HTML:             initialHTML,
			LockDeadline:     deadline,
		})
		if errors.Is(err, store.ErrSlugTaken) {
			continue
		}
		if err != nil {
			return store.Document{}, err
		}
		return inserted, nil
	}
	return store.Document{}, errSlugExhausted(base)
}

func (s *Service) GetDraft(ctx context.Context, documentID, requesterID string) (store.Document, error) {
	return s.ownedDocument(ctx, documentID, requesterID)
}

func (s *Service) ListDrafts(ctx context.Context, ownerID string, limit int) ([]store.Document, error) {
	return s.store.ListDocumentsByOwner(ctx, ownerID, limit)
}

// UpdateDraft applies a partial patch without re-rendering. Surfaces build on
// this through SaveDraft; the patch itself does not consult the lock state.
func (s *Service) UpdateDraft(ctx context.Context, documentID, requesterID string, patch store.DraftPatch) (store.Document, error) {
	if _, err := s.ownedDocument(ctx, documentID, requesterID); err != nil {
		return store.Document{}, err
	}
	if patch.Empty() {
		return store.Document{}, errNothingToUpdate()
	}
	updated, err := s.store.UpdateDocumentDraft(ctx, documentID, patch)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, errNotFound("Document not found")
	}
	return updated, err
}

// SaveDraft reconciles an edit from one surface into the persisted record.
// The form and json surfaces recompute html from answers; the html surface
// overwrites html verbatim and leaves content alone. A locked document, or one
// whose editing deadline has passed, refuses every surface.
func (s *Service) SaveDraft(ctx context.Context, documentID, requesterID string, req SaveRequest) (store.Document, error) {
	doc, err := s.ownedDocument(ctx, documentID, requesterID)
	if err != nil {
		return store.Document{}, err
	}
	if documentLocked(doc, time.Now()) {
		return store.Document{}, errDocumentLocked()
	}

	var patch store.DraftPatch
	switch req.Surface {
	case SurfaceHTML:
		if req.HTML == nil {
			return store.Document{}, errValidation("html is required for the html surface", nil)
		}
		patch = store.DraftPatch{SetHTML: true, HTML: req.HTML}

	case SurfaceJSON:
		answers, parseErr := parseAnswers(req.Raw)
		if parseErr != nil {
			return store.Document{}, errValidation("content is not valid JSON", nil)
		}
		patch, err = s.renderPatch(doc, answers)
		if err != nil {
			return store.Document{}, err
		}

	case SurfaceForm:
		bp, lookupErr := s.documentBlueprint(doc)
		if lookupErr != nil {
			return store.Document{}, lookupErr
		}
		schema := blueprint.DeriveSchema(blueprint.Flatten(bp))
		if failures := schema.Validate(req.Answers); len(failures) > 0 {
			return store.Document{}, errValidation("Some answers are invalid", failures)
		}
		patch, err = renderPatchFor(bp, req.Answers)
		if err != nil {
			return store.Document{}, err
		}

	default:
		return store.Document{}, errValidation("surface must be form, json or html", nil)
	}

	updated, err := s.store.UpdateDocumentDraft(ctx, documentID, patch)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, errNotFound("Document not found")
	}
	if err != nil {
		return store.Document{}, err
	}
	return updated, nil
}

// Lock transitions a document to locked. Idempotent: repeated or concurrent
// calls all report the one locked_at the conditional update produced.
func (s *Service) Lock(ctx context.Context, documentID, requesterID string) (time.Time, error) {
	if _, err := s.ownedDocument(ctx, documentID, requesterID); err != nil {
		return time.Time{}, err
	}
	lockedAt, err := s.store.LockDocument(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, errNotFound("Document not found")
	}
	return lockedAt, err
}

// ExportDocument produces the download artifact: stored html when present,
// otherwise a fresh render from the stored answers.
func (s *Service) ExportDocument(ctx context.Context, documentID, requesterID string) (export.Result, error) {
	doc, err := s.ownedDocument(ctx, documentID, requesterID)
	if err != nil {
		return export.Result{}, err
	}
	if s.export == nil {
		return export.Result{}, errUpstreamUnavailable("Export is not configured")
	}

	body := ""
	if doc.HTML != nil {
		body = *doc.HTML
	} else if bp, bpErr := s.documentBlueprint(doc); bpErr == nil {
		var answers map[string]any
		if len(doc.Content) > 0 {
			_ = json.Unmarshal(doc.Content, &answers)
		}
		body = render.Clauses(bp.Clauses, answers)
	}

	result, err := s.export.Export(ctx, doc.ID, doc.Title, body)
	if err != nil {
		return export.Result{}, fmt.Errorf("export document %s: %w", doc.ID, err)
	}
	return result, nil
}

// Search merges blueprint hits with the caller's own documents.
func (s *Service) Search(ctx context.Context, ownerID, text, kindRaw, jurisdiction string, limit int) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}
	}
	return s.search.Search(ctx, search.Query{
		Text:         text,
		OwnerID:      ownerID,
		Kind:         kindRaw,
		Jurisdiction: jurisdiction,
		Limit:        limit,
	})
}

// ---- helpers ----

func (s *Service) ownedDocument(ctx context.Context, documentID, requesterID string) (store.Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, errNotFound("Document not found")
	}
	if err != nil {
		return store.Document{}, err
	}
	if doc.OwnerID != requesterID {
		return store.Document{}, errForbidden()
	}
	return doc, nil
}

// documentBlueprint resolves the blueprint a document was created from. The
// catalog losing the entry is an upstream fault, not a caller error.
func (s *Service) documentBlueprint(doc store.Document) (blueprint.Blueprint, error) {
	bp, err := s.catalog.Get(blueprint.ParseKind(doc.Kind), doc.Jurisdiction, doc.BlueprintSlug)
	if errors.Is(err, catalog.ErrNotFound) {
		return blueprint.Blueprint{}, errUpstreamUnavailable("Blueprint catalog entry unavailable")
	}
	return bp, err
}

func (s *Service) renderPatch(doc store.Document, answers map[string]any) (store.DraftPatch, error) {
	bp, err := s.documentBlueprint(doc)
	if err != nil {
		return store.DraftPatch{}, err
	}
	return renderPatchFor(bp, answers)
}

func renderPatchFor(bp blueprint.Blueprint, answers map[string]any) (store.DraftPatch, error) {
	encoded, err := json.Marshal(answers)
	if err != nil {
		return store.DraftPatch{}, fmt.Errorf("encode answers: %w", err)
	}
	rendered := render.Clauses(bp.Clauses, answers)
	return store.DraftPatch{
		SetContent: true,
		Content:    encoded,
		SetHTML:    true,
		HTML:       &rendered,
	}, nil
}

func documentLocked(doc store.Document, now time.Time) bool {
	if doc.LockedAt != nil {
		return true
	}
	return doc.LockDeadline != nil && now.After(*doc.LockDeadline)
}

// parseAnswers strictly parses the json surface's raw text. Trailing data
// after the answer object is malformed too.
func parseAnswers(raw string) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	var answers map[string]any
	if err := decoder.Decode(&answers); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, fmt.Errorf("unexpected data after answers object")
	}
	return answers, nil
}
