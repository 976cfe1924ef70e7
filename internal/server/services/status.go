// Package services contains the server-side business logic. StatusService
// runs the publish and view flows on top of the access controller, the
// status repository and the page renderer.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/nowstatus/internal/logging"
	"github.com/dmitrijs2005/nowstatus/internal/server/access"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
	"github.com/dmitrijs2005/nowstatus/internal/server/repositories/statuses"
)

// PublishRequest is what the publisher sends to POST /post.
type PublishRequest struct {
	Role    string `json:"role"`
	Session string `json:"session"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Image   string `json:"image"`
}

// Renderer builds the page for a segment.
type Renderer interface {
	Render(seg models.Segment, st models.Status) ([]byte, error)
}

type StatusService struct {
	access   *access.Controller
	repo     statuses.Repository
	renderer Renderer
	logger   logging.Logger
}

func NewStatusService(ac *access.Controller, repo statuses.Repository, r Renderer, logger logging.Logger) *StatusService {
	return &StatusService{access: ac, repo: repo, renderer: r, logger: logger.With("module", "statuses")}
}

// Publish authorizes, validates and stores req. Checks run in order and stop
// at the first failure: admin token (common.ErrorUnauthorized), segment
// (common.ErrorInvalidSegment), field sizes (common.ErrorValidation), then
// the write itself (common.ErrorStorage). A rejected request stores nothing.
func (s *StatusService) Publish(ctx context.Context, req PublishRequest) error {
	log := s.logger.With(
		"role", req.Role,
		"title_len", utf8.RuneCountInString(req.Title),
		"text_len", utf8.RuneCountInString(req.Text),
		"image_len", len(req.Image),
	)

	if err := s.access.AuthorizePublish(req.Session); err != nil {
		log.Warn(ctx, "publish rejected", "reason", "unauthorized")
		return err
	}

	seg, err := models.ParseSegment(req.Role)
	if err != nil {
		log.Warn(ctx, "publish rejected", "reason", "unknown segment")
		return err
	}

	st := models.Status{Title: req.Title, Text: req.Text, Image: req.Image}
	if err := st.Validate(); err != nil {
		log.Warn(ctx, "publish rejected", "reason", err.Error())
		return err
	}

	if err := s.repo.Save(ctx, seg, st); err != nil {
		log.Error(ctx, "publish failed", "segment", seg, "error", err)
		return err
	}

	log.Info(ctx, "status published", "segment", seg, "cleared", st.IsAbsent())
	return nil
}

// RequestedSegment maps the role query value onto a segment, ignoring case.
// Missing or unknown roles mean the public segment.
func RequestedSegment(role string) models.Segment {
	seg, err := models.ParseSegment(strings.ToLower(role))
	if err != nil {
		return models.SegmentRandom
	}
	return seg
}

// View renders the page the caller may see and returns it with the
// effective segment. It never fails: a wrong session narrows the view to the
// public segment and a storage error shows the placeholder page.
func (s *StatusService) View(ctx context.Context, role, session string) ([]byte, models.Segment) {
	requested := RequestedSegment(role)
	seg := s.access.ResolveView(requested, session)
	if seg != requested {
		s.logger.Debug(ctx, "view narrowed", "requested", requested, "effective", seg)
	}

	st, err := s.repo.Load(ctx, seg)
	if err != nil {
		s.logger.Error(ctx, "load status failed", "segment", seg, "error", err)
		st = models.Status{}
	}

	page, err := s.renderer.Render(seg, st)
	if err != nil {
		s.logger.Error(ctx, "render failed", "segment", seg, "error", err)
		page, _ = s.renderer.Render(seg, models.Status{})
	}
	return page, seg
}
