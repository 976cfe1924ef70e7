// Package publisher is the command-line client that sends a status to the
// server's POST /post endpoint.
package publisher

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/nowstatus/internal/common"
	"github.com/dmitrijs2005/nowstatus/internal/netx"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
)

type request struct {
	Role    string `json:"role"`
	Session string `json:"session"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Image   string `json:"image"`
}

type Publisher struct {
	client  *http.Client
	baseURL string
}

func New(client *http.Client, baseURL string) *Publisher {
	return &Publisher{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Publish sends st to seg. The server's answer is mapped onto the common
// sentinel errors; 200 means the status is stored.
func (p *Publisher) Publish(ctx context.Context, session string, seg models.Segment, st models.Status) error {
	resp, err := netx.PostJSON(ctx, p.client, p.baseURL+"/post", request{
		Role:    seg.String(),
		Session: session,
		Title:   st.Title,
		Text:    st.Text,
		Image:   st.Image,
	})
	if err != nil {
		return fmt.Errorf("post status: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return fmt.Errorf("%w: server rejected the status: %s", common.ErrorValidation, strings.TrimSpace(string(resp.Body)))
	default:
		return fmt.Errorf("%w: server answered %d", common.ErrorInternal, resp.StatusCode)
	}
}

// BuildStatus assembles the status from cfg, reading and base64-encoding
// the image file, and checks the size limits before anything is sent.
func BuildStatus(cfg *Config) (models.Segment, models.Status, error) {
	// the flag is forgiving about case, the server is not
	seg, err := models.ParseSegment(strings.ToLower(cfg.Role))
	if err != nil {
		return "", models.Status{}, err
	}
	if cfg.Clear {
		return seg, models.Status{}, nil
	}

	st := models.Status{Title: cfg.Title, Text: cfg.Text}
	if cfg.ImagePath != "" {
		raw, err := os.ReadFile(cfg.ImagePath)
		if err != nil {
			return "", models.Status{}, fmt.Errorf("read image: %w", err)
		}
		st.Image = base64.StdEncoding.EncodeToString(raw)
	}

	if st.IsAbsent() {
		return "", models.Status{}, fmt.Errorf("%w: nothing to publish, use --clear to clear the segment", common.ErrorValidation)
	}
	if err := st.Validate(); err != nil {
		return "", models.Status{}, err
	}
	return seg, st, nil
}

// Run is the whole publisher flow: parse args, build the status, obtain the
// admin secret and publish.
func Run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := ParseArgs(args, stdout)
	if err != nil {
		return err
	}

	seg, st, err := BuildStatus(cfg)
	if err != nil {
		return err
	}

	session, err := AdminSecret(stdout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	p := New(&http.Client{}, cfg.ServerURL)
	if err := p.Publish(ctx, session, seg, st); err != nil {
		return err
	}

	if st.IsAbsent() {
		fmt.Fprintf(stdout, "Cleared %s status\n", seg)
	} else {
		fmt.Fprintf(stdout, "Published %s status\n", seg)
	}
	return nil
}
