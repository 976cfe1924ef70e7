package publisher

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"
)

// Config holds one publisher invocation.
type Config struct {
	ServerURL string
	Role      string
	Title     string
	Text      string
	ImagePath string
	Clear     bool
	Timeout   time.Duration
}

// ParseArgs reads the command line (without the program name). Usage and
// errors go to out.
func ParseArgs(args []string, out io.Writer) (*Config, error) {
	cfg := &Config{}

	fs := pflag.NewFlagSet("publisher", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVarP(&cfg.ServerURL, "server", "s", "http://127.0.0.1:8080", "base URL of the status server")
	fs.StringVarP(&cfg.Role, "role", "r", "random", "segment to publish to: family, friend or random")
	fs.StringVarP(&cfg.Title, "title", "t", "", "status title")
	fs.StringVarP(&cfg.Text, "text", "x", "", "status text")
	fs.StringVarP(&cfg.ImagePath, "image", "i", "", "path of an image file to attach")
	fs.BoolVar(&cfg.Clear, "clear", false, "clear the segment (sends empty fields)")
	fs.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "request timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.Clear && (cfg.Title != "" || cfg.Text != "" || cfg.ImagePath != "") {
		return nil, fmt.Errorf("--clear cannot be combined with --title, --text or --image")
	}
	return cfg, nil
}
