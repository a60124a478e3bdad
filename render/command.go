package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/slidekit/go-slide-cache/config"
	"github.com/slidekit/go-slide-cache/model"
)

var ErrEmptyOutput = errors.New("render command produced no output")

// Command shells out to an external rasterizer for every page. The argument
// list is templated: %file is replaced with the document path, %page with
// the 1-based page number, %resolution with the requested pixels per
// document unit. The command must write the compressed image to stdout.
//
// Cropping is applied by tagging only: an external command renders the full
// page and the consumer's crop mode is recorded on the blob so the display
// layer knows which half to show.
type Command struct {
	command string
	file    string
	args    []string
	timeout time.Duration
}

func NewCommand(cfg *config.RenderCfg) *Command {
	return &Command{
		command: cfg.Command,
		file:    cfg.File,
		args:    cfg.Args,
		timeout: cfg.Timeout,
	}
}

func (c *Command) Render(ctx context.Context, req Request) (*model.Blob, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.command, c.expandArgs(req)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("render page %d via %s: %w: %s", req.Page, c.command, err, msg)
		}
		return nil, fmt.Errorf("render page %d via %s: %w", req.Page, c.command, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("render page %d via %s: %w", req.Page, c.command, ErrEmptyOutput)
	}

	return model.NewBlob(req.Page, req.Resolution, req.Crop, stdout.Bytes()), nil
}

func (c *Command) expandArgs(req Request) []string {
	args := make([]string, len(c.args))
	for i, arg := range c.args {
		arg = strings.ReplaceAll(arg, "%file", c.file)
		arg = strings.ReplaceAll(arg, "%page", strconv.Itoa(req.Page+1))
		arg = strings.ReplaceAll(arg, "%resolution", strconv.FormatFloat(req.Resolution, 'f', -1, 64))
		args[i] = arg
	}
	return args
}
