package vcs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"nawabs/internal/logx"
	"nawabs/internal/paths"
)

// ErrUnknownVCS is returned when a URL answers neither the git nor the hg
// protocol probe.
var ErrUnknownVCS = errors.New("unable to identify url")

const pullAttempts = 3

// NormalizeURL rewrites clone URLs before they reach a VCS binary. With
// preferHTTPS the git:// scheme becomes https://, and a trailing slash on
// github.com URLs is dropped because git ls-remote rejects it.
func NormalizeURL(url string, preferHTTPS bool) string {
	if preferHTTPS && strings.HasPrefix(url, "git://") {
		url = "https://" + strings.TrimPrefix(url, "git://")
	}
	if strings.Contains(url, "github.com") && strings.HasSuffix(url, "/") {
		url = strings.TrimSuffix(url, "/")
	}
	return url
}

// Client bundles the exec runner with logging for VCS operations.
type Client struct {
	Runner Runner
	Logger logx.Logger
}

func (c *Client) logf(format string, v ...any) {
	if c != nil && c.Logger != nil {
		c.Logger.Printf(format, v...)
	}
}

func (c *Client) runner() Runner {
	if c == nil || c.Runner == nil {
		return CmdRunner{}
	}
	return c.Runner
}

// Clone acquires url into dir/targetName, probing git first and hg second.
func (c *Client) Clone(ctx context.Context, url, dir, targetName string, preferHTTPS bool) error {
	url = NormalizeURL(url, preferHTTPS)

	if _, err := c.runner().Run(ctx, "git", []string{"ls-remote", url}, RunOptions{Dir: dir}); err == nil {
		c.logf("git clone %s -> %s", url, filepath.Join(dir, targetName))
		if _, err := c.runner().Run(ctx, "git", []string{"clone", url, targetName}, RunOptions{Dir: dir}); err != nil {
			return fmt.Errorf("git clone %s: %w", url, err)
		}
		return nil
	}

	if _, err := c.runner().Run(ctx, "hg", []string{"identify", url}, RunOptions{Dir: dir}); err == nil {
		c.logf("hg clone %s -> %s", url, filepath.Join(dir, targetName))
		if _, err := c.runner().Run(ctx, "hg", []string{"clone", url, targetName}, RunOptions{Dir: dir}); err != nil {
			return fmt.Errorf("hg clone %s: %w", url, err)
		}
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnknownVCS, url)
}

// HasUnstagedChanges reports whether the checkout at dir has local edits that
// a pull could clobber.
func (c *Client) HasUnstagedChanges(ctx context.Context, dir string) (bool, error) {
	gitDir, err := paths.DirExists(filepath.Join(dir, ".git"))
	if err != nil {
		return false, err
	}
	if gitDir {
		res, err := c.runner().Run(ctx, "git", []string{"status", "--porcelain", "--untracked-files=no"}, RunOptions{Dir: dir})
		if err != nil {
			return false, fmt.Errorf("git status in %s: %w", dir, err)
		}
		return len(strings.TrimSpace(string(res.Stdout))) > 0, nil
	}

	hgDir, err := paths.DirExists(filepath.Join(dir, ".hg"))
	if err != nil {
		return false, err
	}
	if hgDir {
		res, err := c.runner().Run(ctx, "hg", []string{"status", "-mard"}, RunOptions{Dir: dir})
		if err != nil {
			return false, fmt.Errorf("hg status in %s: %w", dir, err)
		}
		return len(strings.TrimSpace(string(res.Stdout))) > 0, nil
	}

	return false, nil
}

// Pull updates the checkout at dir. Dirty working trees are skipped rather
// than overwritten; transient git pull failures retry a bounded number of
// times.
func (c *Client) Pull(ctx context.Context, dir string) error {
	dirty, err := c.HasUnstagedChanges(ctx, dir)
	if err != nil {
		return err
	}
	if dirty {
		c.logf("skipping pull, unstaged changes: %s", dir)
		return nil
	}

	gitDir, err := paths.DirExists(filepath.Join(dir, ".git"))
	if err != nil {
		return err
	}
	if gitDir {
		var lastErr error
		for attempt := 1; attempt <= pullAttempts; attempt++ {
			if _, lastErr = c.runner().Run(ctx, "git", []string{"pull"}, RunOptions{Dir: dir}); lastErr == nil {
				return nil
			}
			c.logf("git pull failed in %s (attempt %d/%d): %v", dir, attempt, pullAttempts, lastErr)
			if attempt < pullAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
				}
			}
		}
		return fmt.Errorf("git pull in %s: %w", dir, lastErr)
	}

	hgDir, err := paths.DirExists(filepath.Join(dir, ".hg"))
	if err != nil {
		return err
	}
	if hgDir {
		if _, err := c.runner().Run(ctx, "hg", []string{"pull"}, RunOptions{Dir: dir}); err != nil {
			return fmt.Errorf("hg pull in %s: %w", dir, err)
		}
		return nil
	}

	c.logf("not a git or hg checkout, skipping: %s", dir)
	return nil
}
