package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/recall"
)

// maxListedFiles caps the listing so a broad pattern cannot flood the context.
const maxListedFiles = 200

var errListFull = errors.New("listing full")

type listFilesArgs struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
}

// ListFilesTool returns the list_files tool, a read-only glob over a directory.
func ListFilesTool() *Tool {
	return &Tool{
		name:        "list_files",
		description: "List files matching a glob pattern. Supports ** for recursive matching.",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"pattern": {
					"type": "string",
					"description": "Glob pattern to match files (e.g. **/*.go)"
				},
				"path": {
					"type": "string",
					"description": "Base directory to search from, defaults to the working directory"
				}
			},
			"required": ["pattern"]
		}`),
		run: executeListFiles,
	}
}

func executeListFiles(ctx context.Context, args json.RawMessage) (*recall.ToolResult, error) {
	var a listFilesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return recall.ErrorResult(fmt.Sprintf("invalid arguments: %s", err)), nil
	}
	if a.Pattern == "" {
		return recall.ErrorResult("pattern is required"), nil
	}
	if !doublestar.ValidatePattern(a.Pattern) {
		return recall.ErrorResult(fmt.Sprintf("invalid glob pattern: %s", a.Pattern)), nil
	}
	if a.Path == "" {
		a.Path = "."
	}

	info, err := os.Stat(a.Path)
	if err != nil {
		return recall.ErrorResult(fmt.Sprintf("failed to access path: %s", err)), nil
	}
	if !info.IsDir() {
		return recall.ErrorResult("path must be a directory"), nil
	}

	var matches []string
	truncated := false
	err = doublestar.GlobWalk(os.DirFS(a.Path), a.Pattern, func(path string, d iofs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if len(matches) == maxListedFiles {
			truncated = true
			return errListFull
		}
		matches = append(matches, filepath.FromSlash(path))
		return nil
	})
	if err != nil && !errors.Is(err, errListFull) {
		return recall.ErrorResult(fmt.Sprintf("error matching pattern: %s", err)), nil
	}

	if len(matches) == 0 {
		return recall.TextResult("no matches found"), nil
	}
	out := strings.Join(matches, "\n")
	if truncated {
		out += fmt.Sprintf("\n... (truncated at %d files)", maxListedFiles)
	}
	return recall.TextResult(out), nil
}
