// Command stub-agent is a minimal synchronous agent for local testing. It
// reads newline-delimited JSON requests from stdin and writes one JSON
// response per line, matching the local-process agent protocol.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/clide-ide/agentlink/internal/domain"
)

func main() {
	title := flag.String("title", "Analysis complete", "title to stamp on every response")
	flag.Parse()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 256*1024), 256*1024)
	out := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var req domain.Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			fmt.Fprintf(os.Stderr, "skipping malformed request: %v\n", err)
			continue
		}

		if err := out.Encode(buildResponse(*title, req)); err != nil {
			fmt.Fprintf(os.Stderr, "writing response: %v\n", err)
			os.Exit(1)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "reading stdin: %v\n", err)
		os.Exit(1)
	}
}

func buildResponse(title string, req domain.Request) domain.Response {
	lineCount := 0
	if req.Content != "" {
		lineCount = strings.Count(req.Content, "\n")
		if !strings.HasSuffix(req.Content, "\n") {
			lineCount++
		}
	}

	file := "untitled"
	if req.FilePath != nil && *req.FilePath != "" {
		file = *req.FilePath
	}

	detail := fmt.Sprintf("The file has %d lines; the cursor is at line %d, column %d.",
		lineCount, req.CursorLine+1, req.CursorCol+1)
	patch := fmt.Sprintf("- old line at %d\n+ new line at %d (stub output)",
		req.CursorLine+1, req.CursorLine+1)

	raw, _ := json.Marshal(map[string]any{
		"source":   "stub-agent",
		"metadata": req.Metadata,
	})

	line := req.CursorLine
	return domain.Response{
		Title:  title,
		Detail: detail,
		File:   &file,
		Line:   &line,
		Patch:  &patch,
		Raw:    raw,
	}
}
