// Command fpclient opens pages the way the editor does: remote when the
// caller owns them, otherwise from the local draft store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"footprint-app/internal/client"
	"footprint-app/internal/draft"
	"footprint-app/internal/editor"
	"footprint-app/internal/logger"
)

const usage = `usage: fpclient [flags] <command> <slug>

commands:
  open <slug>         open a page (remote if owned, else local draft)
  draft-show <slug>   print the local draft
  draft-clear <slug>  delete the local draft
`

func defaultDraftDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".footprint-drafts"
	}
	return filepath.Join(home, ".footprint", "drafts")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	apiURL := flag.String("api", envOr("FOOTPRINT_API", "http://localhost:8080"), "API base URL")
	token := flag.String("token", os.Getenv("FOOTPRINT_TOKEN"), "bearer token from /login")
	dir := flag.String("drafts", envOr("FOOTPRINT_DRAFTS", defaultDraftDir()), "draft directory")
	level := flag.String("log-level", "warn", "log level")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage); flag.PrintDefaults() }
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, slug := flag.Arg(0), flag.Arg(1)

	log, err := logger.New(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	backend, err := draft.NewFileBackend(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	drafts := draft.New(backend, log)
	ed := editor.New(client.New(*apiURL, *token, nil), drafts, log)

	switch cmd {
	case "open":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s, err := ed.Open(ctx, slug)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open failed:", err)
			os.Exit(1)
		}
		printJSON(s)
	case "draft-show":
		d, ok := drafts.Load(slug)
		if !ok {
			fmt.Println("No draft for", slug)
			return
		}
		printJSON(d)
	case "draft-clear":
		ed.Discard(slug)
		fmt.Println("Draft cleared:", slug)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
