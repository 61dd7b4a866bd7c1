package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"DriveX/internal/cli/bootstrap"
	"DriveX/internal/cli/service"
	"DriveX/internal/config"
	"DriveX/internal/kind"
)

const browseHelp = `Commands:
  type <all|image|video|audio|document|other>   filter by category
  search [text]                                  filter by name (empty clears)
  next | prev                                    change page
  refresh                                        reload the current page
  view <id|#n>                                   show file details
  rm <id|#n>                                     delete a file
  help                                           show this help
  quit                                           leave
`

type browseCmd struct{}

func (browseCmd) Name() string        { return "browse" }
func (browseCmd) Description() string { return "Interactive file browser with filter, search and delete" }
func (browseCmd) Usage() string       { return "browse" }

func (browseCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withToken(ctx, cfg, func(env *bootstrap.Env, token string) error {
		s := &browseSession{
			env:     env,
			browser: service.NewFileBrowser(env.Files, cfg.PageSize, env.Logger),
			key:     service.Key{Token: token, Category: kind.All},
		}
		s.fetch(ctx)
		for {
			if ctx.Err() != nil {
				return nil
			}
			line, err := readLine(fmt.Sprintf("[%s%s] > ", s.key.Category, searchSuffix(s.key.Search)))
			if err != nil {
				if errors.Is(err, io.EOF) {
					fmt.Fprintln(Out)
					return nil
				}
				return err
			}
			if quit := s.handle(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		}
	})
}

func searchSuffix(s string) string {
	if s == "" {
		return ""
	}
	return " \"" + s + "\""
}

type browseSession struct {
	env     *bootstrap.Env
	browser *service.FileBrowser
	key     service.Key
	page    int
}

func (s *browseSession) fetch(ctx context.Context) {
	list, err := s.browser.Fetch(ctx, s.key, s.page)
	s.show(list, err)
}

func (s *browseSession) show(list any, err error) {
	switch {
	case errors.Is(err, service.ErrStale):
		return
	case err != nil:
		fmt.Fprintf(Out, "error: %v\n", err)
		return
	}
	_, page, current := s.browser.Current()
	printFileList(current, page, s.browser.PageSize())
}

// handle выполняет одну команду; true — выход.
func (s *browseSession) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "":
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(Out, browseHelp)
	case "type", "t":
		cat, err := kind.ParseCategory(arg)
		if err != nil {
			fmt.Fprintf(Out, "error: %v\n", err)
			return false
		}
		s.key.Category, s.page = cat, 0
		s.fetch(ctx)
	case "search", "s":
		s.key.Search, s.page = arg, 0
		s.fetch(ctx)
	case "next", "n":
		_, _, list := s.browser.Current()
		if list != nil && int64((s.page+1)*s.browser.PageSize()) >= list.Total {
			fmt.Fprintln(Out, "already on the last page")
			return false
		}
		s.page++
		s.fetch(ctx)
	case "prev", "p":
		if s.page == 0 {
			fmt.Fprintln(Out, "already on the first page")
			return false
		}
		s.page--
		s.fetch(ctx)
	case "refresh", "r":
		s.show(s.browser.Refresh(ctx))
	case "view", "v":
		id, ok := s.resolveID(arg)
		if !ok {
			return false
		}
		if err := showFile(ctx, s.env, s.key.Token, id, false); err != nil {
			fmt.Fprintf(Out, "error: %v\n", err)
		}
	case "rm", "delete":
		id, ok := s.resolveID(arg)
		if !ok {
			return false
		}
		if err := s.browser.Delete(ctx, id); err != nil {
			fmt.Fprintf(Out, "error: %v\n", err)
			return false
		}
		fmt.Fprintln(Out, "File deleted")
		s.show(nil, nil)
	default:
		fmt.Fprintf(Out, "unknown command %q, type help\n", cmd)
	}
	return false
}

// resolveID принимает ID или #n — номер строки текущей страницы.
func (s *browseSession) resolveID(arg string) (string, bool) {
	if arg == "" {
		fmt.Fprintln(Out, "file id required")
		return "", false
	}
	if n, ok := strings.CutPrefix(arg, "#"); ok {
		i, err := strconv.Atoi(n)
		files := s.browser.Files()
		if err != nil || i < 1 || i > len(files) {
			fmt.Fprintf(Out, "no file %s on this page\n", arg)
			return "", false
		}
		return files[i-1].ID.String(), true
	}
	return arg, true
}

func init() { RegisterCmd(browseCmd{}) }
