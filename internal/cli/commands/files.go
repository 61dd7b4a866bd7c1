package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"DriveX/internal/cli/api"
	"DriveX/internal/cli/bootstrap"
	"DriveX/internal/cli/service"
	"DriveX/internal/config"
	"DriveX/internal/kind"

	"github.com/dustin/go-humanize"
)

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload files one by one, in the given order" }
func (uploadCmd) Usage() string       { return "upload [--desc <text>] <path>..." }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	desc := fs.String("desc", "", "description stored with every file")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return ErrUsage
	}
	files, err := service.OpenLocalFiles(fs.Args())
	if err != nil {
		return err
	}
	return withToken(ctx, cfg, func(env *bootstrap.Env, token string) error {
		// события чередуются: перед файлом, затем после его успешной загрузки
		inFile := false
		browser := service.NewFileBrowser(env.Files, cfg.PageSize, env.Logger)
		var refreshed *api.FileList
		res, err := service.NewUploader(env.Files, env.Logger).Upload(ctx, token, files, service.UploadOptions{
			Description: *desc,
			OnProgress: func(p service.Progress) {
				if !inFile {
					inFile = true
					fmt.Fprintf(Out, "[%d/%d] %s ... ", p.Completed+1, p.Total, p.Current)
					return
				}
				inFile = false
				fmt.Fprintf(Out, "ok (%.0f%%)\n", p.Percent)
			},
			// обновлённый список после загрузки; ошибка не отменяет загрузку
			OnUploaded: func() {
				l, err := browser.Fetch(ctx, service.Key{Token: token, Category: kind.All}, 0)
				if err != nil {
					env.Logger.Warnw("refresh after upload failed", "error", err)
					return
				}
				refreshed = l
			},
		})
		if err != nil {
			fmt.Fprintln(Out, "failed")
			return err
		}
		fmt.Fprintf(Out, "Uploaded %d file(s)\n", len(res.Uploaded))
		if refreshed != nil {
			fmt.Fprintf(Out, "Drive now holds %d file(s)\n", refreshed.Total)
		}
		return nil
	})
}

type lsCmd struct{}

func (lsCmd) Name() string        { return "ls" }
func (lsCmd) Description() string { return "List files, optionally filtered by category and name" }
func (lsCmd) Usage() string {
	return "ls [--type all|image|video|audio|document|other] [--search <text>] [--page <n>]"
}

func (lsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	typ := fs.String("type", "all", "category filter")
	search := fs.String("search", "", "name filter")
	page := fs.Int("page", 1, "page number, starting at 1")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 || *page < 1 {
		return ErrUsage
	}
	cat, err := kind.ParseCategory(*typ)
	if err != nil {
		return err
	}
	return withToken(ctx, cfg, func(env *bootstrap.Env, token string) error {
		b := service.NewFileBrowser(env.Files, cfg.PageSize, env.Logger)
		list, err := b.Fetch(ctx, service.Key{Token: token, Category: cat, Search: *search}, *page-1)
		if err != nil {
			return err
		}
		printFileList(list, *page-1, b.PageSize())
		return nil
	})
}

func printFileList(list *api.FileList, page, pageSize int) {
	if list == nil || len(list.Files) == 0 {
		fmt.Fprintln(Out, "No files found")
		return
	}
	tw := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tSIZE\tUPLOADED")
	for _, f := range list.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, fileKind(f), humanize.IBytes(uint64(max(f.Size, 0))), uploadedAgo(f.UploadedAt))
	}
	_ = tw.Flush()
	pages := 1
	if pageSize > 0 && list.Total > 0 {
		pages = int((list.Total + int64(pageSize) - 1) / int64(pageSize))
	}
	fmt.Fprintf(Out, "Page %d/%d, %d file(s) total\n", page+1, pages, list.Total)
}

// fileKind берёт категорию из ответа, иначе вычисляет по MIME.
func fileKind(f api.FileItem) string {
	if f.Kind != "" {
		return f.Kind
	}
	return kind.Classify(f.MimeType).String()
}

func uploadedAgo(s string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return humanize.Time(t)
		}
	}
	return s
}

type viewCmd struct{}

func (viewCmd) Name() string        { return "view" }
func (viewCmd) Description() string { return "Show file details and how it can be previewed" }
func (viewCmd) Usage() string       { return "view [--open] <id>" }

func (viewCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	open := fs.Bool("open", false, "open inline-previewable files in the browser")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	return withToken(ctx, cfg, func(env *bootstrap.Env, token string) error {
		return showFile(ctx, env, token, fs.Arg(0), *open)
	})
}

func showFile(ctx context.Context, env *bootstrap.Env, token, id string, open bool) error {
	fenv, err := env.Files.GetFile(ctx, token, id)
	if err != nil {
		return err
	}
	if err := fenv.Err(); err != nil {
		return err
	}
	f := fenv.Data
	u, err := env.Client.ResolveURL(f.URL)
	if err != nil {
		u = f.URL
	}
	v := kind.Preview(f.MimeType, u)

	fmt.Fprintf(Out, "Name:      %s\n", f.Name)
	fmt.Fprintf(Out, "ID:        %s\n", f.ID)
	fmt.Fprintf(Out, "Type:      %s (%s)\n", f.MimeType, fileKind(f))
	fmt.Fprintf(Out, "Size:      %s\n", humanize.IBytes(uint64(max(f.Size, 0))))
	fmt.Fprintf(Out, "Uploaded:  %s\n", uploadedAgo(f.UploadedAt))
	if f.Description != "" {
		fmt.Fprintf(Out, "Notes:     %s\n", f.Description)
	}
	fmt.Fprintf(Out, "URL:       %s\n", v.URL)

	switch v.Variant {
	case kind.VariantOffice:
		fmt.Fprintln(Out, "Preview:   office document, download it to view")
	case kind.VariantDownload:
		fmt.Fprintln(Out, "Preview:   not available, use download")
	default:
		fmt.Fprintf(Out, "Preview:   %s\n", v.Variant)
		if open {
			if err := navigator.Open(v.URL); err != nil {
				return fmt.Errorf("open preview: %w", err)
			}
		}
	}
	return nil
}

type downloadCmd struct{}

func (downloadCmd) Name() string        { return "download" }
func (downloadCmd) Description() string { return "Save a file to a local directory" }
func (downloadCmd) Usage() string       { return "download [-o <dir>] <id>" }

func (downloadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dir := fs.String("o", ".", "destination directory")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	if fi, err := os.Stat(*dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("destination %q is not a directory", *dir)
	}
	return withToken(ctx, cfg, func(env *bootstrap.Env, token string) error {
		path, n, err := service.DownloadFile(ctx, env.Files, token, fs.Arg(0), *dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Saved %s (%s)\n", path, humanize.IBytes(uint64(n)))
		return nil
	})
}

type rmCmd struct{}

func (rmCmd) Name() string        { return "rm" }
func (rmCmd) Description() string { return "Delete a file" }
func (rmCmd) Usage() string       { return "rm <id>" }

func (rmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return withToken(ctx, cfg, func(env *bootstrap.Env, token string) error {
		res, err := env.Files.DeleteFile(ctx, token, args[0])
		if err != nil {
			return err
		}
		if err := res.Err(); err != nil {
			return err
		}
		printMessage(res.Message, "File deleted")
		return nil
	})
}

type usageCmd struct{}

func (usageCmd) Name() string        { return "usage" }
func (usageCmd) Description() string { return "Show storage usage" }
func (usageCmd) Usage() string       { return "usage" }

func (usageCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withToken(ctx, cfg, func(env *bootstrap.Env, token string) error {
		u, err := env.Files.StorageUsage(ctx, token)
		if err != nil {
			return err
		}
		if err := u.Err(); err != nil {
			return err
		}
		p := service.Profile{StorageUsed: u.Data.StorageUsed, StorageLimit: cfg.StorageLimitBytes()}
		fmt.Fprintf(Out, "Used %s of %s (%.1f%%)\n", p.UsedHuman(), p.LimitHuman(), p.UsedPercent())
		return nil
	})
}

type profileCmd struct{ name string }

func (c profileCmd) Name() string      { return c.name }
func (profileCmd) Description() string { return "Show the account profile and storage" }
func (c profileCmd) Usage() string     { return c.name + " [--reset-email]" }

func (profileCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	resetEmail := fs.Bool("reset-email", false, "send a password reset email to this account")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	return withToken(ctx, cfg, func(env *bootstrap.Env, token string) error {
		p, err := service.NewProfileService(env.Files, env.Session, cfg.StorageLimitBytes(), env.Logger).Load(ctx, token)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Name:     %s\n", p.User.Name)
		fmt.Fprintf(Out, "Email:    %s\n", p.User.Email)
		if p.User.CreatedAt != "" {
			fmt.Fprintf(Out, "Member:   since %s\n", uploadedAgo(p.User.CreatedAt))
		}
		fmt.Fprintf(Out, "Files:    %s\n", humanize.Comma(p.FileCount))
		fmt.Fprintf(Out, "Storage:  %s of %s (%.1f%%)\n", p.UsedHuman(), p.LimitHuman(), p.UsedPercent())

		if *resetEmail {
			msg, err := authService(env).ForgotPassword(ctx, service.ForgotPasswordForm{Email: p.User.Email})
			if err != nil {
				return err
			}
			printMessage(msg, "Password reset email sent")
		}
		return nil
	})
}

type mockResetCmd struct{}

func (mockResetCmd) Name() string        { return "mock-reset" }
func (mockResetCmd) Description() string { return "Restore the local demo dataset used by -mock" }
func (mockResetCmd) Usage() string       { return "mock-reset" }

func (mockResetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	mcfg := *cfg
	mcfg.MockMode = true
	return withEnv(ctx, &mcfg, func(env *bootstrap.Env) error {
		if env.Mock == nil {
			return errors.New("mock dataset is not available")
		}
		if err := env.Mock.Reset(ctx); err != nil {
			return err
		}
		list, err := env.Mock.ListFiles(ctx, service.MockToken, api.ListQuery{Size: 1})
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Mock data reset (%d files)\n", list.Data.Total)
		return nil
	})
}

func init() {
	RegisterCmd(uploadCmd{})
	RegisterCmd(lsCmd{})
	RegisterCmd(viewCmd{})
	RegisterCmd(downloadCmd{})
	RegisterCmd(rmCmd{})
	RegisterCmd(usageCmd{})
	RegisterCmd(profileCmd{name: "profile"})
	RegisterCmd(profileCmd{name: "whoami"})
	RegisterCmd(mockResetCmd{})
}
