package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"DriveX/internal/cli/bootstrap"
	"DriveX/internal/cli/oauth"
	"DriveX/internal/cli/service"
	"DriveX/internal/config"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Sign in with email and password" }
func (loginCmd) Usage() string       { return "login [<email>]" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	email, err := argOrPrompt(args, 0, "Email: ")
	if err != nil {
		return err
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	return withEnv(ctx, cfg, func(env *bootstrap.Env) error {
		u, err := authService(env).Login(ctx, service.LoginForm{Email: email, Password: password})
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Logged in as %s <%s>\n", u.Name, u.Email)
		return nil
	})
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and sign in" }
func (registerCmd) Usage() string       { return "register [<name> <email>]" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 1 || len(args) > 2 {
		return ErrUsage
	}
	name, err := argOrPrompt(args, 0, "Username: ")
	if err != nil {
		return err
	}
	email, err := argOrPrompt(args, 1, "Email: ")
	if err != nil {
		return err
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	return withEnv(ctx, cfg, func(env *bootstrap.Env) error {
		u, err := authService(env).Register(ctx, service.RegisterForm{Name: name, Email: email, Password: password})
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Registered and logged in as %s <%s>\n", u.Name, u.Email)
		return nil
	})
}

// googleLoginTimeout ограничивает ожидание редиректа провайдера.
var googleLoginTimeout = 5 * time.Minute

type loginGoogleCmd struct{}

func (loginGoogleCmd) Name() string        { return "login-google" }
func (loginGoogleCmd) Description() string { return "Sign in with Google through the identity provider" }
func (loginGoogleCmd) Usage() string       { return "login-google [--paste]" }

func (loginGoogleCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("login-google", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	paste := fs.Bool("paste", false, "paste the redirect URL instead of running a local callback server")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	if cfg.IdentityURL == "" {
		return errors.New("identity provider is not configured (IDENTITY_URL or -identity-url)")
	}

	return withEnv(ctx, cfg, func(env *bootstrap.Env) error {
		svc := authService(env)
		if *paste {
			return googlePaste(ctx, cfg, svc)
		}

		srv := oauth.NewCallbackServer(cfg.CallbackAddr, svc.GoogleExchange, env.Logger)
		origin, err := srv.Start()
		if err != nil {
			return fmt.Errorf("start callback server: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()

		u, err := oauth.Initiate(navigator, cfg.IdentityURL, origin)
		if err != nil {
			env.Logger.Warnw("browser not opened", "error", err)
			fmt.Fprintf(Out, "Open this URL to continue:\n  %s\n", u)
		} else {
			fmt.Fprintln(Out, "Continue the sign-in in your browser...")
		}

		wctx, cancel := context.WithTimeout(ctx, googleLoginTimeout)
		defer cancel()
		if err := srv.Wait(wctx); err != nil {
			return err
		}
		return printSignedIn(env)
	})
}

func googlePaste(ctx context.Context, cfg *config.Config, svc *service.AuthService) error {
	fmt.Fprintf(Out, "Open this URL, sign in and paste the address you were redirected to:\n  %s\n",
		oauth.AuthorizeURL(cfg.IdentityURL, "http://"+cfg.CallbackAddr))
	raw, err := readLine("Redirect URL: ")
	if err != nil {
		return err
	}
	tokens, err := oauth.ParseCallbackURL(raw)
	if err != nil {
		return err
	}
	if err := svc.GoogleExchange(ctx, tokens); err != nil {
		return fmt.Errorf("%w: %w", oauth.ErrOAuthFailed, err)
	}
	fmt.Fprintln(Out, "Signed in with Google")
	return nil
}

func printSignedIn(env *bootstrap.Env) error {
	st := env.Session.Current()
	if st.User != nil {
		fmt.Fprintf(Out, "Logged in as %s <%s>\n", st.User.Name, st.User.Email)
	} else {
		fmt.Fprintln(Out, "Signed in with Google")
	}
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Clear the stored session" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withEnv(ctx, cfg, func(env *bootstrap.Env) error {
		if err := authService(env).Logout(); err != nil {
			return err
		}
		fmt.Fprintln(Out, "Logged out")
		return nil
	})
}

type forgotPasswordCmd struct{}

func (forgotPasswordCmd) Name() string        { return "forgot-password" }
func (forgotPasswordCmd) Description() string { return "Request a password reset email" }
func (forgotPasswordCmd) Usage() string       { return "forgot-password [<email>]" }

func (forgotPasswordCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	email, err := argOrPrompt(args, 0, "Email: ")
	if err != nil {
		return err
	}
	return withEnv(ctx, cfg, func(env *bootstrap.Env) error {
		msg, err := authService(env).ForgotPassword(ctx, service.ForgotPasswordForm{Email: email})
		if err != nil {
			return err
		}
		printMessage(msg, "If the account exists, a reset link has been sent")
		return nil
	})
}

type resetPasswordCmd struct{}

func (resetPasswordCmd) Name() string        { return "reset-password" }
func (resetPasswordCmd) Description() string { return "Set a new password using a reset token" }
func (resetPasswordCmd) Usage() string       { return "reset-password <token>" }

func (resetPasswordCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	password, err := readPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	return withEnv(ctx, cfg, func(env *bootstrap.Env) error {
		msg, err := authService(env).ResetPassword(ctx, service.ResetPasswordForm{
			Token: args[0], Password: password, ConfirmPassword: confirm,
		})
		if err != nil {
			return err
		}
		printMessage(msg, "Password has been reset")
		return nil
	})
}

type changePasswordCmd struct{}

func (changePasswordCmd) Name() string        { return "change-password" }
func (changePasswordCmd) Description() string { return "Change the password of the signed-in account" }
func (changePasswordCmd) Usage() string       { return "change-password" }

func (changePasswordCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withEnv(ctx, cfg, func(env *bootstrap.Env) error {
		if !env.Session.Current().Authenticated() {
			return service.ErrNotAuthenticated
		}
		old, err := readPassword("Current password: ")
		if err != nil {
			return err
		}
		next, err := readPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		msg, err := authService(env).ChangePassword(ctx, service.ChangePasswordForm{
			OldPassword: old, NewPassword: next, ConfirmPassword: confirm,
		})
		if err != nil {
			return err
		}
		printMessage(msg, "Password changed")
		return nil
	})
}

func printMessage(msg, fallback string) {
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintln(Out, msg)
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(registerCmd{})
	RegisterCmd(loginGoogleCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(forgotPasswordCmd{})
	RegisterCmd(resetPasswordCmd{})
	RegisterCmd(changePasswordCmd{})
}
