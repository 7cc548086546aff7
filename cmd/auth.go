package main

import (
	"context"

	"github.com/desertthunder/scx/internal/auth"
	"github.com/desertthunder/scx/internal/server"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the OAuth2 authorization-code flow through the loopback
// consent server and persists the resulting credential.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	consenter := server.NewLoopbackConsenter(r.config.Server.Host, r.config.Server.Port, r.logger)

	flow, err := auth.NewFlow(r.config.SoundCloud, consenter, r.session, r.store, r.logger)
	if err != nil {
		return err
	}

	r.logger.Info("starting authorization", "redirect", r.config.SoundCloud.RedirectURI)
	if _, err := flow.Authenticate(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Authentication successful\n")
}

// AuthLogout signs the session out, discarding the stored credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.session.SignOut()
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus prints the current session state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	snap := r.session.State()

	r.writePlainln("Session: %s", snap.State)
	if snap.Reason != "" {
		r.writePlainln("Reason: %s", snap.Reason)
	}
	return nil
}
