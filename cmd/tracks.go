package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/scx/internal/formatter"
	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

// parseID parses a positive numeric id argument.
func parseID(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// Search queries the tracks endpoint and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	tracks, err := r.api.SearchTracks(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return r.apiErr(err)
	}

	if path := cmd.String("csv"); path != "" {
		file, err := formatter.WriteCSVExport(query, tracks, path)
		if err != nil {
			return err
		}
		return r.writePlainln("wrote %s", file)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	return r.printTracks(tracks)
}

// TrackDetails fetches a single track by id.
func (r *Runner) TrackDetails(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	track, err := r.api.GetTrackDetails(ctx, id)
	if err != nil {
		return r.apiErr(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, cmd.Bool("pretty"))
	}

	r.writePlainln("%s - %s [%s]", track.User.Username, track.Title, track.DurationFormatted())
	if track.Genre != "" {
		r.writePlainln("Genre: %s", track.Genre)
	}
	if track.Description != "" {
		r.writePlainln("%s", track.Description)
	}
	r.writePlainln("Permalink: %s", track.PermalinkURL)
	return nil
}

// UserProfile fetches a user profile by id.
func (r *Runner) UserProfile(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	user, err := r.api.GetUserProfile(ctx, id)
	if err != nil {
		return r.apiErr(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	verified := ""
	if user.Verified {
		verified = " ✓"
	}
	r.writePlainln("%s%s", user.Username, verified)
	if user.City != "" || user.Country != "" {
		r.writePlainln("Location: %s %s", user.City, user.Country)
	}
	r.writePlainln("Permalink: %s", user.PermalinkURL)
	return nil
}

// UserTracks lists a user's tracks.
func (r *Runner) UserTracks(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	tracks, err := r.api.GetUserTracks(ctx, id, int(cmd.Int("limit")))
	if err != nil {
		return r.apiErr(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	return r.printTracks(tracks)
}

// Download fetches a raw resource into the downloads directory.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.StringArg("url")
	if rawURL == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	destDir := cmd.String("output")
	if destDir == "" {
		destDir = r.config.Downloads.Dir
	}

	dest, err := r.api.DownloadTrack(ctx, rawURL, destDir)
	if err != nil {
		return r.apiErr(err)
	}

	return r.writePlainln("✓ Saved to %s", dest)
}

func (r *Runner) printTracks(tracks []models.Track) error {
	if len(tracks) == 0 {
		return r.writePlainln("no tracks found")
	}

	for i, track := range tracks {
		r.writePlainln("%d. [%d] %s - %s [%s]", i+1, track.ID, track.User.Username, track.Title, track.DurationFormatted())
	}
	return nil
}
