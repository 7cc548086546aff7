package main

import (
	"context"
	"time"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the database and applies migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.logger.Info("database ready", "path", r.config.Database.Path)
	return r.writePlain("✓ Setup complete\n")
}

// FavoritesList prints all favorites, most recent first.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openFavorites()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repo.ListAll()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	tracks := make([]models.Track, 0, len(records))
	for _, record := range records {
		tracks = append(tracks, record.Track())
	}
	return r.printTracks(tracks)
}

// FavoritesAdd fetches a fresh track snapshot and stores it as a favorite.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	track, err := r.api.GetTrackDetails(ctx, id)
	if err != nil {
		return r.apiErr(err)
	}

	repo, db, err := r.openFavorites()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.Insert(models.NewFavoriteRecord(*track, time.Now())); err != nil {
		return err
	}

	return r.writePlainln("✓ Favorited %s", track.Title)
}

// FavoritesRemove deletes a favorite by track id.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	repo, db, err := r.openFavorites()
	if err != nil {
		return err
	}
	defer db.Close()

	exists, err := repo.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return r.writePlainln("track %d is not favorited", id)
	}

	if err := repo.Delete(id); err != nil {
		return err
	}

	return r.writePlainln("✓ Removed favorite %d", id)
}
