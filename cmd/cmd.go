// submodule cmd contains command definitions
package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Command builds the root command. Global flags are inherited by every subcommand.
func (r *Runner) Command() *cli.Command {
	return &cli.Command{
		Name:      "musicat",
		Usage:     "Browse and curate a music catalog from the terminal",
		Version:   "0.1.0",
		Writer:    r.output,
		ErrWriter: r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Override the catalog API base URL",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip confirmation prompts",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "List output format: table, csv, md or txt",
				Value:   "table",
			},
		},
		After: func(context.Context, *cli.Command) error {
			return r.Close()
		},
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, genresCommand, artistsCommand,
		tracksCommand, collectionsCommand, searchCommand, adminCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func idArgument(name, usage string) *cli.StringArg {
	return &cli.StringArg{Name: name, UsageText: usage}
}

func trackFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Track title"},
		&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name or ID"},
		&cli.StringFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre name or ID"},
		&cli.StringFlag{Name: "bpm", Usage: "Beats per minute"},
		&cli.StringFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Duration as m:ss or seconds"},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Write the default config and initialize the state database",
		Action: r.Setup,
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, register and inspect the stored session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the bearer token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "login", Aliases: []string{"l"}, Usage: "Account login"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "login", Aliases: []string{"l"}, Usage: "Account login"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password"},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
					&cli.StringFlag{Name: "first-name", Usage: "First name"},
					&cli.StringFlag{Name: "last-name", Usage: "Last name"},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the stored session and service health",
				Action: r.AuthStatus,
			},
		},
	}
}

func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or edit the signed-in profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the profile",
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Update profile fields; unset flags keep their value",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Usage: "First name"},
					&cli.StringFlag{Name: "last-name", Usage: "Last name"},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
					&cli.StringFlag{Name: "avatar-url", Usage: "Avatar image URL"},
				},
				Action: r.ProfileUpdate,
			},
		},
	}
}

func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "Reference genres",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List genres",
				Action: r.GenresList,
			},
		},
	}
}

func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "Manage artists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List artists",
				Action: r.ArtistsList,
			},
			{
				Name:      "add",
				Usage:     "Add an artist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name", UsageText: "Artist name"}},
				Action:    r.ArtistsAdd,
			},
			{
				Name:  "edit",
				Usage: "Rename an artist",
				Arguments: []cli.Argument{
					idArgument("id", "Artist ID"),
					&cli.StringArg{Name: "name", UsageText: "New name"},
				},
				Action: r.ArtistsEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete an artist and its tracks",
				Arguments: []cli.Argument{idArgument("id", "Artist ID")},
				Action:    r.ArtistsDelete,
			},
		},
	}
}

func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Manage your tracks",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your tracks",
				Action: r.TracksList,
			},
			{
				Name:   "add",
				Usage:  "Add a track",
				Flags:  trackFlags(),
				Action: r.TracksAdd,
			},
			{
				Name:      "edit",
				Usage:     "Edit a track; unset flags keep their value",
				Arguments: []cli.Argument{idArgument("id", "Track ID")},
				Flags:     trackFlags(),
				Action:    r.TracksEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a track",
				Arguments: []cli.Argument{idArgument("id", "Track ID")},
				Action:    r.TracksDelete,
			},
		},
	}
}

func collectionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "collections",
		Aliases: []string{"col"},
		Usage:   "Manage collections and their tracks",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List collections with track counts",
				Action: r.CollectionsList,
			},
			{
				Name:      "create",
				Usage:     "Create a collection",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name", UsageText: "Collection name"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "favorite", Usage: "Mark as favorite"},
				},
				Action: r.CollectionsCreate,
			},
			{
				Name:      "edit",
				Usage:     "Rename a collection or change its favorite flag",
				Arguments: []cli.Argument{idArgument("id", "Collection ID")},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
					&cli.BoolFlag{Name: "favorite", Usage: "Favorite flag; pass --favorite=false to clear"},
				},
				Action: r.CollectionsEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a collection",
				Arguments: []cli.Argument{idArgument("id", "Collection ID")},
				Action:    r.CollectionsDelete,
			},
			{
				Name:      "tracks",
				Usage:     "List the tracks of a collection",
				Arguments: []cli.Argument{idArgument("id", "Collection ID")},
				Action:    r.CollectionsTracks,
			},
			{
				Name:  "add-track",
				Usage: "Add a track to a collection",
				Arguments: []cli.Argument{
					idArgument("collection", "Collection ID"),
					idArgument("track", "Track ID"),
				},
				Action: r.CollectionsAddTrack,
			},
			{
				Name:  "remove-track",
				Usage: "Remove a track from a collection",
				Arguments: []cli.Argument{
					idArgument("collection", "Collection ID"),
					idArgument("track", "Track ID"),
				},
				Action: r.CollectionsRemoveTrack,
			},
			{
				Name:  "export",
				Usage: "Export collections to files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "as",
						Usage: "Export format: json, csv, markdown or txt",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default musicat_export_<timestamp>)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Track fetches per second",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "ids",
						Usage: "Comma-separated collection IDs (default all)",
					},
				},
				Action: r.CollectionsExport,
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search tracks; empty filters are ignored",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Title contains"},
			&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist contains"},
			&cli.StringFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre name or ID"},
			&cli.StringFlag{Name: "bpm", Usage: "Exact beats per minute"},
			&cli.StringFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Exact duration as m:ss or seconds"},
		},
		Action: r.Search,
	}
}

func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Administrator listings",
		Commands: []*cli.Command{
			{
				Name:   "users",
				Usage:  "List every user",
				Action: r.AdminList,
			},
			{
				Name:   "tracks",
				Usage:  "List every track with its owner",
				Action: r.AdminList,
			},
			{
				Name:   "audit",
				Usage:  "Show the audit log",
				Action: r.AdminList,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for exports started from the UI",
			},
		},
		Action: r.TUI,
	}
}
