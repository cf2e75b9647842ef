// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/lyrx/internal/tasks"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func withJSON(flags ...cli.Flag) []cli.Flag {
	return append(flags, jsonFlags()...)
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Write a default config file and initialize storage",
		Action: r.Setup,
	}
}

func formatCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "format",
		Usage: "Clean up pasted lyrics and guess the title and artist",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Flags: withJSON(
			&cli.BoolFlag{
				Name:  "indent-chorus",
				Usage: "Indent lines inside [Chorus] sections",
			},
			&cli.BoolFlag{
				Name:  "space-sections",
				Usage: "Keep a blank line before each [Section] header",
			},
		),
		Action: r.Format,
	}
}

// songCommand handles individual songs
func songCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "song",
		Usage: "Add, list and edit songs",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Save lyrics from a file or stdin",
				Flags: withJSON(
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "Song title (guessed from the first line when empty)",
					},
					&cli.StringFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "Artist (guessed from the first line when empty)",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read lyrics from this file instead of stdin",
					},
					&cli.BoolFlag{
						Name:  "no-format",
						Usage: "Store the lyrics exactly as given",
					},
				),
				Action: r.SongAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List songs",
				Flags: withJSON(
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Match title or artist",
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Only songs by this artist",
					},
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Only songs in this playlist, in playlist order",
					},
					&cli.BoolFlag{
						Name:  "favorites",
						Usage: "Only favorites",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort by title, artist or recent",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of songs to list",
					},
				),
				Action: r.SongList,
			},
			{
				Name:  "show",
				Usage: "Print a song's lyrics",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: withJSON(
					&cli.BoolFlag{
						Name:  "original",
						Usage: "Print the lyrics as originally pasted",
					},
				),
				Action: r.SongShow,
			},
			{
				Name:  "edit",
				Usage: "Change a song's title, artist, lyrics or favorite flag",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: withJSON(
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "New title",
					},
					&cli.StringFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "New artist",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Replace the lyrics with this file, formatted",
					},
					&cli.BoolFlag{
						Name:  "favorite",
						Usage: "Set (or with --favorite=false clear) the favorite flag",
					},
				),
				Action: r.SongEdit,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a song and remove it from every playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.SongDelete,
			},
			{
				Name:  "fav",
				Usage: "Toggle a song's favorite flag",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  jsonFlags(),
				Action: r.SongFavorite,
			},
		},
	}
}

// playlistCommand handles named playlists
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an empty playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a playlist (songs are kept)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "add",
				Usage: "Append a song to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a song from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.PlaylistRemove,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List playlists",
				Flags:   jsonFlags(),
				Action:  r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "List the songs in a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Flags:  jsonFlags(),
				Action: r.PlaylistShow,
			},
		},
	}
}

// libraryCommand handles whole-library operations
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Import, export and summarize the library",
		Commands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Delete every song and playlist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Confirm clearing the library",
					},
				},
				Action: r.LibraryClear,
			},
			{
				Name:  "export",
				Usage: "Export songs to files",
				Flags: withJSON(
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, markdown, txt or csv",
						Value:   tasks.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: lyrx_export_{timestamp})",
					},
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Only export this playlist",
					},
					&cli.BoolFlag{
						Name:  "favorites",
						Usage: "Only export favorites",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent writers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Files written per second (0 for unlimited)",
					},
				),
				Action: r.LibraryExport,
			},
			{
				Name:      "import",
				Usage:     "Import .txt lyric files or directories",
				ArgsUsage: "<path> [path...]",
				Flags:     jsonFlags(),
				Action:    r.LibraryImport,
			},
			{
				Name:   "artists",
				Usage:  "List songs grouped by artist",
				Flags:  jsonFlags(),
				Action: r.LibraryArtists,
			},
			{
				Name:   "stats",
				Usage:  "Show library counts",
				Flags:  jsonFlags(),
				Action: r.LibraryStats,
			},
		},
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Auto-scroll a song's lyrics",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "speed",
				Usage: "Lines per second (default: playback.speed)",
			},
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "Song length; derives the speed so the lyrics end on time",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Print lines to stdout as they scroll instead of opening the TUI",
			},
		},
		Action: r.Play,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse the library in the terminal",
		Action: r.TUI,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the library over a local JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}
