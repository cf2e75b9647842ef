package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/library"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/playback"
	"github.com/desertthunder/lyrx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	PlaylistListView
	LyricsView
	ScrollView
)

// speedStep is the change applied by the faster/slower keys, in lines per second.
const speedStep = 0.1

// Library is the part of [library.Library] the TUI drives.
type Library interface {
	Songs(q library.Query) ([]models.Song, error)
	Playlists() []models.Playlist
	LoadSong(id string) (models.Song, error)
	ToggleFavorite(id string) (models.Song, error)
}

// Options configures a [Model].
type Options struct {
	Logger   *log.Logger
	Playback playback.Options
	SongID   string        // open this song straight away
	Scroll   bool          // start auto-scrolling the opened song
	Duration time.Duration // derive scroll speed from song length instead of Playback.Speed
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	lib    Library
	logger *log.Logger
	opts   Options

	view     ViewState
	width    int
	height   int
	songList list.Model
	plList   list.Model
	playlist string // "" lists every song

	song     models.Song
	viewport viewport.Model

	scroller     *playback.Scroller
	frames       chan playback.Frame
	cancelScroll context.CancelFunc
	frame        playback.Frame

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, lib Library, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	songList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	songList.Title = "Songs"
	plList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	plList.Title = "Playlists"

	return &Model{
		ctx:      ctx,
		lib:      lib,
		logger:   opts.Logger,
		opts:     opts,
		view:     SongListView,
		songList: songList,
		plList:   plList,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// ViewState reports the current view.
func (m *Model) ViewState() ViewState {
	return m.view
}

// Init loads the song list, or opens Options.SongID directly.
func (m *Model) Init() tea.Cmd {
	if m.opts.SongID != "" {
		return tea.Batch(m.loadSongs(""), m.openSong(m.opts.SongID))
	}
	return m.loadSongs("")
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-6)
		m.plList.SetSize(msg.Width-4, msg.Height-6)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(1, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case LyricsView:
			return m.handleLyricsKeys(msg)
		case ScrollView:
			return m.handleScrollKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSongsLoaded:
		data := msg.data.(songsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.playlist = data.playlist
		m.songList.Title = "Songs"
		if data.playlist != "" {
			m.songList.Title = fmt.Sprintf("Songs in '%s'", data.playlist)
		}
		items := make([]list.Item, len(data.songs))
		for i, song := range data.songs {
			items[i] = songItem{song: song}
		}
		return m, m.songList.SetItems(items)

	case MsgPlaylistsLoaded:
		playlists := msg.data.([]models.Playlist)
		items := make([]list.Item, len(playlists))
		for i, pl := range playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.view = PlaylistListView
		return m, m.plList.SetItems(items)

	case MsgSongOpened:
		data := msg.data.(songResult)
		if data.err != nil {
			m.status = styles.err.Render(data.err.Error())
			return m, nil
		}
		m.setSong(data.song)
		m.view = LyricsView
		m.logger.Debug("song opened", "id", data.song.ID, "plays", data.song.PlayCount)
		if m.opts.Scroll {
			m.opts.Scroll = false
			return m, tea.Batch(m.refreshSong(data.song), m.startScroll())
		}
		return m, m.refreshSong(data.song)

	case MsgFavoriteToggled:
		data := msg.data.(songResult)
		if data.err != nil {
			m.status = styles.err.Render(data.err.Error())
			return m, nil
		}
		if data.song.IsFavorite {
			m.status = styles.ok.Render("★ added to " + models.FavoritesPlaylist)
		} else {
			m.status = styles.warn.Render("removed from " + models.FavoritesPlaylist)
		}
		if m.song.ID == data.song.ID {
			m.song = data.song
		}
		return m, m.refreshSong(data.song)

	case MsgFrame:
		data := msg.data.(frameData)
		if data.frames != m.frames {
			return m, nil
		}
		m.frame = data.frame
		m.viewport.SetYOffset(data.frame.Line)
		return m, m.waitForFrame()

	case MsgScrollDone:
		data := msg.data.(frameData)
		if data.frames != m.frames {
			return m, nil
		}
		m.frames = nil
		m.cancelScroll = nil
		if m.frame.Done {
			m.status = styles.ok.Render("✓ finished")
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SongListView:
		return m.renderSongList()
	case PlaylistListView:
		return m.renderPlaylistList()
	case LyricsView:
		return m.renderLyrics()
	case ScrollView:
		return m.renderScroll()
	default:
		return ""
	}
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.songList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			return m, m.openSong(item.song.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			return m, m.toggleFavorite(item.song.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.playlists):
		return m, m.loadPlaylists()
	case key.Matches(msg, m.keys.back) && m.playlist != "":
		return m, m.loadSongs("")
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.plList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.plList, cmd = m.plList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.playlists):
		m.view = SongListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.plList.SelectedItem().(playlistItem); ok {
			m.view = SongListView
			return m, m.loadSongs(item.playlist.Name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.plList, cmd = m.plList.Update(msg)
	return m, cmd
}

func (m *Model) handleLyricsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SongListView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		return m, m.toggleFavorite(m.song.ID)
	case key.Matches(msg, m.keys.scroll):
		return m, m.startScroll()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleScrollKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.stopScroll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.stopScroll()
		m.view = LyricsView
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.pause):
		if m.scroller != nil {
			if m.scroller.TogglePause() {
				m.status = styles.warn.Render("paused")
			} else {
				m.status = ""
			}
		}
	case key.Matches(msg, m.keys.faster):
		if m.scroller != nil {
			m.scroller.SetSpeed(m.scroller.Speed() + speedStep)
		}
	case key.Matches(msg, m.keys.slower):
		if m.scroller != nil {
			m.scroller.SetSpeed(m.scroller.Speed() - speedStep)
		}
	case key.Matches(msg, m.keys.favorite):
		return m, m.toggleFavorite(m.song.ID)
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SongListView:
		m.songList, cmd = m.songList.Update(msg)
	case PlaylistListView:
		m.plList, cmd = m.plList.Update(msg)
	case LyricsView:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *Model) setSong(song models.Song) {
	m.song = song
	m.viewport.SetContent(song.Lyrics)
	m.viewport.GotoTop()
	m.status = ""
}

// refreshSong replaces the matching list entry so play counts and stars stay current.
func (m *Model) refreshSong(song models.Song) tea.Cmd {
	for i, item := range m.songList.Items() {
		if it, ok := item.(songItem); ok && it.song.ID == song.ID {
			return m.songList.SetItem(i, songItem{song: song})
		}
	}
	return nil
}

func (m *Model) loadSongs(playlist string) tea.Cmd {
	return func() tea.Msg {
		songs, err := m.lib.Songs(library.Query{Playlist: playlist})
		return songsLoadedMsg(playlist, songs, err)
	}
}

func (m *Model) loadPlaylists() tea.Cmd {
	return func() tea.Msg {
		return playlistsLoadedMsg(m.lib.Playlists())
	}
}

func (m *Model) openSong(id string) tea.Cmd {
	return func() tea.Msg {
		song, err := m.lib.LoadSong(id)
		return songOpenedMsg(song, err)
	}
}

func (m *Model) toggleFavorite(id string) tea.Cmd {
	return func() tea.Msg {
		song, err := m.lib.ToggleFavorite(id)
		return favoriteToggledMsg(song, err)
	}
}

// startScroll runs a scroller for the open song. Any previous run is cancelled first.
func (m *Model) startScroll() tea.Cmd {
	m.stopScroll()

	opts := m.opts.Playback
	if opts.BufferLines == 0 {
		opts.BufferLines = playback.DefaultBufferLines
	}
	if m.opts.Duration > 0 {
		lines := len(strings.Split(m.song.Lyrics, "\n"))
		opts.Speed = playback.SpeedForDuration(lines, opts.BufferLines, m.opts.Duration)
	}

	m.scroller = playback.NewScroller(m.song.Lyrics, opts)
	m.viewport.SetContent(strings.Join(m.scroller.Lines(), "\n"))
	m.viewport.GotoTop()
	m.frame = playback.Frame{Total: len(m.scroller.Lines())}
	m.view = ScrollView
	m.status = ""

	ctx, cancel := context.WithCancel(m.ctx)
	frames := make(chan playback.Frame, 1)
	m.frames, m.cancelScroll = frames, cancel

	scroller := m.scroller
	go func() {
		defer close(frames)
		if err := scroller.Run(ctx, frames); err != nil && ctx.Err() == nil {
			m.logger.Warn("auto-scroll stopped", "error", err)
		}
	}()

	m.logger.Debug("auto-scroll started", "id", m.song.ID, "speed", scroller.Speed())
	return m.waitForFrame()
}

func (m *Model) stopScroll() {
	if m.cancelScroll != nil {
		m.cancelScroll()
	}
	m.cancelScroll = nil
	m.frames = nil
	if m.scroller != nil {
		m.viewport.SetContent(m.song.Lyrics)
	}
	m.scroller = nil
}

func (m *Model) waitForFrame() tea.Cmd {
	frames := m.frames
	return func() tea.Msg {
		if frames == nil {
			return scrollDoneMsg(nil)
		}

		f, ok := <-frames
		if !ok {
			return scrollDoneMsg(frames)
		}
		return frameMsg(frames, f)
	}
}

func (m *Model) renderSongList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.favorite, m.keys.playlists, m.keys.quit}
	if m.playlist != "" {
		helpKeys = append(helpKeys, m.keys.back)
	}
	return fmt.Sprintf("%s\n%s\n%s", m.songList.View(), m.status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.plList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) header() string {
	title := m.song.Title
	if m.song.IsFavorite {
		title = "★ " + title
	}
	return fmt.Sprintf("%s\n%s",
		styles.title.Render(title),
		styles.help.Render(fmt.Sprintf("%s • %s", m.song.Artist, plays(m.song.PlayCount))))
}

func (m *Model) renderLyrics() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.scroll, m.keys.favorite, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s\n%s", m.header(), m.viewport.View(), m.status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderScroll() string {
	speed := 0.0
	if m.scroller != nil {
		speed = m.scroller.Speed()
	}

	remaining := float64(m.frame.Total) - m.frame.Offset
	eta := "-"
	if speed > 0 {
		eta = playback.FormatCompact(time.Duration(remaining / speed * float64(time.Second)))
	}

	info := styles.help.Render(fmt.Sprintf("%.0f%% • %.2f lines/s • %s left", m.frame.Progress()*100, speed, eta))
	helpKeys := []key.Binding{m.keys.pause, m.keys.faster, m.keys.slower, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s %s\n%s", m.header(), m.viewport.View(), info, m.status, m.help.ShortHelpView(helpKeys))
}
