// Package home is the course browser: the entry screen listing enrolled
// courses, with a chapter/video browser pushed on selection.
package home

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/praagya/vidya/internal/catalog"
	"github.com/praagya/vidya/internal/router"
	"github.com/praagya/vidya/internal/screen"
	"github.com/praagya/vidya/internal/screens/player"
	"github.com/praagya/vidya/internal/ui/components"
	"github.com/praagya/vidya/internal/ui/theme"
)

// Deps carries everything the browser and the player screens it spawns
// need.
type Deps struct {
	Catalog *catalog.Service
	Player  player.Deps
	Log     zerolog.Logger
}

// coursesLoadedMsg delivers the course list fetch result.
type coursesLoadedMsg struct {
	Courses []catalog.Course
	Err     error
}

// courseLoadedMsg delivers a single course with chapters.
type courseLoadedMsg struct {
	Course *catalog.Course
	Err    error
}

// HomeScreen lists enrolled courses.
type HomeScreen struct {
	deps    Deps
	menu    components.Menu
	courses []catalog.Course
	loading bool
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen.
func New(deps Deps) *HomeScreen {
	return &HomeScreen{deps: deps, loading: true}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadCourses()
}

func (h *HomeScreen) Title() string {
	return "Courses"
}

func (h *HomeScreen) loadCourses() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		courses, err := h.deps.Catalog.Courses(ctx)
		return coursesLoadedMsg{Courses: courses, Err: err}
	}
}

func (h *HomeScreen) openCourse(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		course, err := h.deps.Catalog.Course(ctx, id)
		return courseLoadedMsg{Course: course, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case coursesLoadedMsg:
		h.loading = false
		if msg.Err != nil {
			h.deps.Log.Error().Err(msg.Err).Msg("course list fetch failed")
			h.errMsg = "Could not load your courses. Check your connection and try again."
			return h, nil
		}
		h.courses = msg.Courses
		h.rebuildMenu()
		return h, nil

	case courseLoadedMsg:
		if msg.Err != nil {
			h.deps.Log.Error().Err(msg.Err).Msg("course fetch failed")
			h.errMsg = "Could not open that course."
			return h, nil
		}
		browser := newCourseScreen(h.deps, msg.Course)
		return h, func() tea.Msg { return router.PushScreenMsg{Screen: browser} }

	case tea.KeyMsg:
		if msg.String() == "r" && h.errMsg != "" {
			h.errMsg = ""
			h.loading = true
			return h, h.loadCourses()
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) rebuildMenu() {
	items := make([]components.MenuItem, 0, len(h.courses))
	for _, c := range h.courses {
		course := c
		items = append(items, components.MenuItem{
			Label:  course.Title,
			Detail: course.Description,
			Action: func() tea.Cmd { return h.openCourse(course.ID) },
		})
	}
	h.menu = components.NewMenu(items)
}

func (h *HomeScreen) View(width, height int) string {
	h.menu.Width = width - 8

	switch {
	case h.loading:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Loading courses..."))
	case h.errMsg != "":
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(h.errMsg)+"\n\n"+theme.Hint.Render("Press R to retry"))
	case len(h.courses) == 0:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No courses yet."))
	}

	header := theme.Title.Width(width).Render("Your Courses")
	return "\n" + header + "\n\n" + h.menu.View()
}
