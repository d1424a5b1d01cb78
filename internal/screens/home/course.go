package home

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/praagya/vidya/internal/catalog"
	"github.com/praagya/vidya/internal/router"
	"github.com/praagya/vidya/internal/screen"
	"github.com/praagya/vidya/internal/screens/player"
	"github.com/praagya/vidya/internal/ui/components"
	"github.com/praagya/vidya/internal/ui/theme"
)

// courseScreen lists a course's chapters and their videos.
type courseScreen struct {
	deps   Deps
	course *catalog.Course
	menu   components.Menu
}

var _ screen.Screen = (*courseScreen)(nil)

func newCourseScreen(deps Deps, course *catalog.Course) *courseScreen {
	s := &courseScreen{deps: deps, course: course}
	s.menu = components.NewMenu(s.buildItems())
	return s
}

func (s *courseScreen) buildItems() []components.MenuItem {
	var items []components.MenuItem
	for _, ch := range s.course.Chapters {
		items = append(items, components.MenuItem{
			Label:    ch.Title,
			Disabled: true,
		})
		for _, v := range ch.Videos {
			video := v
			items = append(items, components.MenuItem{
				Label:  "  " + video.Title,
				Detail: videoDetail(video),
				Action: func() tea.Cmd {
					return func() tea.Msg {
						return router.PushScreenMsg{
							Screen: player.New(s.deps.Player, video),
						}
					}
				},
			})
		}
	}
	return items
}

func videoDetail(v catalog.Video) string {
	d := components.FormatClock(time.Duration(v.DurationMs) * time.Millisecond)
	switch v.Type {
	case catalog.VideoInteractive:
		return d + "  ◆ interactive"
	case catalog.VideoTrackable, catalog.VideoTrackableRandom:
		return d + "  ● tracked"
	default:
		return d
	}
}

func (s *courseScreen) Init() tea.Cmd { return nil }

func (s *courseScreen) Title() string {
	return s.course.Title
}

func (s *courseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *courseScreen) View(width, height int) string {
	s.menu.Width = width - 8

	if len(s.course.Chapters) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("This course has no content yet."))
	}

	header := theme.Title.Width(width).Render(s.course.Title)
	return "\n" + header + "\n\n" + s.menu.View()
}
