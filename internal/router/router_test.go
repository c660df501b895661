package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/persona/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title    string
	initRan  bool
	focusRan int
	got      []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }
func (s *stubScreen) Focus() tea.Cmd {
	s.focusRan++
	return nil
}

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "second", r.Active().Title())
	assert.True(t, s2.initRan)
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)
	r.Push(&stubScreen{title: "second"})
	r.Pop()

	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "first", r.Active().Title())
	assert.Equal(t, 1, s1.focusRan)
}

func TestPopNoopAtBottom(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Pop()
	assert.Equal(t, 1, r.Depth())
}

func TestReplace(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	s2 := &stubScreen{title: "second"}
	r.Replace(s2)

	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "second", r.Active().Title())
	assert.True(t, s2.initRan)
}

func TestReplaceScreenMsg(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	s2 := &stubScreen{title: "second"}
	r.Update(ReplaceScreenMsg{Screen: s2})

	assert.Equal(t, "second", r.Active().Title())
	assert.True(t, s2.initRan)
}

func TestReplacePreservesStackDepth(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	r.Push(&stubScreen{title: "second"})
	r.Replace(&stubScreen{title: "third"})

	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "third", r.Active().Title())
}

func TestPopToRoot(t *testing.T) {
	root := &stubScreen{title: "root"}
	r := New(root)
	r.Update(PushScreenMsg{Screen: &stubScreen{title: "a"}})
	r.Update(PushScreenMsg{Screen: &stubScreen{title: "b"}})
	r.Update(PopToRootMsg{})

	assert.Equal(t, 1, r.Depth())
	assert.Same(t, root, r.Active())
	assert.Equal(t, 1, root.focusRan)
}

func TestUpdateForwardsToActive(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	s2 := &stubScreen{title: "second"}
	r := New(s1)
	r.Push(s2)

	r.Update("hello")
	assert.Empty(t, s1.got)
	assert.Equal(t, []tea.Msg{"hello"}, s2.got)
	assert.Equal(t, "second", r.View(80, 24))
}
