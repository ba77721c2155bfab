package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/screen/screentest"
	"github.com/abhisek/studyaudit/internal/screens/acquire"
	"github.com/abhisek/studyaudit/internal/screens/busy"
	"github.com/abhisek/studyaudit/internal/screens/history"
	"github.com/abhisek/studyaudit/internal/screens/review"
	"github.com/abhisek/studyaudit/internal/session"
)

func newTestModel(state session.State) (AppModel, *screentest.Controller) {
	ctrl := screentest.New(state)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	m := newAppModel(screen.Deps{Ctx: context.Background(), Ctrl: ctrl}, log)
	m.Init()
	return m, ctrl
}

func update(m AppModel, msg tea.Msg) AppModel {
	next, _ := m.Update(msg)
	return next.(AppModel)
}

func TestInitShowsAcquire(t *testing.T) {
	m, _ := newTestModel(session.State{Step: session.StepAcquiring})

	_, ok := m.router.Active().(*acquire.AcquireScreen)
	assert.True(t, ok)
}

func TestHeartbeatFollowsControllerStep(t *testing.T) {
	m, ctrl := newTestModel(session.State{Step: session.StepAcquiring})

	ctrl.SetState(session.State{Step: session.StepBusy, Stage: "detecting topics"})
	m = update(m, heartbeatMsg{})
	_, ok := m.router.Active().(*busy.BusyScreen)
	require.True(t, ok)

	ctrl.SetState(session.State{Step: session.StepBrowsingHistory})
	m = update(m, heartbeatMsg{})
	_, ok = m.router.Active().(*history.HistoryScreen)
	assert.True(t, ok)
}

func TestCtrlRResets(t *testing.T) {
	m, ctrl := newTestModel(session.State{Step: session.StepAcquiring})

	update(m, tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})

	assert.True(t, ctrl.Called("reset"))
}

func TestCtrlLOpensHistory(t *testing.T) {
	m, ctrl := newTestModel(session.State{Step: session.StepAcquiring})

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	cmd()

	assert.True(t, ctrl.Called("view history"))
}

func TestDoneStatus(t *testing.T) {
	m, ctrl := newTestModel(session.State{Step: session.StepAcquiring})

	m = update(m, screen.DoneMsg{Op: "submit topic", Err: fmt.Errorf("wrapped: %w", session.ErrAbandoned)})
	assert.Empty(t, m.status)

	m = update(m, screen.DoneMsg{Op: "end session", Err: session.ErrNoAnswers})
	assert.Equal(t, session.ErrNoAnswers.Error(), m.status)

	ctrl.SetState(session.State{Step: session.StepAcquiring, Notice: "Detecting topics failed."})
	m = update(m, screen.DoneMsg{Op: "submit topic", Err: errors.New("boom")})
	assert.Empty(t, m.status)
}

func TestReviewScreenForEvaluation(t *testing.T) {
	eval := &quiz.EvaluationResult{TotalQuestions: 1, Percentage: 100}
	m, _ := newTestModel(session.State{Step: session.StepReviewing, Quiz: &quiz.Quiz{Title: "T"}, Evaluation: eval})

	_, ok := m.router.Active().(*review.ReviewScreen)
	assert.True(t, ok)
}

func TestViewTooSmall(t *testing.T) {
	m, _ := newTestModel(session.State{Step: session.StepAcquiring})
	m = update(m, tea.WindowSizeMsg{Width: 40, Height: 10})

	assert.Contains(t, m.render(), "Terminal too small")
}

func TestViewShowsNotice(t *testing.T) {
	m, _ := newTestModel(session.State{Step: session.StepAcquiring, Notice: "Generating quiz failed."})
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Contains(t, m.render(), "Generating quiz failed.")
}
