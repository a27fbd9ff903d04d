package session

import (
	"errors"
	"math"
	"sync"
	"time"

	"study-quiz-service/internal/domain"
)

// Screen identifies where the user is within an attempt.
type Screen string

const (
	ScreenHome    Screen = "home"
	ScreenReading Screen = "reading"
	ScreenQuiz    Screen = "quiz"
	ScreenResults Screen = "results"
)

const (
	defaultQuestionSeconds = 30
	defaultWarningSeconds  = 10
	noSelection            = -1
)

var (
	// ErrInvalidTransition is returned when an operation is not valid on the
	// current screen.
	ErrInvalidTransition = errors.New("operation not valid on current screen")
	// ErrOptionOutOfRange is returned for a selection index outside the
	// current question's options.
	ErrOptionOutOfRange = errors.New("selected option out of range")
)

// EventType tags the messages an Engine pushes to its listener.
type EventType string

const (
	EventState   EventType = "state"
	EventTick    EventType = "tick"
	EventResults EventType = "results"
)

// Event is pushed to the presentation layer after every state change.
type Event struct {
	Type    EventType `json:"type"`
	State   Snapshot  `json:"state"`
	Results *Summary  `json:"results,omitempty"`
}

// QuestionView is the client-facing form of the current question. The correct
// answer index is revealed only once an option has been selected.
type QuestionView struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	Selected      *int     `json:"selected,omitempty"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
}

// Snapshot is a point-in-time view of the attempt.
type Snapshot struct {
	Screen         Screen          `json:"screen"`
	TopicIndex     int             `json:"topicIndex"`
	TopicCount     int             `json:"topicCount"`
	QuestionIndex  int             `json:"questionIndex"`
	QuestionCount  int             `json:"questionCount"`
	TotalQuestions int             `json:"totalQuestions"`
	Score          int             `json:"score"`
	CorrectAnswers int             `json:"correctAnswers"`
	Attempted      int             `json:"attemptedQuestions"`
	Skipped        int             `json:"skippedQuestions"`
	TimeRemaining  int             `json:"timeRemaining"`
	Warning        bool            `json:"warning"`
	ElapsedSeconds int             `json:"elapsedSeconds"`
	Reading        *domain.Reading `json:"reading,omitempty"`
	Question       *QuestionView   `json:"currentQuestion,omitempty"`
}

// Summary is the Results-screen report.
type Summary struct {
	TotalQuestions   int `json:"totalQuestions"`
	Attempted        int `json:"attemptedQuestions"`
	Skipped          int `json:"skippedQuestions"`
	CorrectAnswers   int `json:"correctAnswers"`
	Score            int `json:"score"`
	Percentage       int `json:"percentage"`
	TimeTakenSeconds int `json:"timeTakenSeconds"`
}

// Engine is the quiz progression state machine. It owns every cursor, counter
// and timer handle for one attempt; a new Engine is constructed per attempt.
// The per-question countdown runs on the injected Scheduler and reports expiry
// through the same skip path the user would take. Ticks carry a generation id
// so a tick that fires after the question it belongs to is gone is discarded.
type Engine struct {
	mu        sync.Mutex
	topics    []domain.Topic
	total     int
	scheduler Scheduler
	clock     *Clock
	listener  func(Event)

	questionSeconds int
	warningSeconds  int

	screen        Screen
	topicIndex    int
	questionIndex int
	score         int
	correct       int
	attempted     int
	skipped       int
	selected      int
	remaining     int
	clockStarted  bool

	generation      uint64
	cancelCountdown func()
}

// NewEngine builds an engine for one attempt over topics, starting at the
// reading screen of topic 0. The total question count is fixed at this point.
func NewEngine(topics []domain.Topic, scheduler Scheduler) *Engine {
	return NewEngineWithClock(topics, scheduler, time.Now)
}

// NewEngineWithClock allows deterministic timestamps in tests.
func NewEngineWithClock(topics []domain.Topic, scheduler Scheduler, now func() time.Time) *Engine {
	return &Engine{
		topics:          topics,
		total:           domain.TotalQuestions(topics),
		scheduler:       scheduler,
		clock:           NewClock(now),
		questionSeconds: defaultQuestionSeconds,
		warningSeconds:  defaultWarningSeconds,
		screen:          ScreenReading,
		selected:        noSelection,
		remaining:       defaultQuestionSeconds,
	}
}

// SetListener registers the event sink. Must be called before Start.
func (e *Engine) SetListener(fn func(Event)) {
	e.mu.Lock()
	e.listener = fn
	e.mu.Unlock()
}

// SetCountdown overrides the per-question budget and warning threshold.
// Non-positive values keep the defaults. Must be called before Start.
func (e *Engine) SetCountdown(questionSeconds, warningSeconds int) {
	e.mu.Lock()
	if questionSeconds > 0 {
		e.questionSeconds = questionSeconds
		e.remaining = questionSeconds
	}
	if warningSeconds > 0 {
		e.warningSeconds = warningSeconds
	}
	e.mu.Unlock()
}

// Start begins questioning for the current topic. Valid only from the reading
// screen. The question cursor resets to 0, the session clock starts on the
// first activation and resumes on later ones, and the countdown begins.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.screen != ScreenReading {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	e.screen = ScreenQuiz
	e.questionIndex = 0
	if !e.clockStarted {
		e.clock.Start()
		e.clockStarted = true
	} else {
		e.clock.Resume()
	}
	if e.currentQuestionCountLocked() == 0 {
		// Nothing to ask in this topic; fall through to the next one.
		e.advanceLocked()
	} else {
		e.resetQuestionLocked()
	}
	e.emitAndUnlock()
	return nil
}

// SelectOption records the chosen option for the current question. Only the
// first selection counts; later calls are no-ops. Selecting stops the
// countdown and updates the attempt counters.
func (e *Engine) SelectOption(index int) error {
	e.mu.Lock()
	if e.screen != ScreenQuiz {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	if e.selected != noSelection {
		e.mu.Unlock()
		return nil
	}
	question := e.topics[e.topicIndex].Test[e.questionIndex]
	if index < 0 || index >= len(question.Options) {
		e.mu.Unlock()
		return ErrOptionOutOfRange
	}
	e.stopCountdownLocked()
	e.selected = index
	e.attempted++
	if index == question.CorrectAnswer {
		e.score++
		e.correct++
	}
	e.emitAndUnlock()
	return nil
}

// Skip abandons the current question before any selection and advances.
// After a selection it is a no-op; advancing is then done via Advance.
func (e *Engine) Skip() error {
	e.mu.Lock()
	if e.screen != ScreenQuiz {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	if e.selected != noSelection {
		e.mu.Unlock()
		return nil
	}
	e.skipLocked()
	e.emitAndUnlock()
	return nil
}

// Advance moves on after an answered question: next question, or the next
// topic's reading screen, or the results screen when nothing remains.
func (e *Engine) Advance() error {
	e.mu.Lock()
	if e.screen != ScreenQuiz || e.selected == noSelection {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	e.advanceLocked()
	e.emitAndUnlock()
	return nil
}

// End finishes the attempt immediately, regardless of remaining questions.
func (e *Engine) End() error {
	e.mu.Lock()
	if e.screen != ScreenQuiz {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	e.finishLocked()
	e.emitAndUnlock()
	return nil
}

// Restart zeroes every cursor, counter and timer and returns to the reading
// screen of topic 0.
func (e *Engine) Restart() error {
	e.mu.Lock()
	if e.screen != ScreenResults {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	e.stopCountdownLocked()
	e.clock.Stop()
	e.clockStarted = false
	e.topicIndex = 0
	e.questionIndex = 0
	e.score = 0
	e.correct = 0
	e.attempted = 0
	e.skipped = 0
	e.selected = noSelection
	e.remaining = e.questionSeconds
	e.screen = ScreenReading
	e.emitAndUnlock()
	return nil
}

// GoHome abandons the attempt from any screen, stopping both timers.
func (e *Engine) GoHome() {
	e.mu.Lock()
	e.stopCountdownLocked()
	e.clock.Stop()
	e.screen = ScreenHome
	e.emitAndUnlock()
}

// BackToReading returns from the quiz screen to the current topic's reading.
// The countdown stops and the session clock pauses; counters are untouched.
func (e *Engine) BackToReading() error {
	e.mu.Lock()
	if e.screen != ScreenQuiz {
		e.mu.Unlock()
		return ErrInvalidTransition
	}
	e.stopCountdownLocked()
	e.clock.Pause()
	e.selected = noSelection
	e.screen = ScreenReading
	e.emitAndUnlock()
	return nil
}

// Snapshot returns the current state view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Results returns the attempt summary.
func (e *Engine) Results() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summaryLocked()
}

// countdownTick is the scheduled per-second callback. A tick whose generation
// no longer matches the engine's is stale and dropped without effect.
func (e *Engine) countdownTick(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || e.screen != ScreenQuiz || e.selected != noSelection {
		e.mu.Unlock()
		return
	}
	e.remaining--
	if e.remaining <= 0 {
		e.remaining = 0
		e.skipLocked()
		e.emitAndUnlock()
		return
	}
	e.emitTickAndUnlock()
}

func (e *Engine) skipLocked() {
	e.stopCountdownLocked()
	e.skipped++
	e.advanceLocked()
}

func (e *Engine) advanceLocked() {
	if e.topicIndex >= len(e.topics) {
		e.finishLocked()
		return
	}
	if e.questionIndex < e.currentQuestionCountLocked()-1 {
		e.questionIndex++
		e.resetQuestionLocked()
		return
	}
	if e.topicIndex < len(e.topics)-1 {
		e.stopCountdownLocked()
		e.clock.Pause()
		e.topicIndex++
		e.questionIndex = 0
		e.selected = noSelection
		e.screen = ScreenReading
		return
	}
	e.finishLocked()
}

func (e *Engine) finishLocked() {
	e.stopCountdownLocked()
	e.clock.Stop()
	e.screen = ScreenResults
}

// resetQuestionLocked clears per-question transient state and restarts the
// countdown with a fresh generation.
func (e *Engine) resetQuestionLocked() {
	e.stopCountdownLocked()
	e.selected = noSelection
	e.remaining = e.questionSeconds
	e.generation++
	gen := e.generation
	e.cancelCountdown = e.scheduler.Schedule(time.Second, func() { e.countdownTick(gen) })
}

// stopCountdownLocked cancels the scheduled countdown and invalidates any
// tick already in flight.
func (e *Engine) stopCountdownLocked() {
	if e.cancelCountdown != nil {
		e.cancelCountdown()
		e.cancelCountdown = nil
	}
	e.generation++
}

func (e *Engine) currentQuestionCountLocked() int {
	if e.topicIndex >= len(e.topics) {
		return 0
	}
	return len(e.topics[e.topicIndex].Test)
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Screen:         e.screen,
		TopicIndex:     e.topicIndex,
		TopicCount:     len(e.topics),
		QuestionIndex:  e.questionIndex,
		QuestionCount:  e.currentQuestionCountLocked(),
		TotalQuestions: e.total,
		Score:          e.score,
		CorrectAnswers: e.correct,
		Attempted:      e.attempted,
		Skipped:        e.skipped,
		TimeRemaining:  e.remaining,
		Warning:        e.screen == ScreenQuiz && e.remaining > 0 && e.remaining <= e.warningSeconds,
		ElapsedSeconds: e.clock.Elapsed(),
	}
	if e.topicIndex < len(e.topics) {
		topic := e.topics[e.topicIndex]
		if e.screen == ScreenReading {
			reading := topic.Reading
			snap.Reading = &reading
		}
		if e.screen == ScreenQuiz && e.questionIndex < len(topic.Test) {
			question := topic.Test[e.questionIndex]
			view := &QuestionView{Prompt: question.Question, Options: question.Options}
			if e.selected != noSelection {
				selected := e.selected
				answer := question.CorrectAnswer
				view.Selected = &selected
				view.CorrectAnswer = &answer
			}
			snap.Question = view
		}
	}
	return snap
}

func (e *Engine) summaryLocked() Summary {
	percentage := 0
	if e.total > 0 {
		percentage = int(math.Round(float64(e.correct) / float64(e.total) * 100))
	}
	return Summary{
		TotalQuestions:   e.total,
		Attempted:        e.attempted,
		Skipped:          e.skipped,
		CorrectAnswers:   e.correct,
		Score:            e.score,
		Percentage:       percentage,
		TimeTakenSeconds: e.clock.Elapsed(),
	}
}

// emitAndUnlock pushes a state event (plus results when the attempt just
// finished) after releasing the lock, so listeners may call back in.
func (e *Engine) emitAndUnlock() {
	events := []Event{{Type: EventState, State: e.snapshotLocked()}}
	if e.screen == ScreenResults {
		summary := e.summaryLocked()
		events = append(events, Event{Type: EventResults, State: events[0].State, Results: &summary})
	}
	listener := e.listener
	e.mu.Unlock()
	if listener != nil {
		for _, event := range events {
			listener(event)
		}
	}
}

func (e *Engine) emitTickAndUnlock() {
	event := Event{Type: EventTick, State: e.snapshotLocked()}
	listener := e.listener
	e.mu.Unlock()
	if listener != nil {
		listener(event)
	}
}
