package assessment

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/ignite/kcheck/internal/oracle"
	"github.com/ignite/kcheck/internal/reveal"
	"github.com/ignite/kcheck/internal/timeline"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultCourseID          = "product-manager"
	DefaultUserID            = "temp-user-id"
	DefaultGreetingDelay     = 800 * time.Millisecond
	DefaultNextQuestionDelay = 1500 * time.Millisecond
)

// DefaultPrivilegedRoles may skip questions by answering "skip".
var DefaultPrivilegedRoles = []string{"admin", "student"}

const skipCommand = "skip"

// Config describes the lesson being checked and the learner taking it.
type Config struct {
	LessonContext       string
	PriorLessonsContext string
	LessonName          string
	NextLessonName      string
	CourseName          string
	CourseID            string
	ModuleNum           int
	LessonNum           int

	UserID        string
	DisplayName   string
	Role          string
	IsFirstLesson bool

	// UseBritishEnglish asks the Oracle for British spelling.
	UseBritishEnglish bool

	// FeedbackInstructions overrides the Oracle's default feedback rules.
	FeedbackInstructions string

	PrivilegedRoles   []string
	GreetingDelay     time.Duration
	NextQuestionDelay time.Duration

	// Reveal sets the reading pace. A zero Config means reveal.DefaultConfig.
	// Otherwise a non-positive Tick takes the default interval and the pause
	// counts are used as given, so zero disables a pause.
	Reveal reveal.Config
}

func (c Config) withDefaults() Config {
	if c.CourseID == "" {
		c.CourseID = DefaultCourseID
	}
	if c.UserID == "" {
		c.UserID = DefaultUserID
	}
	if c.PrivilegedRoles == nil {
		c.PrivilegedRoles = DefaultPrivilegedRoles
	}
	if c.GreetingDelay <= 0 {
		c.GreetingDelay = DefaultGreetingDelay
	}
	if c.NextQuestionDelay <= 0 {
		c.NextQuestionDelay = DefaultNextQuestionDelay
	}
	if c.Reveal == (reveal.Config{}) {
		c.Reveal = reveal.DefaultConfig()
	}
	if c.Reveal.Tick <= 0 {
		c.Reveal.Tick = reveal.DefaultConfig().Tick
	}
	if c.Reveal.NewlinePauseTicks < 0 {
		c.Reveal.NewlinePauseTicks = 0
	}
	if c.Reveal.SentencePauseTicks < 0 {
		c.Reveal.SentencePauseTicks = 0
	}
	return c
}

// Surface is the display hosting the conversation.
type Surface interface {
	ScrollToBottom()
}

// Hooks are the completion callbacks of the host. Either may be nil.
type Hooks struct {
	// OnPass runs when the learner proceeds after passing.
	OnPass func() tea.Cmd

	// OnClose runs after the attempt has been reset by Close.
	OnClose func() tea.Cmd
}

// Deps are the collaborators of a Controller. Only Oracle is required.
type Deps struct {
	Oracle  oracle.Oracle
	Results ResultLogger
	Log     *zap.Logger
	Surface Surface
	Hooks   Hooks
	Rand    *rand.Rand
}

// Controller is the state machine of one knowledge check. All methods must
// be called from the Bubble Tea update loop; Oracle calls run as commands and
// come back through Update.
type Controller struct {
	cfg  Config
	deps Deps
	log  *zap.Logger

	sess     Session
	timeline *timeline.Timeline
	reveal   *reveal.Scheduler

	// ctx is cancelled when the epoch ends.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an idle Controller. Call Open to start the attempt.
func New(cfg Config, deps Deps) *Controller {
	cfg = cfg.withDefaults()
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	tl := timeline.New()
	c := &Controller{
		cfg:      cfg,
		deps:     deps,
		log:      log.With(zap.String("course", cfg.CourseID), zap.Int("module", cfg.ModuleNum), zap.Int("lesson", cfg.LessonNum)),
		sess:     newSession(ScoringFor(cfg.IsFirstLesson), 0),
		timeline: tl,
		reveal:   reveal.New(cfg.Reveal, tl),
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// SetSurface sets the display to scroll on every change.
func (c *Controller) SetSurface(s Surface) {
	c.deps.Surface = s
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Session returns a snapshot of the attempt state.
func (c *Controller) Session() Session {
	s := c.sess
	s.Answers = append([]Answer(nil), c.sess.Answers...)
	return s
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.sess.Phase
}

// Timeline returns the conversation. Callers must not append to it.
func (c *Controller) Timeline() *timeline.Timeline {
	return c.timeline
}

// Visible returns the currently displayed text of message i.
func (c *Controller) Visible(i int) string {
	return c.reveal.Visible(i)
}

// Revealing reports whether a message is playing or waiting to play.
func (c *Controller) Revealing() bool {
	return !c.reveal.Idle()
}

// CanSubmit reports whether Submit would act on input.
func (c *Controller) CanSubmit() bool {
	switch c.sess.Phase {
	case PhaseAwaitingFirstResponse, PhaseAskingQuestion, PhaseQuestionUnavailable:
		return true
	default:
		return false
	}
}

// Open starts the attempt: the greeting appears after GreetingDelay.
// It does nothing unless the controller is idle.
func (c *Controller) Open() tea.Cmd {
	if c.sess.Phase != PhaseIdle {
		return nil
	}
	c.setPhase(PhaseGreeting)
	epoch := c.sess.Epoch
	return tea.Tick(c.cfg.GreetingDelay, func(time.Time) tea.Msg {
		return greetingMsg{epoch: epoch}
	})
}

// Submit handles learner input. Blank input and input arriving while the
// controller is busy are ignored.
func (c *Controller) Submit(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" || !c.CanSubmit() {
		return nil
	}

	c.timeline.Append(timeline.Message{Role: timeline.RoleUser, Text: text})
	c.scroll()

	switch c.sess.Phase {
	case PhaseAwaitingFirstResponse, PhaseQuestionUnavailable:
		return c.requestQuestion()
	}

	if c.canSkip(text) {
		c.log.Debug("question skipped", zap.Int("question", c.sess.NextQuestionNumber()))
		c.sess.Answers = append(c.sess.Answers, Answer{
			Question:   c.sess.CurrentQuestion,
			AnswerText: SkippedAnswer,
			IsCorrect:  true,
			Feedback:   SkippedFeedback,
		})
		if c.lastAnswerIn() {
			return c.awaitResult()
		}
		return c.requestQuestion()
	}

	c.setPhase(PhaseEvaluating)
	c.sess.IsEvaluating = true
	return c.evaluate(text)
}

// Update routes reveal ticks and Oracle results. Messages from an earlier
// epoch are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case reveal.TickMsg:
		return c.handleTick(msg)
	case greetingMsg:
		if msg.epoch != c.sess.Epoch {
			return nil
		}
		return c.handleGreeting()
	case questionReadyMsg:
		if msg.epoch != c.sess.Epoch {
			return nil
		}
		return c.handleQuestionReady(msg)
	case evaluatedMsg:
		if msg.epoch != c.sess.Epoch {
			return nil
		}
		return c.handleEvaluated(msg)
	case nextQuestionMsg:
		if msg.epoch != c.sess.Epoch || c.sess.Phase != PhaseFetchingQuestion {
			return nil
		}
		return c.requestQuestion()
	case ResultLoggedMsg:
		if msg.Err != nil {
			c.log.Warn("log knowledge check result", zap.Error(msg.Err))
		}
		return nil
	}
	return nil
}

// Retake starts a fresh attempt after completion, going straight to
// question 1.
func (c *Controller) Retake() tea.Cmd {
	if c.sess.Phase != PhaseCompleted {
		return nil
	}
	c.reset()
	c.scroll()
	return c.requestQuestion()
}

// Close abandons the attempt and returns to idle. In-flight Oracle results
// are discarded.
func (c *Controller) Close() tea.Cmd {
	c.reset()
	c.scroll()
	if c.deps.Hooks.OnClose != nil {
		return c.deps.Hooks.OnClose()
	}
	return nil
}

// Proceed hands control to the host after a passing attempt.
func (c *Controller) Proceed() tea.Cmd {
	if !c.sess.IsComplete || !c.sess.Passed || c.deps.Hooks.OnPass == nil {
		return nil
	}
	return c.deps.Hooks.OnPass()
}

func (c *Controller) handleTick(msg reveal.TickMsg) tea.Cmd {
	done, cmd := c.reveal.Update(msg)
	c.scroll()
	if done == reveal.None {
		return cmd
	}
	return tea.Batch(cmd, c.checkTrigger())
}

func (c *Controller) handleGreeting() tea.Cmd {
	if c.sess.Phase != PhaseGreeting {
		return nil
	}
	c.setPhase(PhaseAwaitingFirstResponse)
	return c.say(greetingText(c.cfg, c.intN(len(greetingVariations))), timeline.VariantNormal)
}

func (c *Controller) handleQuestionReady(msg questionReadyMsg) tea.Cmd {
	if c.sess.Phase != PhaseFetchingQuestion {
		return nil
	}
	if msg.err != nil {
		c.log.Warn("question request failed",
			zap.Int("question", msg.number),
			zap.String("kind", oracle.Kind(msg.err)),
			zap.Error(msg.err))
		c.setPhase(PhaseQuestionUnavailable)
		return c.say(QuestionFallback, timeline.VariantNormal)
	}

	c.sess.CurrentQuestionIndex = msg.number - 1
	c.sess.CurrentQuestion = msg.question
	c.setPhase(PhaseAskingQuestion)
	return c.say(QuestionText(msg.number, msg.question), timeline.VariantQuestion)
}

func (c *Controller) handleEvaluated(msg evaluatedMsg) tea.Cmd {
	if c.sess.Phase != PhaseEvaluating {
		return nil
	}
	c.sess.IsEvaluating = false

	if msg.err != nil {
		c.log.Warn("evaluation failed",
			zap.Int("question", c.sess.NextQuestionNumber()),
			zap.String("kind", oracle.Kind(msg.err)),
			zap.Error(msg.err))
		c.setPhase(PhaseAskingQuestion)
		return c.say(EvaluateFallback, timeline.VariantNormal)
	}

	c.sess.Answers = append(c.sess.Answers, Answer{
		Question:   c.sess.CurrentQuestion,
		AnswerText: msg.answer,
		IsCorrect:  msg.result.IsCorrect,
		Feedback:   msg.result.Feedback,
	})
	feedback := c.say(msg.result.Feedback, timeline.VariantNormal)

	if c.lastAnswerIn() {
		return tea.Batch(feedback, c.awaitResult())
	}

	c.setPhase(PhaseFetchingQuestion)
	epoch := c.sess.Epoch
	return tea.Batch(feedback, tea.Tick(c.cfg.NextQuestionDelay, func(time.Time) tea.Msg {
		return nextQuestionMsg{epoch: epoch}
	}))
}

func (c *Controller) lastAnswerIn() bool {
	return len(c.sess.Answers) >= c.sess.TotalQuestions
}

// awaitResult arms the score trigger. It fires right away when nothing is
// left to reveal.
func (c *Controller) awaitResult() tea.Cmd {
	c.sess.PendingScore.Arm(c.sess.Answers)
	c.setPhase(PhaseAwaitingResult)
	return c.checkTrigger()
}

func (c *Controller) checkTrigger() tea.Cmd {
	answers, ok := c.sess.PendingScore.Fire(c.reveal.Idle())
	if !ok {
		return nil
	}
	return c.complete(answers)
}

func (c *Controller) complete(answers []Answer) tea.Cmd {
	score := CountCorrect(answers)
	passed := c.sess.Scoring.Passed(score)

	c.sess.Score = score
	c.sess.Passed = passed
	c.sess.IsComplete = true
	c.setPhase(PhaseCompleted)

	variant := timeline.VariantFailedSummary
	if passed {
		variant = timeline.VariantPassedSummary
	}
	c.say(SummaryText(score, c.sess.Scoring), variant)

	c.log.Info("knowledge check completed",
		zap.String("user", c.cfg.UserID),
		zap.Int("score", score),
		zap.Int("total", c.sess.TotalQuestions),
		zap.Bool("passed", passed))

	return c.logResult(Result{
		UserID:         c.cfg.UserID,
		CourseID:       c.cfg.CourseID,
		ModuleNum:      c.cfg.ModuleNum,
		LessonNum:      c.cfg.LessonNum,
		Score:          score,
		TotalQuestions: c.sess.TotalQuestions,
		Passed:         passed,
		Answers:        answers,
		CompletedAt:    time.Now(),
	})
}

func (c *Controller) logResult(r Result) tea.Cmd {
	if c.deps.Results == nil {
		return nil
	}
	results := c.deps.Results
	epoch := c.sess.Epoch
	// A finished attempt is recorded even if the learner closes right away.
	ctx := context.WithoutCancel(c.ctx)
	return func() tea.Msg {
		return ResultLoggedMsg{epoch: epoch, Err: results.LogResult(ctx, r)}
	}
}

func (c *Controller) requestQuestion() tea.Cmd {
	n := c.sess.NextQuestionNumber()
	c.sess.CurrentQuestionIndex = n - 1
	c.sess.CurrentQuestion = ""
	c.setPhase(PhaseFetchingQuestion)

	req := oracle.QuestionRequest{
		LessonContext:       c.cfg.LessonContext,
		PriorLessonsContext: c.cfg.PriorLessonsContext,
		QuestionNumber:      n,
		TotalQuestions:      c.sess.TotalQuestions,
		PreviousQA:          previousQA(c.sess.Answers),
		IsAboutPriorLessons: c.sess.IsAboutPriorLessons(n),
		NumPriorQuestions:   c.sess.PriorLessonQuestionCount,
		UseBritishEnglish:   c.cfg.UseBritishEnglish,
	}
	o, ctx, epoch := c.deps.Oracle, c.ctx, c.sess.Epoch
	return func() tea.Msg {
		q, err := o.NextQuestion(ctx, req)
		return questionReadyMsg{epoch: epoch, number: n, question: q, err: err}
	}
}

func (c *Controller) evaluate(answer string) tea.Cmd {
	req := oracle.EvaluationRequest{
		LessonContext:        c.cfg.LessonContext,
		Question:             c.sess.CurrentQuestion,
		Answer:               answer,
		FeedbackInstructions: c.cfg.FeedbackInstructions,
	}
	o, ctx, epoch := c.deps.Oracle, c.ctx, c.sess.Epoch
	return func() tea.Msg {
		res, err := o.Evaluate(ctx, req)
		if err == nil && res == nil {
			err = &oracle.MalformedResponseError{Op: "evaluate", Err: oracle.ErrNoEvaluation}
		}
		return evaluatedMsg{epoch: epoch, answer: answer, result: res, err: err}
	}
}

// say appends an assistant message and queues it for reveal when its
// variant animates.
func (c *Controller) say(text string, variant timeline.Variant) tea.Cmd {
	i := c.timeline.Append(timeline.Message{Role: timeline.RoleAssistant, Text: text, Variant: variant})
	c.scroll()
	if !c.timeline.At(i).Animated() {
		return nil
	}
	return c.reveal.Enqueue(i)
}

func (c *Controller) canSkip(text string) bool {
	if !strings.EqualFold(text, skipCommand) {
		return false
	}
	for _, r := range c.cfg.PrivilegedRoles {
		if strings.EqualFold(r, c.cfg.Role) {
			return true
		}
	}
	return false
}

// reset discards the attempt and starts a new epoch.
func (c *Controller) reset() {
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.reveal.Stop()
	c.timeline.Reset()
	c.sess = newSession(c.sess.Scoring, c.sess.Epoch+1)
	c.log.Debug("attempt reset", zap.Int("epoch", c.sess.Epoch))
}

func (c *Controller) setPhase(p Phase) {
	if c.sess.Phase == p {
		return
	}
	c.log.Debug("phase",
		zap.Stringer("from", c.sess.Phase),
		zap.Stringer("to", p),
		zap.Int("epoch", c.sess.Epoch))
	c.sess.Phase = p
}

func (c *Controller) scroll() {
	if c.deps.Surface != nil {
		c.deps.Surface.ScrollToBottom()
	}
}

func (c *Controller) intN(n int) int {
	if c.deps.Rand != nil {
		return c.deps.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func previousQA(answers []Answer) []oracle.QA {
	qa := make([]oracle.QA, len(answers))
	for i, a := range answers {
		qa[i] = oracle.QA{
			Question:  a.Question,
			Answer:    a.AnswerText,
			IsCorrect: a.IsCorrect,
			Feedback:  a.Feedback,
		}
	}
	return qa
}
