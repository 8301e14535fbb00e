package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/blueprint-backend/internal/config"
	"github.com/futig/blueprint-backend/internal/entity"
	"github.com/futig/blueprint-backend/internal/pkg/formatter"
	pkgRetry "github.com/futig/blueprint-backend/internal/pkg/retry"
	"github.com/futig/blueprint-backend/internal/pkg/validator"
	"github.com/futig/blueprint-backend/internal/telegram/keyboard"
	"github.com/futig/blueprint-backend/internal/telegram/render"
	"github.com/futig/blueprint-backend/internal/telegram/state"
	"github.com/futig/blueprint-backend/internal/wizard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testUserID = int64(1)
	testChatID = int64(100)
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErrs []error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every sent or edited message
func (f *fakeBot) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeBot) last() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeBot) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type fakePlanUC struct {
	plan       string
	blueprints string
	err        error
	onCall     func()
	planReqs   []*entity.BuildRequest
	bpPlans    []string
}

func (f *fakePlanUC) GeneratePlan(_ context.Context, req *entity.BuildRequest) (*entity.PlanResult, error) {
	f.planReqs = append(f.planReqs, req)
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &entity.PlanResult{Kind: entity.ResultKindPlan, Text: f.plan}, nil
}

func (f *fakePlanUC) GenerateBlueprints(_ context.Context, plan string) (*entity.PlanResult, error) {
	f.bpPlans = append(f.bpPlans, plan)
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &entity.PlanResult{Kind: entity.ResultKindBlueprints, Text: f.blueprints}, nil
}

type fakeFiles struct {
	data        []byte
	contentType string
	calls       int
}

func (f *fakeFiles) Download(_ context.Context, _ string) ([]byte, string, error) {
	f.calls++
	return f.data, f.contentType, nil
}

type testEnv struct {
	ctx    context.Context
	bot    *fakeBot
	uc     *fakePlanUC
	files  *fakeFiles
	sm     *state.Manager
	cb     *CallbackHandler
	desc   *DescriptionHandler
	budget *BudgetHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	bot := &fakeBot{}
	sender := NewMessageSender(bot, &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}, zap.NewNop())
	sm := state.NewManager(state.NewMemoryStorage(time.Hour))
	kb := keyboard.NewBuilder()
	uc := &fakePlanUC{plan: "### Phase 1: Foundation\nPour footings", blueprints: "### Top View\n+--+\n|  |\n+--+"}
	files := &fakeFiles{}
	images := validator.NewFileValidator(config.FileUploadConfig{MaxImageSize: 1 << 10, MaxUploadSize: 2 << 10})

	cb := NewCallbackHandler(bot, sender, sm, kb, uc, formatter.NewFactory(), zap.NewNop())
	cb.now = func() time.Time { return time.UnixMilli(1700000000000) }

	return &testEnv{
		ctx:    context.Background(),
		bot:    bot,
		uc:     uc,
		files:  files,
		sm:     sm,
		cb:     cb,
		desc:   NewDescriptionHandler(sender, sm, kb, files, images),
		budget: NewBudgetHandler(sender, sm, kb),
	}
}

func (e *testEnv) click(t *testing.T, data string) {
	t.Helper()
	require.NoError(t, e.cb.Handle(e.ctx, &Message{
		ChatID:       testChatID,
		UserID:       testUserID,
		MessageID:    5,
		CallbackData: data,
	}))
}

func (e *testEnv) wizard(t *testing.T) *wizard.Wizard {
	t.Helper()
	w, err := e.sm.Get(e.ctx, testUserID)
	require.NoError(t, err)
	return w
}

// toTerrainStep fills steps 1 and 2 and leaves the wizard on step 3
func (e *testEnv) toTerrainStep(t *testing.T) {
	t.Helper()
	e.click(t, "bt:house")
	e.click(t, "nav:next")
	require.NoError(t, e.desc.Handle(e.ctx, &Message{ChatID: testChatID, UserID: testUserID, Text: "a two-storey cabin"}))
	e.click(t, "nav:next")
	require.Equal(t, wizard.StepTerrainBudget, e.wizard(t).Step)
}

func (e *testEnv) toResults(t *testing.T) {
	t.Helper()
	e.toTerrainStep(t)
	e.click(t, "tr:Forest")
	require.NoError(t, e.budget.Handle(e.ctx, &Message{ChatID: testChatID, UserID: testUserID, Text: " $200k "}))
	e.click(t, "run:plan")
	require.Equal(t, wizard.StepResults, e.wizard(t).Step)
}

func TestCallback_SelectBuildingTypeEditsInPlace(t *testing.T) {
	e := newTestEnv(t)

	e.click(t, "bt:bridge")

	assert.Equal(t, entity.BuildingTypeBridge, e.wizard(t).BuildingType)
	edit, ok := e.bot.last().(tgbotapi.EditMessageTextConfig)
	require.True(t, ok, "expected an edit, got %T", e.bot.last())
	assert.Equal(t, 5, edit.MessageID)
	assert.Equal(t, render.ParseMode, edit.ParseMode)
	require.NotNil(t, edit.ReplyMarkup)
	assert.Equal(t, "✅ 🌉 Bridge", edit.ReplyMarkup.InlineKeyboard[0][0].Text)
}

func TestCallback_NextRequiresBuildingType(t *testing.T) {
	e := newTestEnv(t)

	e.click(t, "nav:next")

	assert.Equal(t, []string{"⚠️ Please select a building type"}, e.bot.texts())
	assert.Equal(t, wizard.StepBuildingType, e.wizard(t).Step)
}

func TestCallback_UnknownAction(t *testing.T) {
	e := newTestEnv(t)

	err := e.cb.Handle(e.ctx, &Message{UserID: testUserID, CallbackData: "zz:top"})

	assert.Error(t, err)
}

func TestFlow_PlanBlueprintsDownload(t *testing.T) {
	e := newTestEnv(t)
	e.toResults(t)

	require.Len(t, e.uc.planReqs, 1)
	assert.Equal(t, &entity.BuildRequest{
		BuildingType: entity.BuildingTypeHouse,
		Description:  "a two-storey cabin",
		TerrainType:  entity.TerrainForest,
		Budget:       "$200k",
	}, e.uc.planReqs[0])

	texts := e.bot.texts()
	assert.Contains(t, texts, render.MsgGeneratingPlan)
	assert.Contains(t, texts, "<b>Phase 1: Foundation</b>\nPour footings")
	assert.NotEmpty(t, e.bot.requests, "typing indicator expected")

	w := e.wizard(t)
	assert.False(t, w.Busy)
	assert.Equal(t, "### Phase 1: Foundation\nPour footings", w.Plan)

	e.click(t, "run:blueprints")
	assert.Equal(t, []string{w.Plan}, e.uc.bpPlans)
	assert.Contains(t, e.bot.texts(), "<b>Top View</b>\n<pre>+--+\n|  |\n+--+</pre>")

	e.click(t, "dl:blueprints:md")
	doc, ok := e.bot.last().(tgbotapi.DocumentConfig)
	require.True(t, ok, "expected a document, got %T", e.bot.last())
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "construction-blueprints-1700000000000.md", file.Name)
	assert.True(t, strings.HasPrefix(string(file.Bytes), "# Construction Blueprints\n"))
}

func TestRun_RejectedWhileBusy(t *testing.T) {
	e := newTestEnv(t)
	e.toTerrainStep(t)
	e.click(t, "tr:Urban")
	_, err := e.sm.Update(e.ctx, testUserID, func(w *wizard.Wizard) error {
		if err := w.SetBudget("10k"); err != nil {
			return err
		}
		_, err := w.BeginAnalyze()
		return err
	})
	require.NoError(t, err)
	e.bot.reset()

	e.click(t, "run:plan")

	assert.Empty(t, e.uc.planReqs)
	assert.Equal(t, []string{render.ErrBusy}, e.bot.texts())
}

func TestRun_ValidationMessage(t *testing.T) {
	e := newTestEnv(t)
	e.toTerrainStep(t)
	e.bot.reset()

	e.click(t, "run:plan")

	assert.Equal(t, []string{"⚠️ Please select a terrain type"}, e.bot.texts())
	assert.False(t, e.wizard(t).Busy)
}

func TestRun_UpstreamFailureReleasesWizard(t *testing.T) {
	e := newTestEnv(t)
	e.uc.err = &entity.UpstreamError{StatusCode: 529, Message: "Overloaded"}
	e.toTerrainStep(t)
	e.click(t, "tr:Coastal")
	require.NoError(t, e.budget.Handle(e.ctx, &Message{ChatID: testChatID, UserID: testUserID, Text: "50k"}))

	e.click(t, "run:plan")

	w := e.wizard(t)
	assert.False(t, w.Busy)
	assert.Equal(t, wizard.StepTerrainBudget, w.Step)
	assert.Contains(t, e.bot.texts(), "❌ Overloaded (HTTP 529)")
}

func TestRun_RestartDuringGenerationDropsResult(t *testing.T) {
	e := newTestEnv(t)
	e.toTerrainStep(t)
	e.click(t, "tr:Rural")
	require.NoError(t, e.budget.Handle(e.ctx, &Message{ChatID: testChatID, UserID: testUserID, Text: "1M"}))
	e.uc.onCall = func() {
		_, err := e.sm.Restart(e.ctx, testUserID)
		require.NoError(t, err)
	}

	e.click(t, "run:plan")

	w := e.wizard(t)
	assert.Equal(t, wizard.StepBuildingType, w.Step)
	assert.Empty(t, w.Plan)
	assert.False(t, w.Busy)
}

func TestNav_BackFromResultsKeepsAnswers(t *testing.T) {
	e := newTestEnv(t)
	e.toResults(t)

	e.click(t, "nav:back")

	w := e.wizard(t)
	assert.Equal(t, wizard.StepTerrainBudget, w.Step)
	assert.Equal(t, "$200k", w.Budget)
}

func TestNav_StartOver(t *testing.T) {
	e := newTestEnv(t)
	e.toResults(t)
	id := e.wizard(t).ID

	e.click(t, "nav:restart")

	w := e.wizard(t)
	assert.Equal(t, id, w.ID)
	assert.Equal(t, wizard.StepBuildingType, w.Step)
	assert.Empty(t, w.Plan)
	assert.Equal(t, render.MsgStepBuildingType, e.bot.texts()[len(e.bot.texts())-1])
}

func TestDownload_NothingGeneratedYet(t *testing.T) {
	e := newTestEnv(t)
	e.toResults(t)
	e.bot.reset()

	e.click(t, "dl:blueprints:pdf")

	assert.Equal(t, []string{render.ErrNoResult}, e.bot.texts())
}

func TestDescription_PhotoWithCaption(t *testing.T) {
	e := newTestEnv(t)
	e.click(t, "bt:house")
	e.click(t, "nav:next")
	e.files.data = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	e.files.contentType = "application/octet-stream"

	require.NoError(t, e.desc.Handle(e.ctx, &Message{
		ChatID:  testChatID,
		UserID:  testUserID,
		Caption: "a cottage like this one",
		Photo:   []tgbotapi.PhotoSize{{FileID: "small", FileSize: 100}, {FileID: "big", FileSize: 500}},
	}))

	w := e.wizard(t)
	require.NotNil(t, w.Image)
	assert.Equal(t, "image/jpeg", w.Image.MediaType)
	assert.Equal(t, "photo.jpg", w.Image.Filename)
	assert.Equal(t, "a cottage like this one", w.Description)

	msg, ok := e.bot.last().(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "<b>Photo:</b> attached")
	markup := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.Equal(t, "img:remove", *markup.InlineKeyboard[0][0].CallbackData)

	e.click(t, "img:remove")
	assert.Nil(t, e.wizard(t).Image)
}

func TestDescription_RejectsNonImageDocument(t *testing.T) {
	e := newTestEnv(t)
	e.click(t, "bt:house")
	e.click(t, "nav:next")
	e.files.data = []byte("%PDF-1.4")
	e.bot.reset()

	require.NoError(t, e.desc.Handle(e.ctx, &Message{
		ChatID:   testChatID,
		UserID:   testUserID,
		Document: &tgbotapi.Document{FileID: "doc", FileName: "plan.pdf", MimeType: "application/pdf", FileSize: 8},
	}))

	assert.Equal(t, []string{"❌ This file is not a supported image."}, e.bot.texts())
	assert.Nil(t, e.wizard(t).Image)
}

func TestDescription_OversizedDocumentNotDownloaded(t *testing.T) {
	e := newTestEnv(t)
	e.click(t, "bt:house")
	e.click(t, "nav:next")
	e.bot.reset()

	require.NoError(t, e.desc.Handle(e.ctx, &Message{
		ChatID:   testChatID,
		UserID:   testUserID,
		Document: &tgbotapi.Document{FileID: "doc", FileName: "huge.png", MimeType: "image/png", FileSize: 1 << 20},
	}))

	assert.Zero(t, e.files.calls)
	assert.Equal(t, []string{"❌ The photo is too large."}, e.bot.texts())
}

func TestBudget_WrongStep(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.budget.Handle(e.ctx, &Message{ChatID: testChatID, UserID: testUserID, Text: "10k"}))

	assert.Equal(t, []string{render.ErrInvalidStep}, e.bot.texts())
}

func TestPickPhoto(t *testing.T) {
	sizes := []tgbotapi.PhotoSize{
		{FileID: "s", FileSize: 10},
		{FileID: "m", FileSize: 100},
		{FileID: "l", FileSize: 1000},
	}

	assert.Equal(t, "l", pickPhoto(sizes, 5000).FileID)
	assert.Equal(t, "m", pickPhoto(sizes, 500).FileID)
	assert.Equal(t, "s", pickPhoto(sizes, 1).FileID)
}

func TestMessageSender_RetriesTransientErrors(t *testing.T) {
	bot := &fakeBot{sendErrs: []error{&tgbotapi.Error{Code: 429, Message: "Too Many Requests"}}}
	sender := NewMessageSender(bot, &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}, zap.NewNop())

	require.NoError(t, sender.Send(context.Background(), testChatID, "hello", nil))
	assert.Len(t, bot.sent, 2)
}

func TestMessageSender_PermanentErrorNotRetried(t *testing.T) {
	bot := &fakeBot{sendErrs: []error{&tgbotapi.Error{Code: 403, Message: "bot was blocked by the user"}}}
	sender := NewMessageSender(bot, &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}, zap.NewNop())

	err := sender.Send(context.Background(), testChatID, "hello", nil)

	var apiErr *tgbotapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 403, apiErr.Code)
	assert.Len(t, bot.sent, 1)
}

func TestMessageSender_EditNotModifiedIgnored(t *testing.T) {
	bot := &fakeBot{sendErrs: []error{&tgbotapi.Error{Code: 400, Message: "Bad Request: message is not modified"}}}
	sender := NewMessageSender(bot, nil, zap.NewNop())

	err := sender.Edit(context.Background(), testChatID, 5, "same", keyboard.NewBuilder().BuildingTypeKeyboard(""))

	assert.NoError(t, err)
}

func TestClassifyHandlerError_Severity(t *testing.T) {
	assert.Equal(t, SeverityCritical, classifyHandlerError(entity.ErrMissingCredential).Severity)
	assert.Equal(t, SeverityWarning, classifyHandlerError(entity.ErrBusy).Severity)
	assert.Equal(t, SeverityError, classifyHandlerError(&entity.UpstreamError{Message: "x"}).Severity)
}
