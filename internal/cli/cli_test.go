package cli

import (
	"bytes"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/ikigai-wellness/ikigai/internal/app/engagement"
	"github.com/ikigai-wellness/ikigai/internal/app/progress"
	"github.com/ikigai-wellness/ikigai/internal/app/quiz"
	"github.com/ikigai-wellness/ikigai/internal/domain"
	"github.com/ikigai-wellness/ikigai/internal/infra/catalog"
)

func newTestEngine(t *testing.T) *engagement.Engine {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return engagement.NewEngine(progress.NewStore(progress.NewMemoryBackend(), quiet), catalog.Default(), quiet)
}

func module(t *testing.T, id string) domain.Module {
	t.Helper()
	m, ok := catalog.Default().Module(id)
	if !ok {
		t.Fatalf("module %s not in default catalog", id)
	}
	return m
}

// ─── Bars ───────────────────────────────────────────────────────────────────

func TestRenderBar(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "[....................]   0%"},
		{50, "[=========>..........]  50%"},
		{100, "[====================] 100%"},
		{150, "[====================] 100%"},
		{-5, "[....................]   0%"},
	}
	for _, tt := range tests {
		if got := renderBar(tt.pct); got != tt.want {
			t.Errorf("renderBar(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

// ─── Views ──────────────────────────────────────────────────────────────────

func TestRenderStatus(t *testing.T) {
	eng := newTestEngine(t)
	eng.CompleteModule("equilibre_module1", "equilibre")

	var buf bytes.Buffer
	if err := renderStatus(&buf, engagement.BuildOverview(eng.Catalog(), eng.Progress())); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Level 1", "150/500 XP", "Points: 150", "Streak: 3", "Wellness: 65", "1/3", "Explorateur"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderModules(t *testing.T) {
	eng := newTestEngine(t)
	eng.CompleteModule("equilibre_module1", "equilibre")
	is, _ := eng.Catalog().Island("equilibre")

	var buf bytes.Buffer
	renderModules(&buf, is, engagement.IslandModules(eng.Catalog(), eng.Progress(), "equilibre"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-3:]
	for i, want := range []string{"completed", "open", "locked"} {
		if !strings.HasSuffix(strings.TrimSpace(last[i]), want) {
			t.Errorf("row %d = %q, want state %s", i, last[i], want)
		}
	}
}

func TestPrintGain(t *testing.T) {
	before := domain.DefaultProgress()
	after := before.Clone()
	after.TotalPoints = 150
	after.Badges = append(after.Badges, domain.Badge{ID: "x", Name: "Explorer", Icon: "*"})

	var buf bytes.Buffer
	printGain(&buf, before, after)
	if out := buf.String(); !strings.Contains(out, "+150 points") || !strings.Contains(out, "New badge: * Explorer") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	printGain(&buf, after, after)
	if !strings.Contains(buf.String(), "Already completed") {
		t.Errorf("no-op output = %q", buf.String())
	}
}

func TestPrintGain_ProgressShrank(t *testing.T) {
	before := domain.DefaultProgress()
	before.TotalPoints = 300
	before.Badges = []domain.Badge{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	after := domain.DefaultProgress()
	after.TotalPoints = 150
	after.Badges = []domain.Badge{{ID: "c", Name: "Calm", Icon: "~"}}

	var buf bytes.Buffer
	printGain(&buf, before, after)
	out := buf.String()
	if !strings.Contains(out, "-150 points (total 150)") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "New badge: ~ Calm") || strings.Count(out, "New badge") != 1 {
		t.Errorf("badge lines = %q", out)
	}
}

// ─── Interactive Questionnaire ──────────────────────────────────────────────

func TestRunQuizLoop_Submit(t *testing.T) {
	eng := newTestEngine(t)
	sess := quiz.Open(eng, module(t, "equilibre_module1"))

	// scale, multiple choice by number, checkbox toggles then blank line
	in := strings.NewReader("9\n4\n3\nfatigue 5,6\n1\n\n")
	var out bytes.Buffer
	if err := runQuizLoop(sess, in, &out); err != nil {
		t.Fatalf("runQuizLoop() error: %v", err)
	}

	if sess.State() != quiz.Finished {
		t.Fatalf("state = %v, output:\n%s", sess.State(), out.String())
	}
	if !strings.Contains(out.String(), "enter a number from 1 to 5") {
		t.Error("out-of-range scale should be reported")
	}

	p := eng.Progress()
	if !p.IsModuleCompleted("equilibre_module1") {
		t.Fatal("module not completed")
	}
	r := p.ModuleResponses["equilibre_module1"].Responses
	if r["equilibre_module1_q1"].Scale != 4 || r["equilibre_module1_q2"].Choice != "40_45" {
		t.Errorf("responses = %v", r)
	}
	if got := r["equilibre_module1_q3"].Selected; !reflect.DeepEqual(got, []string{"stress", "sommeil"}) {
		t.Errorf("checkbox = %v, want [stress sommeil] (fatigue toggled off)", got)
	}
}

func TestRunQuizLoop_BackAndQuit(t *testing.T) {
	eng := newTestEngine(t)
	sess := quiz.Open(eng, module(t, "equilibre_module1"))

	in := strings.NewReader("/back\n\n2\n/back\n/quit\n")
	var out bytes.Buffer
	if err := runQuizLoop(sess, in, &out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "Already at the first question") || !strings.Contains(s, "An answer is required") {
		t.Errorf("output:\n%s", s)
	}
	if sess.State() != quiz.Answering || sess.Step() != 0 {
		t.Errorf("state = %v step = %d", sess.State(), sess.Step())
	}
	if eng.Progress().IsModuleCompleted("equilibre_module1") {
		t.Error("quitting must not complete the module")
	}
}

func TestRunQuizLoop_EOF(t *testing.T) {
	eng := newTestEngine(t)
	sess := quiz.Open(eng, module(t, "equilibre_module1"))
	if err := runQuizLoop(sess, strings.NewReader("3\n"), io.Discard); err != nil {
		t.Fatal(err)
	}
	if sess.Step() != 1 || sess.State() != quiz.Answering {
		t.Errorf("step = %d state = %v", sess.Step(), sess.State())
	}
}

func TestRunQuizLoop_ReadOnly(t *testing.T) {
	eng := newTestEngine(t)
	eng.SaveModuleResponses("equilibre_module1", map[string]domain.Answer{
		"equilibre_module1_q1": domain.ScaleAnswer(2),
	})
	eng.CompleteModule("equilibre_module1", "equilibre")

	sess := quiz.Open(eng, module(t, "equilibre_module1"))
	var out bytes.Buffer
	runQuizLoop(sess, strings.NewReader("5\n"), &out)
	if !strings.Contains(out.String(), "Already completed") {
		t.Errorf("output:\n%s", out.String())
	}
	if eng.Progress().ModuleResponses["equilibre_module1"].Responses["equilibre_module1_q1"].Scale != 2 {
		t.Error("read-only session changed stored answers")
	}
}

func TestOptionFor(t *testing.T) {
	q := domain.Question{Options: []domain.Option{{ID: "a"}, {ID: "b"}}}
	tests := []struct {
		tok  string
		want string
		ok   bool
	}{
		{"1", "a", true},
		{"2", "b", true},
		{"3", "", false},
		{"0", "", false},
		{"b", "b", true},
		{"z", "", false},
	}
	for _, tt := range tests {
		got, ok := optionFor(q, tt.tok)
		if got != tt.want || ok != tt.ok {
			t.Errorf("optionFor(%q) = %q, %v; want %q, %v", tt.tok, got, ok, tt.want, tt.ok)
		}
	}
}

// ─── Commands ───────────────────────────────────────────────────────────────

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		flagEphemeral, flagCatalog, resetYes = false, "", false
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("ikigai %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestCommands_Durable(t *testing.T) {
	t.Setenv("IKIGAI_HOME", t.TempDir())

	if out := execute(t, "complete", "equilibre_module1"); !strings.Contains(out, "+150 points") {
		t.Errorf("complete output = %q", out)
	}
	if out := execute(t, "challenge", "mindful_breathing"); !strings.Contains(out, "total 200") {
		t.Errorf("challenge output = %q", out)
	}
	if out := execute(t, "status"); !strings.Contains(out, "Points: 200") || !strings.Contains(out, "Last saved") {
		t.Errorf("status output = %q", out)
	}
	if out := execute(t, "islands", "equilibre"); !strings.Contains(out, "completed") {
		t.Errorf("islands output = %q", out)
	}

	execute(t, "reset", "--yes")
	if out := execute(t, "status"); !strings.Contains(out, "Points: 0") {
		t.Errorf("status after reset = %q", out)
	}
}

func TestCommands_ConfigInit(t *testing.T) {
	t.Setenv("IKIGAI_HOME", t.TempDir())

	if out := execute(t, "config", "init"); !strings.Contains(out, "config.toml") {
		t.Errorf("config init output = %q", out)
	}
	if out := execute(t, "config"); !strings.Contains(out, "port = 7465") {
		t.Errorf("config output = %q", out)
	}
}
