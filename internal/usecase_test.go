package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeProvider struct {
	completions []string
	prompts     []string
}

func (p *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.completions) == 0 {
		return "canned answer", nil
	}
	answer := p.completions[0]
	p.completions = p.completions[1:]
	return answer, nil
}

func (p *fakeProvider) GenerateObject(_ context.Context, prompt string, target any) error {
	p.prompts = append(p.prompts, prompt)
	if digest, ok := target.(*GapDigest); ok {
		digest.Summary = "mostly shipping questions"
		digest.Themes = []string{"shipping"}
	}
	return nil
}

func (p *fakeProvider) Stream(ctx context.Context, prompt string) (<-chan string, error) {
	answer, err := p.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	ch := make(chan string, 1)
	ch <- answer
	close(ch)
	return ch, nil
}

type useCaseFixture struct {
	uc       *UseCases
	ws       Workspace
	provider *fakeProvider
}

func setupUseCases(t *testing.T) *useCaseFixture {
	t.Helper()
	tmpDir := t.TempDir()

	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	ws := Workspace{
		Type:    WorkspaceProject,
		Root:    tmpDir,
		KenPath: filepath.Join(tmpDir, ".ken"),
	}
	if err := os.MkdirAll(ws.IndexDir(), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	corpusPath := filepath.Join(tmpDir, "corpus.csv")
	corpus := "query,solution\n" +
		"how do I reset my password,Use the forgot password link on the login page\n" +
		"how can I cancel my order,Open order history and press cancel within 24 hours\n" +
		"where is my invoice,Invoices are under account billing\n"
	if err := os.WriteFile(corpusPath, []byte(corpus), 0644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Corpus.Path = corpusPath
	cfg.DefaultProvider = "fake"
	cfg.Providers["fake"] = ProviderConfig{Model: "fake-model"}
	if err := SaveConfig(ws, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	provider := &fakeProvider{}
	providerFor := func(_ context.Context, name string, _ ProviderConfig) (Provider, error) {
		if name != "fake" {
			return nil, fmt.Errorf("unexpected provider %q", name)
		}
		return provider, nil
	}

	uc := NewUseCasesWith(NewWorkspaceResolver(), NewEmbedder, providerFor)

	return &useCaseFixture{uc: uc, ws: ws, provider: provider}
}

func (f *useCaseFixture) build(t *testing.T) {
	t.Helper()
	if _, err := f.uc.BuildIndex.Execute(context.Background(), BuildIndexInput{}); err != nil {
		t.Fatalf("build index: %v", err)
	}
}

func TestBuildIndexUseCase(t *testing.T) {
	f := setupUseCases(t)

	out, err := f.uc.BuildIndex.Execute(context.Background(), BuildIndexInput{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if out.Count != 3 {
		t.Errorf("count = %d, want 3", out.Count)
	}
	if out.Dimension != DefaultLocalDimension {
		t.Errorf("dimension = %d", out.Dimension)
	}
	if _, err := os.Stat(out.IndexPath); err != nil {
		t.Errorf("index file: %v", err)
	}
	if _, err := os.Stat(out.SnapshotPath); err != nil {
		t.Errorf("snapshot file: %v", err)
	}
}

func TestBuildIndexUseCaseInvalidCorpus(t *testing.T) {
	f := setupUseCases(t)

	bad := filepath.Join(f.ws.Root, "bad.csv")
	if err := os.WriteFile(bad, []byte("query,solution\n,missing\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := f.uc.BuildIndex.Execute(context.Background(), BuildIndexInput{Corpus: bad})
	if !errors.Is(err, ErrInvalidCorpus) {
		t.Errorf("expected ErrInvalidCorpus, got %v", err)
	}
}

func TestBuildIndexUseCaseFailureKeepsOldArtifacts(t *testing.T) {
	f := setupUseCases(t)
	f.build(t)

	bad := filepath.Join(f.ws.Root, "bad.csv")
	if err := os.WriteFile(bad, []byte("query,solution\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := f.uc.BuildIndex.Execute(context.Background(), BuildIndexInput{Corpus: bad}); err == nil {
		t.Fatal("expected build to fail")
	}

	out, err := f.uc.IndexStatus.Execute(IndexStatusInput{})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !out.Exists || out.Count != 3 {
		t.Errorf("previous artifacts gone: %+v", out)
	}
}

func TestIndexStatusUseCaseNoIndex(t *testing.T) {
	f := setupUseCases(t)

	out, err := f.uc.IndexStatus.Execute(IndexStatusInput{})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if out.Exists {
		t.Error("expected no index")
	}
}

func TestSearchUseCase(t *testing.T) {
	f := setupUseCases(t)
	f.build(t)

	out, err := f.uc.Search.Execute(context.Background(), SearchInput{Query: "reset password", K: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out.Results))
	}
	if out.Results[0].Query != "how do I reset my password" {
		t.Errorf("top result = %q", out.Results[0].Query)
	}
}

func TestSearchUseCaseDefaultsToConfiguredTopK(t *testing.T) {
	f := setupUseCases(t)
	f.build(t)

	out, err := f.uc.Search.Execute(context.Background(), SearchInput{Query: "invoice"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out.Results) != 3 {
		t.Errorf("expected 3 results (configured top-k), got %d", len(out.Results))
	}
}

func TestSearchUseCaseWithoutIndex(t *testing.T) {
	f := setupUseCases(t)

	_, err := f.uc.Search.Execute(context.Background(), SearchInput{Query: "anything"})
	if !errors.Is(err, ErrNoIndex) {
		t.Errorf("expected ErrNoIndex, got %v", err)
	}
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound in the chain, got %v", err)
	}
}

func TestAskUseCase(t *testing.T) {
	f := setupUseCases(t)
	f.build(t)
	f.provider.completions = []string{"Click the forgot password link."}

	out, err := f.uc.Ask.Execute(context.Background(), AskInput{Question: "how do I reset my password"})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}

	if out.Answer != "Click the forgot password link." {
		t.Errorf("answer = %q", out.Answer)
	}
	if len(out.Results) == 0 {
		t.Fatal("expected retrieved context")
	}

	prompt := f.provider.prompts[0]
	if !strings.Contains(prompt, "how do I reset my password") {
		t.Error("prompt missing the question")
	}
	if !strings.Contains(prompt, "Use the forgot password link on the login page") {
		t.Error("prompt missing the retrieved solution")
	}
}

func TestAskUseCaseStream(t *testing.T) {
	f := setupUseCases(t)
	f.build(t)
	f.provider.completions = []string{"streamed answer"}

	chunks, results, err := f.uc.Ask.ExecuteStream(context.Background(), AskInput{Question: "cancel my order"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(results) == 0 {
		t.Error("expected sources before streaming")
	}

	var sb strings.Builder
	for chunk := range chunks {
		sb.WriteString(chunk)
	}
	if sb.String() != "streamed answer" {
		t.Errorf("streamed = %q", sb.String())
	}
}

func TestAskUseCaseNoProvider(t *testing.T) {
	f := setupUseCases(t)
	f.build(t)

	cfg, err := LoadConfig(f.ws)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.DefaultProvider = ""
	delete(cfg.Providers, "fake")
	if err := SaveConfig(f.ws, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	_, err = f.uc.Ask.Execute(context.Background(), AskInput{Question: "anything"})
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
}

func TestFeedbackAndReportUseCases(t *testing.T) {
	f := setupUseCases(t)
	ctx := context.Background()

	if err := f.uc.Feedback.Execute(ctx, FeedbackInput{
		Query: "reset password", Context: "ctx", Answer: "use the link", Helpful: true,
	}); err != nil {
		t.Fatalf("feedback resolved: %v", err)
	}
	if err := f.uc.Feedback.Execute(ctx, FeedbackInput{
		Query: "do you ship to mars", Answer: "no idea", Helpful: false,
	}); err != nil {
		t.Fatalf("feedback gap: %v", err)
	}

	out, err := f.uc.Report.Execute(ctx, ReportInput{Limit: 10})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if out.Stats.Total != 2 || out.Stats.Resolved != 1 || out.Stats.Gaps != 1 {
		t.Errorf("stats = %+v", out.Stats)
	}
	if len(out.Gaps) != 1 || out.Gaps[0].Query != "do you ship to mars" {
		t.Errorf("gaps = %+v", out.Gaps)
	}
	if out.Digest != nil {
		t.Error("digest should be nil without --digest")
	}
}

func TestReportUseCaseDigest(t *testing.T) {
	f := setupUseCases(t)
	ctx := context.Background()

	if err := f.uc.Feedback.Execute(ctx, FeedbackInput{
		Query: "when does my package arrive", Answer: "unknown", Helpful: false,
	}); err != nil {
		t.Fatalf("feedback: %v", err)
	}

	out, err := f.uc.Report.Execute(ctx, ReportInput{Limit: 10, Digest: true})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if out.Digest == nil {
		t.Fatal("expected digest")
	}
	if out.Digest.Summary != "mostly shipping questions" {
		t.Errorf("digest = %+v", out.Digest)
	}
	if !strings.Contains(f.provider.prompts[0], "when does my package arrive") {
		t.Error("digest prompt missing the gap query")
	}
}

func TestCorpusCheckUseCase(t *testing.T) {
	f := setupUseCases(t)

	out, err := f.uc.CorpusCheck.Execute(CorpusCheckInput{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if out.Count != 3 {
		t.Errorf("count = %d, want 3", out.Count)
	}
}

func TestCorpusDiffUseCase(t *testing.T) {
	f := setupUseCases(t)
	f.build(t)

	out, err := f.uc.CorpusDiff.Execute(CorpusDiffInput{})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !out.InSync {
		t.Errorf("expected in sync, diff:\n%s", out.Diff)
	}

	cfg, _ := LoadConfig(f.ws)
	extra := "query,solution\n" +
		"how do I reset my password,Use the forgot password link on the login page\n" +
		"how can I cancel my order,Open order history and press cancel within 24 hours\n" +
		"where is my invoice,Invoices are under account billing\n" +
		"do you offer refunds,Refunds are issued within 5 business days\n"
	if err := os.WriteFile(cfg.Corpus.Path, []byte(extra), 0644); err != nil {
		t.Fatalf("rewrite corpus: %v", err)
	}

	out, err = f.uc.CorpusDiff.Execute(CorpusDiffInput{})
	if err != nil {
		t.Fatalf("diff after edit: %v", err)
	}
	if out.InSync {
		t.Error("expected out of sync")
	}
	if !strings.Contains(out.Diff, "+ do you offer refunds") {
		t.Errorf("diff missing added row:\n%s", out.Diff)
	}
}

func TestProviderUseCases(t *testing.T) {
	f := setupUseCases(t)

	if err := f.uc.ProviderAdd.Execute(ProviderInput{
		Name:   "anthropic",
		Config: ProviderConfig{APIKey: "sk-x", Model: "claude-sonnet-4-5"},
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	names, defaultName, err := f.uc.ProviderList.Execute(ProviderInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("names = %v", names)
	}
	if defaultName != "fake" {
		t.Errorf("default = %q", defaultName)
	}

	if err := f.uc.ProviderSetDefault.Execute(ProviderInput{Name: "anthropic"}); err != nil {
		t.Fatalf("set default: %v", err)
	}
	_, defaultName, _ = f.uc.ProviderList.Execute(ProviderInput{})
	if defaultName != "anthropic" {
		t.Errorf("default = %q", defaultName)
	}

	if err := f.uc.ProviderRemove.Execute(ProviderInput{Name: "anthropic"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	names, defaultName, _ = f.uc.ProviderList.Execute(ProviderInput{})
	if len(names) != 1 || defaultName != "" {
		t.Errorf("after remove: names=%v default=%q", names, defaultName)
	}

	if err := f.uc.ProviderRemove.Execute(ProviderInput{Name: "missing"}); err == nil {
		t.Error("expected error removing unknown provider")
	}
	if err := f.uc.ProviderSetDefault.Execute(ProviderInput{Name: "missing"}); err == nil {
		t.Error("expected error defaulting unknown provider")
	}
}

func TestProviderTestUseCase(t *testing.T) {
	f := setupUseCases(t)

	if err := f.uc.ProviderTest.Execute(context.Background(), ProviderInput{Name: "fake"}); err != nil {
		t.Fatalf("test: %v", err)
	}
	if len(f.provider.prompts) != 1 {
		t.Errorf("expected 1 completion call, got %d", len(f.provider.prompts))
	}

	if err := f.uc.ProviderTest.Execute(context.Background(), ProviderInput{Name: "missing"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
