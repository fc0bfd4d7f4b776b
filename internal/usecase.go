package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Factory types for the use cases' collaborators. Commands and tests inject
// these instead of concrete backends.

type EmbedderFactory func(EmbeddingsConfig) (Embedder, error)

type ProviderFactory func(ctx context.Context, name string, cfg ProviderConfig) (Provider, error)

type ArtifactsFactory func(Workspace) *ArtifactStore

type FeedbackFactory func(Workspace) (*FeedbackStore, error)

// Use case input/output DTOs

type BuildIndexInput struct {
	Corpus    string // overrides the configured corpus path when set
	Workspace string
}

type BuildIndexOutput struct {
	Count        int
	Dimension    int
	Model        string
	IndexPath    string
	SnapshotPath string
}

type IndexStatusInput struct {
	Workspace string
}

type IndexStatusOutput struct {
	Exists       bool
	Count        int
	Dimension    int
	Model        string
	BuiltAt      time.Time
	IndexPath    string
	SnapshotPath string
}

type SearchInput struct {
	Query     string
	K         int
	Workspace string
}

type SearchOutput struct {
	Results []SearchResult
}

type AskInput struct {
	Question  string
	K         int
	Workspace string
	Provider  string // overrides the default provider when set
}

type AskOutput struct {
	Answer  string
	Results []SearchResult
}

type FeedbackInput struct {
	Workspace string
	Query     string
	Context   string
	Answer    string
	Helpful   bool
}

type ReportInput struct {
	Workspace string
	Limit     int
	Digest    bool
	Provider  string
}

type ReportOutput struct {
	Stats  FeedbackStats
	Gaps   []Gap
	Digest *GapDigest
}

type CorpusCheckInput struct {
	Corpus    string
	Workspace string
}

type CorpusCheckOutput struct {
	Path  string
	Count int
}

type CorpusDiffInput struct {
	Corpus    string
	Workspace string
}

type CorpusDiffOutput struct {
	InSync bool
	Diff   string
}

type ProviderInput struct {
	Name      string
	Workspace string
	Config    ProviderConfig
}

// BuildIndexUseCase reads the corpus, embeds every query and persists the
// index/snapshot pair. Persistence is the last step, so a failed build
// leaves any previous artifacts untouched.
type BuildIndexUseCase struct {
	resolver    *WorkspaceResolver
	embedderFor EmbedderFactory
	storeFor    ArtifactsFactory
}

func NewBuildIndexUseCase(
	resolver *WorkspaceResolver,
	embedderFor EmbedderFactory,
	storeFor ArtifactsFactory,
) *BuildIndexUseCase {
	return &BuildIndexUseCase{
		resolver:    resolver,
		embedderFor: embedderFor,
		storeFor:    storeFor,
	}
}

func (uc *BuildIndexUseCase) Execute(ctx context.Context, input BuildIndexInput) (*BuildIndexOutput, error) {
	ws := uc.resolver.Resolve(input.Workspace)

	cfg, err := LoadConfig(ws)
	if err != nil {
		return nil, err
	}

	src := cfg.Corpus.Source()
	if input.Corpus != "" {
		src.Path = input.Corpus
	}

	records, err := LoadCorpus(src)
	if err != nil {
		return nil, err
	}

	embedder, err := uc.embedderFor(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	defer embedder.Close()

	index, snapshot, err := BuildIndex(ctx, records, embedder)
	if err != nil {
		return nil, err
	}

	store := uc.storeFor(ws)
	if err := store.Save(index, snapshot); err != nil {
		return nil, fmt.Errorf("persist artifacts: %w", err)
	}

	return &BuildIndexOutput{
		Count:        index.Len(),
		Dimension:    index.Dimension(),
		Model:        snapshot.Model,
		IndexPath:    store.IndexPath(),
		SnapshotPath: store.SnapshotPath(),
	}, nil
}

type IndexStatusUseCase struct {
	resolver *WorkspaceResolver
	storeFor ArtifactsFactory
}

func NewIndexStatusUseCase(resolver *WorkspaceResolver, storeFor ArtifactsFactory) *IndexStatusUseCase {
	return &IndexStatusUseCase{resolver: resolver, storeFor: storeFor}
}

func (uc *IndexStatusUseCase) Execute(input IndexStatusInput) (*IndexStatusOutput, error) {
	ws := uc.resolver.Resolve(input.Workspace)
	store := uc.storeFor(ws)

	out := &IndexStatusOutput{
		IndexPath:    store.IndexPath(),
		SnapshotPath: store.SnapshotPath(),
	}

	if !store.Exists() {
		return out, nil
	}

	index, snapshot, err := store.Load()
	if err != nil {
		return nil, err
	}

	out.Exists = true
	out.Count = index.Len()
	out.Dimension = index.Dimension()
	out.Model = snapshot.Model
	out.BuiltAt = snapshot.BuiltAt
	return out, nil
}

// SearchUseCase loads the artifact pair once per workspace and serves
// nearest-neighbor queries from it. The cached retriever is read-only; a
// rebuild happens in a separate invocation, never underneath live searches.
type SearchUseCase struct {
	resolver    *WorkspaceResolver
	embedderFor EmbedderFactory
	storeFor    ArtifactsFactory

	mu         sync.Mutex
	retrievers map[string]*Retriever
}

func NewSearchUseCase(
	resolver *WorkspaceResolver,
	embedderFor EmbedderFactory,
	storeFor ArtifactsFactory,
) *SearchUseCase {
	return &SearchUseCase{
		resolver:    resolver,
		embedderFor: embedderFor,
		storeFor:    storeFor,
		retrievers:  make(map[string]*Retriever),
	}
}

func (uc *SearchUseCase) retriever(ws Workspace) (*Retriever, *Config, error) {
	cfg, err := LoadConfig(ws)
	if err != nil {
		return nil, nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if r, ok := uc.retrievers[ws.KenPath]; ok {
		return r, cfg, nil
	}

	index, snapshot, err := uc.storeFor(ws).Load()
	if errors.Is(err, ErrArtifactNotFound) {
		return nil, nil, fmt.Errorf("%w: %w; run 'ken index build'", ErrNoIndex, err)
	}
	if err != nil {
		return nil, nil, err
	}

	embedder, err := uc.embedderFor(cfg.Embeddings)
	if err != nil {
		return nil, nil, fmt.Errorf("create embedder: %w", err)
	}

	r, err := NewRetriever(index, snapshot, embedder)
	if err != nil {
		return nil, nil, err
	}

	uc.retrievers[ws.KenPath] = r
	return r, cfg, nil
}

func (uc *SearchUseCase) Execute(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ws := uc.resolver.Resolve(input.Workspace)

	r, cfg, err := uc.retriever(ws)
	if err != nil {
		return nil, err
	}

	k := input.K
	if k <= 0 {
		k = cfg.Retrieval.TopK
	}

	results, err := r.Search(ctx, input.Query, k)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Results: results}, nil
}

// AskUseCase retrieves context for a question and asks the configured LLM
// provider to synthesize an answer strictly from it.
type AskUseCase struct {
	resolver    *WorkspaceResolver
	search      *SearchUseCase
	providerFor ProviderFactory
}

func NewAskUseCase(
	resolver *WorkspaceResolver,
	search *SearchUseCase,
	providerFor ProviderFactory,
) *AskUseCase {
	return &AskUseCase{
		resolver:    resolver,
		search:      search,
		providerFor: providerFor,
	}
}

const noContextAnswer = "I couldn't find any relevant information in the knowledge base."

func (uc *AskUseCase) Execute(ctx context.Context, input AskInput) (*AskOutput, error) {
	results, provider, err := uc.prepare(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &AskOutput{Answer: noContextAnswer}, nil
	}

	answer, err := provider.Complete(ctx, BuildAnswerPrompt(input.Question, results))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &AskOutput{Answer: answer, Results: results}, nil
}

// ExecuteStream is Execute with a streamed answer; the retrieved results
// are returned up front so callers can show sources while tokens arrive.
func (uc *AskUseCase) ExecuteStream(ctx context.Context, input AskInput) (<-chan string, []SearchResult, error) {
	results, provider, err := uc.prepare(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		ch := make(chan string, 1)
		ch <- noContextAnswer
		close(ch)
		return ch, nil, nil
	}

	ch, err := provider.Stream(ctx, BuildAnswerPrompt(input.Question, results))
	if err != nil {
		return nil, nil, fmt.Errorf("stream answer: %w", err)
	}
	return ch, results, nil
}

func (uc *AskUseCase) prepare(ctx context.Context, input AskInput) ([]SearchResult, Provider, error) {
	ws := uc.resolver.Resolve(input.Workspace)

	cfg, err := LoadConfig(ws)
	if err != nil {
		return nil, nil, err
	}

	name, providerCfg, err := cfg.ResolveProvider(input.Provider)
	if err != nil {
		return nil, nil, err
	}

	provider, err := uc.providerFor(ctx, name, providerCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create provider: %w", err)
	}

	out, err := uc.search.Execute(ctx, SearchInput{
		Query: input.Question, K: input.K, Workspace: input.Workspace,
	})
	if err != nil {
		return nil, nil, err
	}

	return out.Results, provider, nil
}

// FeedbackUseCase records whether an answer resolved the customer's issue.
type FeedbackUseCase struct {
	resolver    *WorkspaceResolver
	feedbackFor FeedbackFactory
}

func NewFeedbackUseCase(resolver *WorkspaceResolver, feedbackFor FeedbackFactory) *FeedbackUseCase {
	return &FeedbackUseCase{resolver: resolver, feedbackFor: feedbackFor}
}

func (uc *FeedbackUseCase) Execute(ctx context.Context, input FeedbackInput) error {
	ws := uc.resolver.Resolve(input.Workspace)

	store, err := uc.feedbackFor(ws)
	if err != nil {
		return fmt.Errorf("open feedback store: %w", err)
	}
	defer store.Close()

	if input.Helpful {
		return store.LogResolved(ctx, input.Query, input.Context, input.Answer)
	}
	return store.LogGap(ctx, input.Query, input.Answer)
}

// ReportUseCase summarizes feedback: resolution stats, open knowledge gaps
// and optionally an LLM digest of where the corpus is thin.
type ReportUseCase struct {
	resolver    *WorkspaceResolver
	feedbackFor FeedbackFactory
	providerFor ProviderFactory
}

func NewReportUseCase(
	resolver *WorkspaceResolver,
	feedbackFor FeedbackFactory,
	providerFor ProviderFactory,
) *ReportUseCase {
	return &ReportUseCase{
		resolver:    resolver,
		feedbackFor: feedbackFor,
		providerFor: providerFor,
	}
}

func (uc *ReportUseCase) Execute(ctx context.Context, input ReportInput) (*ReportOutput, error) {
	ws := uc.resolver.Resolve(input.Workspace)

	store, err := uc.feedbackFor(ws)
	if err != nil {
		return nil, fmt.Errorf("open feedback store: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	gaps, err := store.Gaps(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &ReportOutput{Stats: stats, Gaps: gaps}

	if input.Digest && len(gaps) > 0 {
		cfg, err := LoadConfig(ws)
		if err != nil {
			return nil, err
		}
		name, providerCfg, err := cfg.ResolveProvider(input.Provider)
		if err != nil {
			return nil, err
		}
		provider, err := uc.providerFor(ctx, name, providerCfg)
		if err != nil {
			return nil, fmt.Errorf("create provider: %w", err)
		}

		var digest GapDigest
		if err := provider.GenerateObject(ctx, BuildGapDigestPrompt(gaps), &digest); err != nil {
			return nil, fmt.Errorf("generate digest: %w", err)
		}
		out.Digest = &digest
	}

	return out, nil
}

// CorpusCheckUseCase validates the corpus source without touching the index.
type CorpusCheckUseCase struct {
	resolver *WorkspaceResolver
}

func NewCorpusCheckUseCase(resolver *WorkspaceResolver) *CorpusCheckUseCase {
	return &CorpusCheckUseCase{resolver: resolver}
}

func (uc *CorpusCheckUseCase) Execute(input CorpusCheckInput) (*CorpusCheckOutput, error) {
	ws := uc.resolver.Resolve(input.Workspace)

	cfg, err := LoadConfig(ws)
	if err != nil {
		return nil, err
	}

	src := cfg.Corpus.Source()
	if input.Corpus != "" {
		src.Path = input.Corpus
	}

	records, err := LoadCorpus(src)
	if err != nil {
		return nil, err
	}

	return &CorpusCheckOutput{Path: src.Path, Count: len(records)}, nil
}

// CorpusDiffUseCase shows what changed in the live corpus file since the
// current index was built, so an operator can tell whether a rebuild is due.
type CorpusDiffUseCase struct {
	resolver *WorkspaceResolver
	storeFor ArtifactsFactory
}

func NewCorpusDiffUseCase(resolver *WorkspaceResolver, storeFor ArtifactsFactory) *CorpusDiffUseCase {
	return &CorpusDiffUseCase{resolver: resolver, storeFor: storeFor}
}

func (uc *CorpusDiffUseCase) Execute(input CorpusDiffInput) (*CorpusDiffOutput, error) {
	ws := uc.resolver.Resolve(input.Workspace)

	cfg, err := LoadConfig(ws)
	if err != nil {
		return nil, err
	}

	src := cfg.Corpus.Source()
	if input.Corpus != "" {
		src.Path = input.Corpus
	}

	records, err := LoadCorpus(src)
	if err != nil {
		return nil, err
	}

	_, snapshot, err := uc.storeFor(ws).Load()
	if err != nil {
		return nil, err
	}

	indexed := make([]Record, snapshot.Len())
	for i := range indexed {
		indexed[i] = snapshot.Record(i)
	}

	diff := diffRecords(indexed, records)
	return &CorpusDiffOutput{InSync: diff == "", Diff: diff}, nil
}

// diffRecords renders a line diff between two corpora, "-" for indexed rows
// no longer in the file and "+" for file rows not yet indexed.
func diffRecords(indexed, live []Record) string {
	before := recordsText(indexed)
	after := recordsText(live)
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(" ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func recordsText(records []Record) string {
	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(rec.Query)
		sb.WriteString(" -> ")
		sb.WriteString(rec.Solution)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Provider management use cases, operating on the workspace config.

type ProviderListUseCase struct {
	resolver *WorkspaceResolver
}

func NewProviderListUseCase(resolver *WorkspaceResolver) *ProviderListUseCase {
	return &ProviderListUseCase{resolver: resolver}
}

func (uc *ProviderListUseCase) Execute(input ProviderInput) ([]string, string, error) {
	ws := uc.resolver.Resolve(input.Workspace)
	cfg, err := LoadConfig(ws)
	if err != nil {
		return nil, "", err
	}

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, cfg.DefaultProvider, nil
}

type ProviderAddUseCase struct {
	resolver *WorkspaceResolver
}

func NewProviderAddUseCase(resolver *WorkspaceResolver) *ProviderAddUseCase {
	return &ProviderAddUseCase{resolver: resolver}
}

func (uc *ProviderAddUseCase) Execute(input ProviderInput) error {
	ws := uc.resolver.Resolve(input.Workspace)
	cfg, err := LoadConfig(ws)
	if err != nil {
		return err
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	cfg.Providers[input.Name] = input.Config
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = input.Name
	}
	return SaveConfig(ws, cfg)
}

type ProviderRemoveUseCase struct {
	resolver *WorkspaceResolver
}

func NewProviderRemoveUseCase(resolver *WorkspaceResolver) *ProviderRemoveUseCase {
	return &ProviderRemoveUseCase{resolver: resolver}
}

func (uc *ProviderRemoveUseCase) Execute(input ProviderInput) error {
	ws := uc.resolver.Resolve(input.Workspace)
	cfg, err := LoadConfig(ws)
	if err != nil {
		return err
	}

	if _, exists := cfg.Providers[input.Name]; !exists {
		return fmt.Errorf("provider %q not found", input.Name)
	}

	delete(cfg.Providers, input.Name)
	if cfg.DefaultProvider == input.Name {
		cfg.DefaultProvider = ""
	}
	return SaveConfig(ws, cfg)
}

type ProviderSetDefaultUseCase struct {
	resolver *WorkspaceResolver
}

func NewProviderSetDefaultUseCase(resolver *WorkspaceResolver) *ProviderSetDefaultUseCase {
	return &ProviderSetDefaultUseCase{resolver: resolver}
}

func (uc *ProviderSetDefaultUseCase) Execute(input ProviderInput) error {
	ws := uc.resolver.Resolve(input.Workspace)
	cfg, err := LoadConfig(ws)
	if err != nil {
		return err
	}

	if _, exists := cfg.Providers[input.Name]; !exists {
		return fmt.Errorf("provider %q not found", input.Name)
	}

	cfg.DefaultProvider = input.Name
	return SaveConfig(ws, cfg)
}

type ProviderTestUseCase struct {
	resolver    *WorkspaceResolver
	providerFor ProviderFactory
}

func NewProviderTestUseCase(resolver *WorkspaceResolver, providerFor ProviderFactory) *ProviderTestUseCase {
	return &ProviderTestUseCase{resolver: resolver, providerFor: providerFor}
}

func (uc *ProviderTestUseCase) Execute(ctx context.Context, input ProviderInput) error {
	ws := uc.resolver.Resolve(input.Workspace)
	cfg, err := LoadConfig(ws)
	if err != nil {
		return err
	}

	providerCfg, exists := cfg.Providers[input.Name]
	if !exists {
		return fmt.Errorf("provider %q not found", input.Name)
	}

	provider, err := uc.providerFor(ctx, input.Name, providerCfg)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	_, err = provider.Complete(ctx, "Say hello")
	return err
}

// UseCases bundles everything a front end needs; cmd/ken and pkg/v1 both
// wire through it.
type UseCases struct {
	BuildIndex         *BuildIndexUseCase
	IndexStatus        *IndexStatusUseCase
	Search             *SearchUseCase
	Ask                *AskUseCase
	Feedback           *FeedbackUseCase
	Report             *ReportUseCase
	CorpusCheck        *CorpusCheckUseCase
	CorpusDiff         *CorpusDiffUseCase
	ProviderList       *ProviderListUseCase
	ProviderAdd        *ProviderAddUseCase
	ProviderRemove     *ProviderRemoveUseCase
	ProviderSetDefault *ProviderSetDefaultUseCase
	ProviderTest       *ProviderTestUseCase
}

// NewUseCases wires the default production collaborators: config-selected
// embedders, fantasy LLM providers, on-disk artifacts and sqlite feedback.
func NewUseCases(resolver *WorkspaceResolver) *UseCases {
	providerFor := func(ctx context.Context, name string, cfg ProviderConfig) (Provider, error) {
		return NewFantasyProvider(ctx, name, cfg)
	}
	return NewUseCasesWith(resolver, NewEmbedder, providerFor)
}

// NewUseCasesWith is NewUseCases with the embedder and provider factories
// swapped out, which tests use to avoid network calls.
func NewUseCasesWith(
	resolver *WorkspaceResolver,
	embedderFor EmbedderFactory,
	providerFor ProviderFactory,
) *UseCases {
	storeFor := func(ws Workspace) *ArtifactStore {
		return NewArtifactStore(ws.IndexDir())
	}
	feedbackFor := func(ws Workspace) (*FeedbackStore, error) {
		if err := os.MkdirAll(ws.KenPath, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace directory: %w", err)
		}
		return OpenFeedbackStore(ws.FeedbackDBPath())
	}

	search := NewSearchUseCase(resolver, embedderFor, storeFor)

	return &UseCases{
		BuildIndex:         NewBuildIndexUseCase(resolver, embedderFor, storeFor),
		IndexStatus:        NewIndexStatusUseCase(resolver, storeFor),
		Search:             search,
		Ask:                NewAskUseCase(resolver, search, providerFor),
		Feedback:           NewFeedbackUseCase(resolver, feedbackFor),
		Report:             NewReportUseCase(resolver, feedbackFor, providerFor),
		CorpusCheck:        NewCorpusCheckUseCase(resolver),
		CorpusDiff:         NewCorpusDiffUseCase(resolver, storeFor),
		ProviderList:       NewProviderListUseCase(resolver),
		ProviderAdd:        NewProviderAddUseCase(resolver),
		ProviderRemove:     NewProviderRemoveUseCase(resolver),
		ProviderSetDefault: NewProviderSetDefaultUseCase(resolver),
		ProviderTest:       NewProviderTestUseCase(resolver, providerFor),
	}
}
