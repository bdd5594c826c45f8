// Command seed-demo populates a hub bucket with a small demo dataset: a
// two-agent registry, a versioned system prompt, one recorded session, and
// a day of run metrics. Point the quickstart example at the result.
//
// Usage (run from the repo root, against a local MinIO or a real bucket):
//
//	HUB_S3_BUCKET=strands-hub HUB_S3_ENDPOINT=http://localhost:9000 \
//	HUB_S3_PATH_STYLE=true AWS_REGION=us-east-1 go run ./scripts/seed-demo
//
// Safe to run multiple times — documents are overwritten in place, except
// the system prompt, which gains one version per run.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/labeveryday/strands-hub-mcp/internal/config"
	"github.com/labeveryday/strands-hub-mcp/internal/keys"
	"github.com/labeveryday/strands-hub-mcp/internal/model"
	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
	"github.com/labeveryday/strands-hub-mcp/internal/promptcache"
	"github.com/labeveryday/strands-hub-mcp/internal/prompts"
)

// registryDoc is the interop registry format: agent id to record, written
// by deployment tooling. The hub only reads it and patches metadata fields.
const registryDoc = `{
  "billing-triage": {
    "description": "Triages billing tickets and drafts refund decisions.",
    "status": "active",
    "tags": ["billing", "support"],
    "owner": "payments-team"
  },
  "doc-writer": {
    "description": "Drafts and revises customer-facing documentation.",
    "status": "active",
    "tags": ["docs"],
    "owner": "devrel"
  }
}`

const promptText = `You are a billing triage assistant. Classify each ticket,
propose a resolution, and escalate anything involving chargebacks to a human
reviewer. Never promise a refund outright.`

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("HUB_S3_BUCKET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store, err := objstore.NewS3(ctx, objstore.S3Options{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		PathStyle: cfg.UsePathStyle,
	}, logger)
	if err != nil {
		return fmt.Errorf("objstore: %w", err)
	}
	scheme := keys.New(cfg.SessionsPrefix, cfg.MetricsPrefix, cfg.PromptsPrefix, cfg.RegistryKey)

	// Registry.
	if err := store.Put(ctx, scheme.Registry(), []byte(registryDoc), nil); err != nil {
		return fmt.Errorf("seed registry: %w", err)
	}
	fmt.Printf("seeded %s\n", scheme.Registry())

	// System prompt, through the manager so the index stays consistent.
	pm := prompts.New(store, promptcache.Direct{Store: store}, scheme, logger)
	entry, err := pm.CreateVersion(ctx, "billing-triage", promptText, "demo seed")
	if err != nil {
		return fmt.Errorf("seed prompt: %w", err)
	}
	fmt.Printf("seeded %s\n", scheme.PromptVersion("billing-triage", entry.Version))

	// Promotion is normally a separate human step outside the hub; the seed
	// stands in for it so the demo has a live prompt to read.
	if err := promote(ctx, store, scheme, "billing-triage", entry.Version); err != nil {
		return fmt.Errorf("promote prompt: %w", err)
	}
	fmt.Printf("promoted %s to version %d\n", scheme.PromptCurrent("billing-triage"), entry.Version)

	// One recorded session, in the shape the agent runtime persists.
	sessionDocs := map[string]string{
		scheme.SessionDoc("sess_demo"):                          `{"session_id":"sess_demo","agents":["agent_default"]}`,
		scheme.SessionAgentDoc("sess_demo", "agent_default"):    `{"agent_id":"agent_default","model_id":"bedrock-sonnet"}`,
		scheme.SessionMessage("sess_demo", "agent_default", 0):  `{"role":"user","content":"our customer was double charged on invoice 4417"}`,
		scheme.SessionMessage("sess_demo", "agent_default", 1):  `{"role":"assistant","content":"Classified as duplicate charge. Drafting refund recommendation for human review."}`,
	}
	for key, body := range sessionDocs {
		if err := store.Put(ctx, key, []byte(body), nil); err != nil {
			return fmt.Errorf("seed session %s: %w", key, err)
		}
	}
	fmt.Printf("seeded %s (%d objects)\n", scheme.SessionDoc("sess_demo"), len(sessionDocs))

	// A day of run metrics.
	date := time.Now().UTC().Format("2006-01-02")
	started := time.Now().UTC().Add(-10 * time.Minute)
	ended := started.Add(42 * time.Second)
	records := []model.MetricsRecord{
		{
			AgentID:        "billing-triage",
			RunID:          "run_demo_1",
			StartedAt:      started,
			EndedAt:        &ended,
			InputTokens:    1480,
			OutputTokens:   312,
			ToolCalls:      3,
			ToolCallCounts: map[string]int64{"lookup_invoice": 2, "draft_refund": 1},
			PromptVersion:  entry.Version,
			Status:         "completed",
		},
		{
			AgentID:      "doc-writer",
			RunID:        "run_demo_2",
			StartedAt:    started.Add(2 * time.Minute),
			InputTokens:  920,
			OutputTokens: 2104,
			ToolCalls:    1,
			Status:       "completed",
		},
	}
	for _, rec := range records {
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal metrics %s: %w", rec.RunID, err)
		}
		key := scheme.MetricsRecord(date, rec.RunID)
		if err := store.Put(ctx, key, body, nil); err != nil {
			return fmt.Errorf("seed metrics %s: %w", key, err)
		}
		fmt.Printf("seeded %s\n", key)
	}

	fmt.Println("Demo data is ready. Start the hub and try hub_status.")
	return nil
}

// promote points current.txt and the index's current field at version n, the
// way the out-of-band promotion tooling does.
func promote(ctx context.Context, store *objstore.S3, scheme keys.Scheme, agentID string, n int) error {
	content, err := store.Get(ctx, scheme.PromptVersion(agentID, n))
	if err != nil {
		return fmt.Errorf("read version %d: %w", n, err)
	}
	if err := store.Put(ctx, scheme.PromptCurrent(agentID), content.Body, nil); err != nil {
		return fmt.Errorf("write current: %w", err)
	}

	idxKey := scheme.PromptIndex(agentID)
	obj, err := store.Get(ctx, idxKey)
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	var idx model.PromptIndex
	if err := json.Unmarshal(obj.Body, &idx); err != nil {
		return fmt.Errorf("parse index: %w", err)
	}
	idx.Current = &n
	body, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return store.Put(ctx, idxKey, body, &objstore.Condition{IfMatch: obj.ETag})
}
