// Command organismd is the always-on affective-cognitive runtime: it wires
// the dynamics engine, limbic loop, attention gate, coordinator, reasoning
// orchestrator, and the SQLite-backed memory/persistence store into one
// process and drives it from a Discord gateway. Config loading, pid-file
// collision handling, and the goroutine/ticker shutdown sequence are
// grounded on cmd/bud/main.go.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"

	"github.com/mneme-ai/organism/internal/adapters/anthropicllm"
	"github.com/mneme-ai/organism/internal/adapters/discordgw"
	"github.com/mneme-ai/organism/internal/adapters/exectool"
	"github.com/mneme-ai/organism/internal/adapters/localexec"
	"github.com/mneme-ai/organism/internal/adapters/mcptools"
	"github.com/mneme-ai/organism/internal/adapters/sshexec"
	"github.com/mneme-ai/organism/internal/attention"
	"github.com/mneme-ai/organism/internal/attention/evaluators"
	"github.com/mneme-ai/organism/internal/coordinator"
	"github.com/mneme-ai/organism/internal/dynamics"
	"github.com/mneme-ai/organism/internal/limbic"
	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/reasoning"
	"github.com/mneme-ai/organism/internal/state"
	"github.com/mneme-ai/organism/internal/store"
)

const subsystem = "main"

func main() {
	logging.Info(subsystem, "organism runtime starting")

	if err := godotenv.Load(); err != nil {
		logging.Info(subsystem, "no .env file found, using environment variables")
	} else {
		logging.Info(subsystem, "loaded .env file")
	}

	statePath := envOr("STATE_PATH", "state")
	if err := os.MkdirAll(statePath, 0755); err != nil {
		logging.Error(subsystem, "failed to create state directory: %v", err)
		os.Exit(1)
	}

	cleanupPidFile := checkPidFile(statePath)
	defer cleanupPidFile()

	discordToken := os.Getenv("DISCORD_TOKEN")
	discordChannel := os.Getenv("DISCORD_CHANNEL_ID")
	discordOwner := os.Getenv("DISCORD_OWNER_ID")
	syntheticMode := os.Getenv("SYNTHETIC_MODE") == "true"
	llmModel := os.Getenv("ANTHROPIC_MODEL")
	schedulePath := envOr("SCHEDULE_PATH", filepath.Join(statePath, "schedule.yaml"))

	if !syntheticMode && discordToken == "" {
		logging.Error(subsystem, "DISCORD_TOKEN required (or set SYNTHETIC_MODE=true)")
		os.Exit(1)
	}

	db, err := store.Open(filepath.Join(statePath, "organism.db"))
	if err != nil {
		logging.Error(subsystem, "failed to open store: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	engine := dynamics.New(dynamics.DefaultConfig())
	loop := limbic.New(engine, limbic.DefaultConfig(), state.NewDefault())

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, ctx := errgroup.WithContext(rootCtx)

	group.Go(func() error { return loop.Run(ctx) })

	coordCfg := coordinator.DefaultConfig()
	coord, err := coordinator.NewWithPersistence(engine, loop, coordCfg, db, db)
	if err != nil {
		logging.Error(subsystem, "failed to construct coordinator: %v", err)
		os.Exit(1)
	}

	llm := anthropicllm.New(llmModel)
	if !llm.Available() {
		logging.Warn(subsystem, "ANTHROPIC_API_KEY not set, reasoning calls will fail")
	}

	mcpRegistry, err := mcptools.New(ctx, mcpServerSpecs())
	if err != nil {
		logging.Error(subsystem, "failed to start MCP tool registry: %v", err)
		os.Exit(1)
	}
	defer mcpRegistry.Close()

	toolRegistry := &combinedToolRegistry{mcp: mcpRegistry, exec: exectool.New(buildExecutor())}

	orchestrator := reasoning.NewOrchestrator(reasoning.Deps{
		Memory: db,
		Social: db,
		Llm:    llm,
		Tools:  toolRegistry,
	}, reasoning.DefaultConfig())

	gate := attention.New(buildEvaluators(loop, coord, db, db, schedulePath))

	var gw *discordgw.Gateway
	if !syntheticMode {
		gw, err = discordgw.New(discordgw.Config{Token: discordToken, ChannelID: discordChannel, OwnerID: discordOwner})
		if err != nil {
			logging.Error(subsystem, "failed to create discord gateway: %v", err)
			os.Exit(1)
		}
		gw.OnMessage = func(msg discordgw.IncomingMessage) {
			handleIncomingMessage(ctx, coord, orchestrator, gw, msg)
		}
		if err := gw.Start(); err != nil {
			logging.Error(subsystem, "failed to start discord gateway: %v", err)
			os.Exit(1)
		}
		defer gw.Stop()
	} else {
		logging.Info(subsystem, "synthetic mode: no chat surface attached")
	}

	group.Go(func() error {
		ticker := time.NewTicker(coordCfg.StateUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := coord.Tick(ctx); err != nil {
					logging.Error(subsystem, "tick failed: %v", err)
				}
			}
		}
	})

	group.Go(func() error {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				runAttentionCycle(ctx, gate, coord, orchestrator, gw, discordChannel)
			}
		}
	})

	logging.Info(subsystem, "all subsystems started, waiting for signal")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info(subsystem, "shutting down")
	cancel()
	if err := group.Wait(); err != nil && ctx.Err() == nil {
		logging.Error(subsystem, "subsystem exited with error: %v", err)
	}
	logging.Info(subsystem, "goodbye")
}

func handleIncomingMessage(ctx context.Context, coord *coordinator.Coordinator, orch *reasoning.Orchestrator, gw *discordgw.Gateway, msg discordgw.IncomingMessage) {
	result, err := coord.ProcessInteraction(ctx, msg.Author, msg.Content, 0)
	if err != nil {
		logging.Error(subsystem, "process interaction failed: %v", err)
		return
	}
	if result.Sleeping {
		return
	}

	stopTyping := gw.StartTyping(msg.ChannelID)
	defer stopTyping()

	think, err := orch.Think(ctx, reasoning.Input{
		Text:          msg.Content,
		Speaker:       msg.AuthorID,
		IsUserMessage: true,
		Marker:        result.Marker,
		Modulation:    result.Marker.ToModulationVector(),
	})
	if err != nil {
		logging.Error(subsystem, "think failed: %v", err)
		return
	}
	if think.Silence || think.Reply == "" {
		return
	}
	if err := gw.Send(msg.ChannelID, think.Reply); err != nil {
		logging.Error(subsystem, "failed to send reply: %v", err)
	}
}

func runAttentionCycle(ctx context.Context, gate *attention.Gate, coord *coordinator.Coordinator, orch *reasoning.Orchestrator, gw *discordgw.Gateway, channelID string) {
	if coord.LifecycleState() != state.Awake {
		return
	}
	triggers, err := gate.Evaluate(ctx)
	if err != nil {
		logging.Error(subsystem, "attention evaluate failed: %v", err)
		return
	}
	for _, t := range triggers {
		if t.Kind == ports.TriggerMetacognition {
			if _, err := orch.ReflectMetacognition(ctx, "periodic self-reflection", t.ContextSummary); err != nil {
				logging.Error(subsystem, "metacognition reflection failed: %v", err)
			}
			continue
		}

		result, err := orch.Think(ctx, reasoning.Input{
			Text:          describeTrigger(t),
			IsUserMessage: false,
		})
		if err != nil {
			logging.Error(subsystem, "self-initiated think failed: %v", err)
			continue
		}
		if result.Silence || result.Reply == "" {
			continue
		}
		if gw != nil && channelID != "" {
			if err := gw.Send(channelID, result.Reply); err != nil {
				logging.Error(subsystem, "failed to send self-initiated reply: %v", err)
			}
		}
	}
	gate.DecayEngagement(0.95)
}

// describeTrigger renders a Trigger's kind-specific fields into a single
// prompt line for Orchestrator.Think's self-initiated path.
func describeTrigger(t ports.Trigger) string {
	switch t.Kind {
	case ports.TriggerScheduled:
		return fmt.Sprintf("scheduled event %q fired (route=%s)", t.ScheduleName, t.Route)
	case ports.TriggerContentRelevance:
		return fmt.Sprintf("noticed relevant content from %s: %s", t.Source, t.Reason)
	case ports.TriggerMemoryDecay:
		return fmt.Sprintf("a memory about %q is fading (last mentioned %s)", t.Topic, t.LastMentioned)
	case ports.TriggerTrending:
		return fmt.Sprintf("something is trending on %s: %s", t.Platform, t.Reason)
	case ports.TriggerRumination:
		return fmt.Sprintf("ruminating on %s: %s", t.RuminationKind, t.Context)
	case ports.TriggerInnerMonologue:
		return fmt.Sprintf("inner monologue prompted by %s: %s", t.Cause, t.Seed)
	default:
		return t.Reason
	}
}

func buildEvaluators(reader evaluators.StateReader, counter evaluators.InteractionCounter, memory ports.Memory, graph ports.SocialGraph, schedulePath string) []ports.TriggerEvaluator {
	return []ports.TriggerEvaluator{
		evaluators.NewScheduled(schedulePath),
		evaluators.NewRumination(reader),
		evaluators.NewConsciousnessGate(reader),
		evaluators.NewMetacognition(reader, counter),
		evaluators.NewHabit(memory),
		evaluators.NewSocial(reader, graph),
		evaluators.NewMeaning(reader),
		evaluators.NewCreativity(reader),
		evaluators.NewCuriosity(reader),
	}
}

// combinedToolRegistry merges the always-available local/remote exec tool
// with whatever the MCP servers advertise, so the ReAct loop sees one flat
// tool namespace regardless of transport.
type combinedToolRegistry struct {
	mcp  *mcptools.Registry
	exec ports.ToolHandler
}

func (r *combinedToolRegistry) Lookup(name string) (ports.ToolHandler, bool) {
	if r.exec != nil && name == r.exec.Name() {
		return r.exec, true
	}
	return r.mcp.Lookup(name)
}

func (r *combinedToolRegistry) List() []ports.Tool {
	out := r.mcp.List()
	if r.exec != nil {
		out = append(out, r.exec.Schema())
	}
	return out
}

// buildExecutor picks sshexec when REMOTE_EXEC_HOST is set, otherwise falls
// back to running commands on the local machine.
func buildExecutor() ports.Executor {
	host := os.Getenv("REMOTE_EXEC_HOST")
	if host == "" {
		return localexec.New(30 * time.Second)
	}

	port, _ := strconv.Atoi(os.Getenv("REMOTE_EXEC_PORT"))
	executor, err := sshexec.New(sshexec.Config{
		Host:           host,
		Port:           port,
		User:           os.Getenv("REMOTE_EXEC_USER"),
		PrivateKeyPath: os.Getenv("REMOTE_EXEC_KEY_PATH"),
		Timeout:        30 * time.Second,
	})
	if err != nil {
		logging.Error(subsystem, "failed to configure remote executor, falling back to local: %v", err)
		return localexec.New(30 * time.Second)
	}
	return executor
}

func mcpServerSpecs() []mcptools.ServerSpec {
	raw := os.Getenv("MCP_SERVERS")
	if raw == "" {
		return nil
	}
	var specs []mcptools.ServerSpec
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Fields(strings.TrimSpace(entry))
		if len(parts) == 0 {
			continue
		}
		specs = append(specs, mcptools.ServerSpec{Name: parts[0], Command: parts[0], Args: parts[1:]})
	}
	return specs
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// checkPidFile detects a previous organismd instance still holding
// statePath, offering to kill it interactively or automatically when run
// as a service (ORGANISM_SERVICE=1). Grounded on cmd/bud/main.go's
// checkPidFile/getProcessStartTime.
func checkPidFile(statePath string) func() {
	pidFile := filepath.Join(statePath, "organismd.pid")

	if data, err := os.ReadFile(pidFile); err == nil {
		pidStr := strings.TrimSpace(string(data))
		if pid, err := strconv.Atoi(pidStr); err == nil {
			if proc, err := process.NewProcess(int32(pid)); err == nil {
				if running, _ := proc.IsRunning(); running {
					name, _ := proc.Name()
					cmdline, _ := proc.Cmdline()
					if strings.Contains(name, "organismd") || strings.Contains(cmdline, "organismd") {
						isService := os.Getenv("ORGANISM_SERVICE") == "1"
						if !isService {
							fmt.Printf("\nAnother organismd process is running (PID %d)\n", pid)
							fmt.Printf("   Started: %s\n", processStartTime(proc))
							fmt.Printf("\nOptions:\n  [k] Kill it and continue\n  [q] Quit (let the other process run)\n\nChoice [k/q]: ")
							reader := bufio.NewReader(os.Stdin)
							choice, _ := reader.ReadString('\n')
							choice = strings.TrimSpace(strings.ToLower(choice))
							if choice == "k" {
								logging.Info(subsystem, "killing existing organismd process (PID %d)", pid)
								proc.Kill()
								time.Sleep(500 * time.Millisecond)
							} else {
								logging.Info(subsystem, "exiting to let existing process run")
								os.Exit(0)
							}
						} else {
							logging.Info(subsystem, "non-interactive mode: killing existing organismd process (PID %d)", pid)
							proc.Kill()
							time.Sleep(time.Second)
						}
					}
				}
			}
		}
		os.Remove(pidFile)
	}

	myPid := os.Getpid()
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(myPid)), 0644); err != nil {
		logging.Warn(subsystem, "failed to write pid file: %v", err)
	} else {
		logging.Info(subsystem, "pid file created: %s (pid=%d)", pidFile, myPid)
	}

	return func() {
		os.Remove(pidFile)
		logging.Info(subsystem, "pid file removed")
	}
}

func processStartTime(proc *process.Process) string {
	createTime, err := proc.CreateTime()
	if err != nil {
		return "unknown"
	}
	return time.UnixMilli(createTime).Format("2006-01-02 15:04:05")
}
