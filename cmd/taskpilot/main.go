package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskpilotco/taskpilot/internal/agent"
	"github.com/taskpilotco/taskpilot/internal/config"
	"github.com/taskpilotco/taskpilot/internal/gateway"
)

// ManagerFactory creates a task manager (allows mocking in tests).
type ManagerFactory func(cfg *config.Config) (*agent.Manager, error)

// ChatOptions for running chat with custom dependencies.
type ChatOptions struct {
	ManagerFactory ManagerFactory
	Stdin          io.Reader
	Stdout         io.Writer
	Stderr         io.Writer
}

var rootCmd = &cobra.Command{
	Use:   "taskpilot",
	Short: "taskpilot - AI task management assistant",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in single message or REPL mode",
	RunE:  runChat,
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted demo through both agent backends",
	RunE:  runDemo,
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the full gateway (channels + reminders)",
	RunE:  runGateway,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and workspace",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show taskpilot status",
	RunE:  runStatus,
}

var (
	messageFlag string
	agentFlag   string
)

func init() {
	chatCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	chatCmd.Flags().StringVarP(&agentFlag, "agent", "a", "", "Agent backend: pipeline or runtime")
	demoCmd.Flags().StringVarP(&agentFlag, "agent", "a", "", "Run the demo against one backend only")
	rootCmd.AddCommand(chatCmd, demoCmd, gatewayCmd, onboardCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printBanner(w io.Writer) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, " taskpilot - AI Task Management Assistant")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "Backends:")
	fmt.Fprintln(w, "  • pipeline: classify, extract, dispatch, compose")
	fmt.Fprintln(w, "  • runtime:  agent SDK delegation (free-text only)")
	fmt.Fprintln(w, line)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "\nExample commands:")
	fmt.Fprintln(w, "  • Create a task: 'Create a task to finish the report by tomorrow'")
	fmt.Fprintln(w, "  • List tasks: 'Show me all pending tasks'")
	fmt.Fprintln(w, "  • Update task: 'Mark task 1 as completed'")
	fmt.Fprintln(w, "  • Get statistics: 'Show me task statistics'")
	fmt.Fprintln(w)
}

func runChat(cmd *cobra.Command, args []string) error {
	return runChatWithOptions(ChatOptions{})
}

// runChatWithOptions runs chat with injectable dependencies for testing.
func runChatWithOptions(opts ChatOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if agentFlag != "" {
		cfg.Agent.Type = agentFlag
	}

	factory := opts.ManagerFactory
	if factory == nil {
		factory = agent.New
	}

	mgr, err := factory(cfg)
	if err != nil {
		return err
	}
	defer mgr.Close()

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	ctx := context.Background()

	// Single message mode
	if messageFlag != "" {
		fmt.Fprintln(stdout, mgr.Process(ctx, messageFlag))
		return nil
	}

	// REPL mode
	printBanner(stdout)
	fmt.Fprintf(stdout, "Using %s agent. Type 'exit' to quit, 'help' for examples.\n", mgr.AgentType())
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprintf(stdout, "\n[%s] > ", mgr.AgentType())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "exit", "quit":
			return nil
		case "help":
			printHelp(stdout)
			continue
		}

		fmt.Fprintln(stdout, "\nProcessing...")
		fmt.Fprintf(stdout, "\n%s\n", mgr.Process(ctx, input))
	}
	return nil
}

var demoRequests = []string{
	"Create a high priority task: Complete project documentation",
	"Create a medium priority task: Review code changes",
	"List all tasks",
	"Show me task statistics",
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	backends := []string{config.AgentTypeRuntime, config.AgentTypePipeline}
	if agentFlag != "" {
		backends = []string{agentFlag}
	}

	ctx := context.Background()
	line := strings.Repeat("=", 60)

	for _, backend := range backends {
		fmt.Println(line)
		fmt.Printf("Testing %s agent\n", backend)
		fmt.Println(line)

		demoCfg := *cfg
		demoCfg.Agent.Type = backend
		mgr, err := agent.New(&demoCfg)
		if err != nil {
			fmt.Printf("Error initializing %s agent: %v\n\n", backend, err)
			continue
		}

		for i, request := range demoRequests {
			fmt.Printf("\n[%d] Request: %s\n", i+1, request)
			fmt.Println(strings.Repeat("-", 60))
			fmt.Println(mgr.Process(ctx, request))
		}
		mgr.Close()
		fmt.Println()
	}
	return nil
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return gw.Run(context.Background())
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data, _ := json.MarshalIndent(cfg, "", "  ")
		if err := os.WriteFile(cfgPath, data, 0644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	cfg, _ := config.LoadConfig()
	if err := os.MkdirAll(cfg.Agent.Workspace, 0755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	fmt.Printf("Workspace ready: %s\n", cfg.Agent.Workspace)

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set your API key\n", cfgPath)
	fmt.Println("  2. Or set TASKPILOT_API_KEY environment variable")
	fmt.Println("  3. Run 'taskpilot chat -m \"Create a task to try taskpilot\"' to test")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Agent: %s\n", cfg.Agent.Type)
	fmt.Printf("Model: %s\n", cfg.Agent.Model)
	fmt.Printf("Provider: %s\n", providerDisplay(cfg.Provider.Type))
	if cfg.Provider.APIKey != "" && len(cfg.Provider.APIKey) > 8 {
		masked := cfg.Provider.APIKey[:4] + "..." + cfg.Provider.APIKey[len(cfg.Provider.APIKey)-4:]
		fmt.Printf("API Key: %s\n", masked)
	} else if cfg.Provider.APIKey != "" {
		fmt.Println("API Key: set")
	} else {
		fmt.Println("API Key: not set")
	}
	if cfg.Langfuse.PublicKey != "" && cfg.Langfuse.SecretKey != "" {
		fmt.Printf("Langfuse: configured (%s)\n", cfg.Langfuse.Host)
	} else {
		fmt.Println("Langfuse: not configured")
	}
	if _, err := os.Stat(cfg.Calendar.CredentialsPath); err == nil {
		fmt.Println("Calendar: credentials present")
	} else {
		fmt.Println("Calendar: disabled (no credentials)")
	}
	fmt.Printf("Telegram: enabled=%v\n", cfg.Channels.Telegram.Enabled)
	fmt.Printf("Reminders: enabled=%v\n", cfg.Reminders.Enabled)

	return nil
}

func providerDisplay(t string) string {
	if t == "" {
		return "anthropic (default)"
	}
	return t
}
