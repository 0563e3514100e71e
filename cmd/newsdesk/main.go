package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"pressroom.app/pressroom/common/id"
	"pressroom.app/pressroom/common/llm"
	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/core/config"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/newsroom"
	"pressroom.app/pressroom/internal/remote"
)

func main() {
	subject := flag.String("subject", newsroom.DefaultSubject, "subject of the generated article")
	date := flag.String("date", "", "publication date (YYYY-MM-DD), defaults to today")
	chat := flag.Bool("chat", false, "run the interactive supervisor instead of a one-shot pipeline")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg)
	_ = id.Init(3)

	if !cfg.NewsroomLLM.Enabled() {
		fmt.Fprintln(os.Stderr, "NEWSROOM_LLM_API_KEY is required")
		os.Exit(1)
	}

	llmCfg := llm.Config{
		Provider: cfg.NewsroomLLM.Provider,
		APIKey:   cfg.NewsroomLLM.APIKey,
		BaseURL:  cfg.NewsroomLLM.BaseURL,
		Model:    cfg.NewsroomLLM.Model,
	}
	structured, err := llm.New(llmCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM client: %v\n", err)
		os.Exit(1)
	}

	oracle := newsroom.NewRemoteOracle(remote.New("classifier", cfg.Classifier.Timeout), cfg.Classifier.URL)
	if !cfg.Classifier.Enabled() {
		fmt.Fprintln(os.Stderr, "Classifier: disabled (CLASSIFIER_URL not set)")
	}
	creator := newsroom.NewCreator(structured)
	detector := newsroom.NewDetector(oracle, newsroom.NewLLMVerifier(structured), cfg.Classifier.ConfidenceThreshold)

	if !*chat {
		if err := runOnce(ctx, creator, detector, *subject, *date); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	agent, err := llm.NewAgentClient(llmCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create agent client: %v\n", err)
		os.Exit(1)
	}
	router := newsroom.NewRouter(newsroom.NewLLMClassifier(agent), creator, newsroom.NewAnalyst(structured), detector)
	runChat(ctx, router)
}

// runOnce generates one article, checks it and prints the verdict.
func runOnce(ctx context.Context, creator *newsroom.Creator, detector *newsroom.Detector, subject, date string) error {
	fmt.Fprintf(os.Stderr, "Generating article (subject=%s)\n", subject)
	article, err := creator.Generate(ctx, subject, date)
	if err != nil {
		return err
	}
	fmt.Println(newsroom.FormatArticle(article))
	fmt.Println()

	fmt.Fprintln(os.Stderr, "Checking authenticity...")
	detection, err := detector.Detect(ctx, article)
	if err != nil {
		return err
	}
	fmt.Printf("Prediction: %s (%.2f%%)\n", detection.Prediction.Label, detection.Prediction.Confidence)
	if v := detection.Verification; v != nil && v.Reasoning != nil {
		fmt.Printf("Web check: %s\n", *v.Reasoning)
	}
	fmt.Println(newsroom.FormatVerdict(detection.Verdict))
	return nil
}

func runChat(ctx context.Context, router *newsroom.Router) {
	now := time.Now()
	thread := &model.Thread{ID: id.NewString(), CreatedAt: now, UpdatedAt: now}

	fmt.Fprintln(os.Stderr, "\nNewsdesk ready")
	fmt.Fprintln(os.Stderr, "Ask for an article, a summary, its sentiment or a fact check (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" || line == "q" {
			break
		}

		out, err := router.Handle(ctx, thread, newsroom.Request{Content: line})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(os.Stderr, "[%s -> %s]\n", out.Intent, out.Agent)
		fmt.Println(out.Reply)
		fmt.Println()
	}

	fmt.Fprintln(os.Stderr, "Goodbye!")
}
