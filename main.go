package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"swagger_interface_helper/config"
	"swagger_interface_helper/generator"
	"swagger_interface_helper/logging"
	"swagger_interface_helper/server"
	"swagger_interface_helper/store"
	"swagger_interface_helper/swagger"
)

var verbose bool

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json or config.yaml")
	serve := flag.Bool("serve", false, "start helper server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	swaggerSrc := flag.String("swagger", "", "swagger api-docs file or url for one-shot generation")
	api := flag.String("api", "", `operation to generate, e.g. "GET /users/{id}"`)
	list := flag.Bool("list", false, "list operations of --swagger")
	stream := flag.Bool("stream", false, "print fragments as they arrive")
	setTemplate := flag.String("set-template", "", "file whose content becomes the request template")
	flag.BoolVar(&verbose, "v", false, "enable debug logs")
	flag.Parse()

	cfg, err := loadConfig(flag.CommandLine, *configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logging.Setup(logging.Options{Level: level, Suppress: cfg.LogSuppress})

	templates, err := store.Open(cfg.StorePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *setTemplate != "" {
		raw, err := os.ReadFile(*setTemplate)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := templates.Set(generator.TemplateKey, string(raw)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Info().Str("store", cfg.StorePath).Int("bytes", len(raw)).Msg("template saved")
		if !*serve && *swaggerSrc == "" {
			return
		}
	}

	// Web server mode
	if *serve {
		agent, err := buildAgent(cfg, templates)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		srv, err := server.New(agent, templates, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		if err := srv.Run(ctx, listen); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *swaggerSrc == "" {
		fmt.Fprintln(os.Stderr, "--serve or --swagger is required")
		os.Exit(1)
	}
	ctx := context.Background()
	doc, err := loadSwagger(ctx, *swaggerSrc)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *list {
		for _, op := range doc.Operations() {
			fmt.Printf("%-7s %s\t%s\n", op.Method, op.Path, op.Summary)
		}
		return
	}

	method, path, ok := strings.Cut(strings.TrimSpace(*api), " ")
	if !ok {
		fmt.Fprintln(os.Stderr, `--api must look like "GET /path"`)
		os.Exit(1)
	}
	data, err := doc.APIData(method, strings.TrimSpace(path))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	agent, err := buildAgent(cfg, templates)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var onProgress generator.ProgressFunc
	if *stream {
		onProgress = func(fragment string) { fmt.Print(fragment) }
	}
	log.Info().Str("api", *api).Str("title", data.Title).Msg("[cli] generating")
	code, err := agent.GenerateInterface(ctx, data, onProgress)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *stream {
		fmt.Println()
		return
	}
	fmt.Println(code)
}

// loadConfig tolerates a missing file only at the default location; an
// explicit -config must exist.
func loadConfig(fs *flag.FlagSet, path string) (config.Config, error) {
	return config.Load(path, !flagPassed(fs, "config"))
}

func flagPassed(fs *flag.FlagSet, name string) bool {
	passed := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

func loadSwagger(ctx context.Context, src string) (*swagger.Document, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return swagger.Fetch(ctx, &http.Client{Timeout: 30 * time.Second}, src)
	}
	raw, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	return swagger.Parse(raw)
}

func buildAgent(cfg config.Config, templates *store.Store) (*generator.Agent, error) {
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm, templates, generator.PromptOptions{JSDoc: cfg.UseJSDoc()})
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderDeepSeek:
		llm, err := generator.NewDeepSeekLLMFromConfig(settings(cfg.Provider, cfg.DeepSeek), nil)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case config.ProviderOpenAI:
		// 客户端在第一次生成时才初始化
		return generator.NewOpenAILLM(*settings(cfg.Provider, cfg.OpenAI), nil), nil
	case config.ProviderMock:
		return generator.MockLLM{}, nil
	case "":
		return nil, errors.New("llm config missing; please set provider in config")
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

func settings(provider string, c config.LLMConfig) *generator.LLMSettings {
	return &generator.LLMSettings{
		Provider:    provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}
