// cmd/generate/main.go
//
// One-shot prompt → text call against the configured generative-AI service.
//
// Only the AI record is loaded, so the tool runs on a workstation that has
// GOOGLE_API_KEY and the GEMINI_MODEL_* keys but no database or auth
// settings.
//
// Usage
// -----
//
//	generate -model GEMINI_MODEL_2_5_FLASH -max-tokens 120 -temperature 0.7 \
//	    "Explain embeddings versus LLMs in five lines."
//
// -model accepts a GEMINI_MODEL_* key or a raw model identifier.  The prompt
// may also come from stdin when no argument is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/AdeptTravel/adept-settings/internal/config"
	"github.com/AdeptTravel/adept-settings/internal/inference"
	"github.com/AdeptTravel/adept-settings/internal/logger"
)

func main() {
	var (
		envFile     = flag.String("env-file", config.DefaultEnvFile, "dotenv file with default values")
		model       = flag.String("model", config.ModelPrefix+"2_5_FLASH", "model key or identifier")
		maxTokens   = flag.Int("max-tokens", 0, "maximum output tokens (0 = service default)")
		temperature = flag.Float64("temperature", -1, "sampling temperature (negative = service default)")
		timeout     = flag.Duration("timeout", 2*time.Minute, "request timeout")
	)
	flag.Parse()

	log := logger.Bootstrap()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	prompt := strings.Join(flag.Args(), " ")
	if prompt == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalw("read prompt", "err", err)
		}
		prompt = string(b)
	}

	opts, err := buildOptions(*maxTokens, *temperature)
	if err != nil {
		log.Fatalw("bad flags", "err", err)
	}

	src, err := config.NewSource(ctx, config.WithEnvFile(*envFile))
	if err != nil {
		log.Fatalw("configuration invalid", "err", err)
	}
	ai, err := config.LoadAI(src)
	if err != nil {
		log.Fatalw("configuration invalid", "err", err)
	}

	cli, err := inference.NewClient(ctx, ai)
	if err != nil {
		log.Fatalw("inference client", "err", err)
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	text, err := cli.Generate(ctx, *model, prompt, opts)
	if err != nil {
		log.Fatalw("generate", "model", *model, "err", err)
	}
	fmt.Println(text)
}

// buildOptions turns the flag values into generation options.  maxTokens
// must fit the int32 the service takes; a negative temperature means unset.
func buildOptions(maxTokens int, temperature float64) (inference.Options, error) {
	if maxTokens < 0 || maxTokens > math.MaxInt32 {
		return inference.Options{}, fmt.Errorf("-max-tokens %d outside 0..%d", maxTokens, math.MaxInt32)
	}
	opts := inference.Options{MaxOutputTokens: int32(maxTokens)}
	if temperature >= 0 {
		t := float32(temperature)
		opts.Temperature = &t
	}
	return opts, nil
}
